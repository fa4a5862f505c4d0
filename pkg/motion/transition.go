package motion

import (
	"fmt"

	"github.com/go-drift/motion/pkg/curve"
	"github.com/go-drift/motion/pkg/errors"
)

// DefaultDuration applies when a duration-bound transition leaves Duration
// unset. Matches the common UI transition length.
const DefaultDuration = 0.3

// Easing identifies an analytic easing curve symbolically. Keeping the
// identity (rather than a bare function) lets the delegation layer translate
// expressible curves into the native facility's configuration format.
//
// The zero Easing means "use the engine's default curve".
type Easing struct {
	// Name is a curve.Named name ("ease-out", "bounce-in-out", ...).
	// Empty when Points is set or when the value is the zero Easing.
	Name string
	// Points holds cubic-bezier control points (x1, y1, x2, y2) when
	// Bezier is true.
	Points [4]float64
	// Bezier marks Points as significant.
	Bezier bool
}

// EasingNamed selects a named analytic curve.
func EasingNamed(name string) Easing { return Easing{Name: name} }

// EasingBezier selects a cubic-bezier curve with the given control points.
func EasingBezier(x1, y1, x2, y2 float64) Easing {
	return Easing{Points: [4]float64{x1, y1, x2, y2}, Bezier: true}
}

func (e Easing) isZero() bool { return e.Name == "" && !e.Bezier }

// resolve returns the curve function, falling back to def for the zero
// Easing. Unknown names are a construction-time error.
func (e Easing) resolve(def curve.Curve) (curve.Curve, error) {
	switch {
	case e.Bezier:
		return curve.CubicBezier(e.Points[0], e.Points[1], e.Points[2], e.Points[3]), nil
	case e.Name != "":
		c, ok := curve.Named(e.Name)
		if !ok {
			return nil, &errors.MotionError{
				Op:   "motion.Easing.resolve",
				Kind: errors.KindConfig,
				Err:  fmt.Errorf("unknown easing %q", e.Name),
			}
		}
		return c, nil
	default:
		return def, nil
	}
}

// Control points for the named curves that are themselves cubic beziers.
// Only these are expressible to a native facility; circular, back, and
// bounce variants are not representable as a single bezier and always
// drive manually.
var bezierByName = map[string][4]float64{
	"linear":      {0, 0, 1, 1},
	"ease":        {0.25, 0.1, 0.25, 1},
	"ease-in":     {0.4, 0, 1, 1},
	"ease-out":    {0, 0, 0.2, 1},
	"ease-in-out": {0.4, 0, 0.2, 1},
}

// bezierPoints returns the control points when the easing is expressible as
// a single cubic bezier.
func (e Easing) bezierPoints(defaultName string) ([4]float64, bool) {
	if e.Bezier {
		return e.Points, true
	}
	name := e.Name
	if name == "" {
		name = defaultName
	}
	pts, ok := bezierByName[name]
	return pts, ok
}

// RepeatKind enumerates repetition behaviors.
type RepeatKind int

const (
	// RepeatNever plays the animation once.
	RepeatNever RepeatKind = iota
	// RepeatCount plays the animation a fixed number of times.
	RepeatCount
	// RepeatInfinite restarts from the beginning indefinitely.
	RepeatInfinite
	// RepeatInfiniteAlternate flips the start/end roles at each boundary
	// and continues indefinitely until cancelled.
	RepeatInfiniteAlternate
)

// Repeat configures repetition for duration-bound animations. Springs have
// no iteration boundary and ignore it.
type Repeat struct {
	Kind RepeatKind
	// Count is the total number of iterations when Kind is RepeatCount.
	Count int
}

// Never plays once.
func Never() Repeat { return Repeat{Kind: RepeatNever} }

// Count plays n iterations.
func Count(n int) Repeat { return Repeat{Kind: RepeatCount, Count: n} }

// Infinite restarts indefinitely.
func Infinite() Repeat { return Repeat{Kind: RepeatInfinite} }

// InfiniteAlternate ping-pongs indefinitely.
func InfiniteAlternate() Repeat { return Repeat{Kind: RepeatInfiniteAlternate} }

// Transition describes how an animation moves between its endpoints: either
// a duration with an easing curve, or a spring.
type Transition struct {
	// Duration in seconds. Zero means DefaultDuration. Ignored when
	// Spring is set.
	Duration float64
	// Delay in seconds before the first frame of motion.
	Delay float64
	// Easing shapes duration-bound progress. Zero value uses the engine
	// default.
	Easing Easing
	// Spring switches the transition to physics driving. Duration,
	// Easing, and Repeat do not apply to springs.
	Spring *curve.Spring
	// Repeat configures repetition.
	Repeat Repeat
	// RepeatDelay is the pause in seconds between iterations.
	RepeatDelay float64
}

// validate checks the transition at submission time.
func (t Transition) validate() error {
	bad := func(format string, args ...any) error {
		return &errors.MotionError{
			Op:   "motion.Transition.validate",
			Kind: errors.KindConfig,
			Err:  fmt.Errorf(format, args...),
		}
	}
	if t.Duration < 0 {
		return bad("duration must not be negative, got %g", t.Duration)
	}
	if t.Delay < 0 {
		return bad("delay must not be negative, got %g", t.Delay)
	}
	if t.RepeatDelay < 0 {
		return bad("repeatDelay must not be negative, got %g", t.RepeatDelay)
	}
	if t.Repeat.Kind == RepeatCount && t.Repeat.Count < 1 {
		return bad("repeat count must be at least 1, got %d", t.Repeat.Count)
	}
	if t.Spring != nil {
		if err := t.Spring.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// duration returns the effective iteration duration.
func (t Transition) duration() float64 {
	if t.Duration > 0 {
		return t.Duration
	}
	return DefaultDuration
}
