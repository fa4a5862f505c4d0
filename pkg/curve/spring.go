package curve

import (
	"fmt"
	"math"

	"github.com/go-drift/motion/pkg/errors"
)

// Spring configures a damped spring. Unlike an easing curve a spring has no
// duration; its motion ends when the rest condition holds.
type Spring struct {
	// Stiffness is the spring constant k. Higher is faster.
	Stiffness float64
	// Damping is the friction coefficient c. Higher oscillates less.
	Damping float64
	// Mass is the simulated mass m. Higher has more inertia.
	Mass float64
	// Velocity is the initial velocity in units per second.
	Velocity float64
	// RestDelta is the position threshold of the rest condition.
	RestDelta float64
	// RestSpeed is the velocity threshold of the rest condition.
	RestSpeed float64
}

// DefaultSpring returns the default spring configuration.
func DefaultSpring() Spring {
	return Spring{Stiffness: 100, Damping: 10, Mass: 1, RestDelta: 0.01, RestSpeed: 0.01}
}

// Gentle is a smooth spring with minimal overshoot.
func Gentle() Spring { return preset(100, 20) }

// Bouncy oscillates visibly before settling.
func Bouncy() Spring { return preset(200, 10) }

// Snappy responds fast with little oscillation.
func Snappy() Spring { return preset(300, 30) }

// Wobbly is very bouncy.
func Wobbly() Spring { return preset(180, 8) }

// Slow settles smoothly over a longer time.
func Slow() Spring { return preset(50, 15) }

// IOS approximates the iOS interactive spring used for sheet snapping and
// overscroll bounce-back.
func IOS() Spring { return preset(170, 26) }

func preset(stiffness, damping float64) Spring {
	return Spring{Stiffness: stiffness, Damping: damping, Mass: 1, RestDelta: 0.01, RestSpeed: 0.01}
}

// Validate checks the physical parameters. Stiffness and mass must be
// positive, damping non-negative.
func (s Spring) Validate() error {
	var reason string
	switch {
	case s.Stiffness <= 0:
		reason = "stiffness must be positive"
	case s.Mass <= 0:
		reason = "mass must be positive"
	case s.Damping < 0:
		reason = "damping must be non-negative"
	default:
		return nil
	}
	return &errors.MotionError{
		Op:   "curve.Spring.Validate",
		Kind: errors.KindConfig,
		Err:  fmt.Errorf("%s (stiffness=%g damping=%g mass=%g)", reason, s.Stiffness, s.Damping, s.Mass),
	}
}

// DampingRatio returns zeta = c / (2*sqrt(k*m)). Below 1 the spring
// oscillates, at 1 it is critically damped, above 1 it creeps.
func (s Spring) DampingRatio() float64 {
	return s.Damping / (2 * math.Sqrt(s.Mass*s.Stiffness))
}

// Integration substep cap. Semi-implicit Euler is stable for
// omega*dt < 2; subdividing frame deltas keeps stiff springs stable even
// when the host delivers a large (clamped) delta after a stall.
const maxStepDt = 1.0 / 120

// Simulation integrates one spring toward a target. It advances by the
// wall-clock delta between frames, so motion is open-ended in time: the
// scheduler must not assume elapsed/duration ratios apply.
type Simulation struct {
	cfg      Spring
	position float64
	velocity float64
	target   float64

	restFrames int
	diverged   bool
	done       bool
}

// NewSimulation creates a spring simulation starting at position with the
// given initial velocity, moving toward target.
func NewSimulation(cfg Spring, position, velocity, target float64) *Simulation {
	return &Simulation{cfg: cfg, position: position, velocity: velocity, target: target}
}

// Step advances the simulation by dt seconds using semi-implicit Euler:
// a = (-k*(x-target) - c*v) / m, then v += a*dt, x += v*dt.
//
// It returns true once the spring is at rest. The rest condition
// (|v| < RestSpeed and |x-target| < RestDelta) must hold for one full
// consecutive frame before the spring terminates; a single-frame glitch
// does not end it. On termination position snaps to the target exactly.
func (s *Simulation) Step(dt float64) bool {
	if s.done {
		return true
	}
	if dt <= 0 {
		return false
	}

	for dt > 0 {
		h := dt
		if h > maxStepDt {
			h = maxStepDt
		}
		dt -= h

		accel := (-s.cfg.Stiffness*(s.position-s.target) - s.cfg.Damping*s.velocity) / s.cfg.Mass
		s.velocity += accel * h
		s.position += s.velocity * h
	}

	if !isFinite(s.position) || !isFinite(s.velocity) {
		// A diverging spring must never spin a property to an unbounded
		// value; force it onto the target and report via the caller.
		s.diverged = true
		s.finish()
		return true
	}

	if math.Abs(s.velocity) < s.cfg.RestSpeed && math.Abs(s.position-s.target) < s.cfg.RestDelta {
		s.restFrames++
	} else {
		s.restFrames = 0
	}
	if s.restFrames >= 2 {
		s.finish()
		return true
	}
	return false
}

func (s *Simulation) finish() {
	s.position = s.target
	s.velocity = 0
	s.done = true
}

// Position returns the current position.
func (s *Simulation) Position() float64 { return s.position }

// Velocity returns the current velocity in units per second.
func (s *Simulation) Velocity() float64 { return s.velocity }

// Target returns the current target.
func (s *Simulation) Target() float64 { return s.target }

// Diverged reports whether the integrator detected non-finite state. The
// simulation is finished and parked at the target when this is true.
func (s *Simulation) Diverged() bool { return s.diverged }

// Done reports whether the spring has reached rest.
func (s *Simulation) Done() bool { return s.done }

// Retarget redirects an in-flight spring toward a new target, keeping the
// current position and velocity so the motion stays continuous.
func (s *Simulation) Retarget(target float64) {
	s.target = target
	s.done = false
	s.diverged = false
	s.restFrames = 0
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
