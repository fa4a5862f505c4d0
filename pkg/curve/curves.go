// Package curve provides the easing curves and the spring integrator that
// shape animation progress.
//
// Analytic curves are pure functions over [0,1] evaluated once per frame per
// animation. Springs are not parameterized by progress at all; they are
// continuous-time simulations advanced by the wall-clock delta between
// frames (see [Simulation]).
package curve

import (
	"math"

	"github.com/fogleman/ease"
)

// A Curve transforms linear animation progress into eased motion. Curves
// must be total over [0,1]; values outside that range may be returned
// (overshooting curves like BackOut do).
type Curve func(t float64) float64

// Linear returns linear progress (no easing).
func Linear(t float64) float64 { return t }

// Standard CSS-equivalent cubic bezier curves.
var (
	// Ease is a standard curve for general-purpose easing. CSS ease.
	Ease = CubicBezier(0.25, 0.1, 0.25, 1.0)
	// EaseIn starts slowly and accelerates. CSS ease-in.
	EaseIn = CubicBezier(0.4, 0.0, 1.0, 1.0)
	// EaseOut starts quickly and decelerates. CSS ease-out.
	EaseOut = CubicBezier(0.0, 0.0, 0.2, 1.0)
	// EaseInOut starts and ends slowly. CSS ease-in-out.
	EaseInOut = CubicBezier(0.4, 0.0, 0.2, 1.0)
)

// Circular and overshooting variants.
var (
	CircIn      Curve = ease.InCirc
	CircOut     Curve = ease.OutCirc
	CircInOut   Curve = ease.InOutCirc
	BackIn      Curve = ease.InBack
	BackOut     Curve = ease.OutBack
	BackInOut   Curve = ease.InOutBack
	BounceIn    Curve = ease.InBounce
	BounceOut   Curve = ease.OutBounce
	BounceInOut Curve = ease.InOutBounce
)

var named = map[string]Curve{
	"linear":        Linear,
	"ease":          Ease,
	"ease-in":       EaseIn,
	"ease-out":      EaseOut,
	"ease-in-out":   EaseInOut,
	"circ-in":       CircIn,
	"circ-out":      CircOut,
	"circ-in-out":   CircInOut,
	"back-in":       BackIn,
	"back-out":      BackOut,
	"back-in-out":   BackInOut,
	"bounce-in":     BounceIn,
	"bounce-out":    BounceOut,
	"bounce-in-out": BounceInOut,
}

// Named looks up a curve by its configuration name ("ease-in-out",
// "bounce-out", ...).
func Named(name string) (Curve, bool) {
	c, ok := named[name]
	return c, ok
}

// CubicBezier returns a cubic-bezier easing function matching CSS
// cubic-bezier(). The parameters define the two control points (x1,y1) and
// (x2,y2); the curve starts at (0,0) and ends at (1,1). The curve parameter
// is solved numerically with a bounded iteration count, so evaluation stays
// O(1) per frame per animation.
func CubicBezier(x1, y1, x2, y2 float64) Curve {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		// Newton-Raphson converges quickly for most values.
		for i := 0; i < 8; i++ {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return sampleCurve(y1, y2, clampUnit(u))
			}
			dx := sampleCurveDerivative(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		// Fallback to bisection to guarantee a stable solution in [0,1].
		lo, hi := 0.0, 1.0
		u = clampUnit(u)
		for i := 0; i < 12; i++ {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}

		return sampleCurve(y1, y2, u)
	}
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
