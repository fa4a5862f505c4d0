package value

import "github.com/go-drift/motion/pkg/errors"

// Interpolate returns the value between start and end at progress t.
//
// It is pure: the same inputs always produce the same output. t=0 returns
// start and t=1 returns end exactly, with no floating drift at the
// endpoints. Values of t outside [0,1] extrapolate linearly, which is what
// overshooting curves (back, spring) rely on.
//
// Interpolating values of different kinds fails with a type-mismatch error;
// callers surface this at submission time so malformed animations fail fast.
func Interpolate(start, end Value, t float64) (Value, error) {
	if start == nil || end == nil {
		return nil, errors.TypeMismatch("value.Interpolate", "", "nil", "value")
	}
	if start.Kind() != end.Kind() {
		return nil, errors.TypeMismatch("value.Interpolate", "", start.Kind().String(), end.Kind().String())
	}
	if t == 0 {
		return start, nil
	}
	if t == 1 {
		return end, nil
	}

	switch a := start.(type) {
	case Scalar:
		return Scalar(lerp(float64(a), float64(end.(Scalar)), t)), nil
	case Length:
		return Length(lerp(float64(a), float64(end.(Length)), t)), nil
	case Angle:
		return Angle(lerp(float64(a), float64(end.(Angle)), t)), nil
	case Color:
		return lerpColor(a, end.(Color), t), nil
	case Composite:
		return lerpComposite(a, end.(Composite), t), nil
	default:
		return nil, errors.TypeMismatch("value.Interpolate", "", start.Kind().String(), "known kind")
	}
}

// CheckCompatible verifies that every property in from has a matching-kind
// counterpart in to. It reports the first offending property.
func CheckCompatible(from, to Target) error {
	for name, fv := range from {
		tv, ok := to[name]
		if !ok {
			continue
		}
		if fv == nil || tv == nil || fv.Kind() != tv.Kind() {
			return errors.TypeMismatch("value.CheckCompatible", name, kindName(fv), kindName(tv))
		}
	}
	return nil
}

func kindName(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
