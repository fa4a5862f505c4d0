package value

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/go-drift/motion/pkg/errors"
)

// AlignPair decomposes an interpolation pair into parallel scalar component
// vectors for physics driving. The returned template captures the value's
// structure; Recompose rebuilds a Value of the same shape from a component
// vector.
//
// Angles decompose to radians (spring math runs in radians); Recompose
// converts back to degrees. Composites are aligned the same way
// interpolation aligns them: start's declared order first, then end-only
// sub-transforms, with identity values filling the missing side.
func AlignPair(start, end Value) (template Value, from, to []float64, err error) {
	if start == nil || end == nil || start.Kind() != end.Kind() {
		return nil, nil, nil, errors.TypeMismatch("value.AlignPair", "", kindName(start), kindName(end))
	}

	switch a := start.(type) {
	case Scalar:
		return a, []float64{float64(a)}, []float64{float64(end.(Scalar))}, nil
	case Length:
		return a, []float64{float64(a)}, []float64{float64(end.(Length))}, nil
	case Angle:
		return a, []float64{a.Radians()}, []float64{end.(Angle).Radians()}, nil
	case Color:
		b := end.(Color)
		return a,
			[]float64{a.RGB.R, a.RGB.G, a.RGB.B, a.Alpha},
			[]float64{b.RGB.R, b.RGB.G, b.RGB.B, b.Alpha},
			nil
	case Composite:
		b := end.(Composite)
		merged := lerpComposite(a, b, 0.5) // establishes the aligned order
		from = make([]float64, len(merged))
		to = make([]float64, len(merged))
		for i, st := range merged {
			if v, ok := a.find(st.Name); ok {
				from[i] = v
			} else {
				from[i] = identityFor(st.Name)
			}
			if v, ok := b.find(st.Name); ok {
				to[i] = v
			} else {
				to[i] = identityFor(st.Name)
			}
		}
		return merged, from, to, nil
	default:
		return nil, nil, nil, errors.TypeMismatch("value.AlignPair", "", start.Kind().String(), "known kind")
	}
}

// Recompose rebuilds a Value with the template's structure from a component
// vector produced against the same template by AlignPair.
func Recompose(template Value, comps []float64) Value {
	switch t := template.(type) {
	case Scalar:
		return Scalar(comps[0])
	case Length:
		return Length(comps[0])
	case Angle:
		return Angle(comps[0] * 180 / math.Pi)
	case Color:
		return Color{
			RGB:   colorful.Color{R: comps[0], G: comps[1], B: comps[2]},
			Alpha: comps[3],
		}
	case Composite:
		out := make(Composite, len(t))
		for i, st := range t {
			out[i] = SubTransform{Name: st.Name, Value: comps[i]}
		}
		return out
	default:
		return template
	}
}
