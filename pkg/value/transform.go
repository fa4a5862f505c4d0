package value

import "strings"

// Sub-transform names accepted in a Composite. Transform order is
// semantically significant, so a Composite preserves declaration order
// rather than normalizing it.
const (
	TranslateX   = "translateX"
	TranslateY   = "translateY"
	TranslateZ   = "translateZ"
	ScaleUniform = "scale"
	ScaleX       = "scaleX"
	ScaleY       = "scaleY"
	Rotate       = "rotate"
	RotateX      = "rotateX"
	RotateY      = "rotateY"
	SkewX        = "skewX"
	SkewY        = "skewY"
)

// SubTransform is one named component of a Composite, e.g. translateX(12px).
type SubTransform struct {
	// Name is one of the sub-transform name constants.
	Name string
	// Value is the magnitude: pixels for translations, degrees for rotations
	// and skews, a factor for scales.
	Value float64
}

// Composite is an ordered list of named sub-transforms. Two composites with
// the same entries in different order are different values.
type Composite []SubTransform

// Kind returns KindComposite.
func (Composite) Kind() Kind { return KindComposite }

func (c Composite) String() string {
	parts := make([]string, 0, len(c))
	for _, st := range c {
		parts = append(parts, st.Name+"("+formatFloat(st.Value)+unitFor(st.Name)+")")
	}
	return strings.Join(parts, " ")
}

// IsIdentity reports whether every sub-transform equals its identity value.
func (c Composite) IsIdentity() bool {
	for _, st := range c {
		if st.Value != identityFor(st.Name) {
			return false
		}
	}
	return true
}

// find returns the value for name and whether it is present.
func (c Composite) find(name string) (float64, bool) {
	for _, st := range c {
		if st.Name == name {
			return st.Value, true
		}
	}
	return 0, false
}

// Translate builds a composite translating by x and y pixels.
func Translate(x, y float64) Composite {
	return Composite{{Name: TranslateX, Value: x}, {Name: TranslateY, Value: y}}
}

// RotateBy builds a composite rotating by the given degrees.
func RotateBy(degrees float64) Composite {
	return Composite{{Name: Rotate, Value: degrees}}
}

// ScaleBy builds a composite with a uniform scale factor.
func ScaleBy(factor float64) Composite {
	return Composite{{Name: ScaleUniform, Value: factor}}
}

// identityFor returns the natural identity value for a sub-transform:
// 1 for scales, 0 for translations, rotations, and skews. A sub-transform
// present in only one interpolation endpoint interpolates from/to this
// value; assuming 0 for a scale is the classic visually-wrong result.
func identityFor(name string) float64 {
	switch name {
	case ScaleUniform, ScaleX, ScaleY:
		return 1
	default:
		return 0
	}
}

func unitFor(name string) string {
	switch name {
	case TranslateX, TranslateY, TranslateZ:
		return "px"
	case Rotate, RotateX, RotateY, SkewX, SkewY:
		return "deg"
	default:
		return ""
	}
}

// lerpComposite interpolates each named sub-transform independently and
// re-serializes in the declared order: start's order first, then entries
// that appear only in end, in end's order. A sub-transform missing from one
// endpoint interpolates from/to its identity value.
func lerpComposite(a, b Composite, t float64) Composite {
	out := make(Composite, 0, len(a)+len(b))
	for _, st := range a {
		to, ok := b.find(st.Name)
		if !ok {
			to = identityFor(st.Name)
		}
		out = append(out, SubTransform{Name: st.Name, Value: lerp(st.Value, to, t)})
	}
	for _, st := range b {
		if _, ok := a.find(st.Name); ok {
			continue
		}
		from := identityFor(st.Name)
		out = append(out, SubTransform{Name: st.Name, Value: lerp(from, st.Value, t)})
	}
	return out
}
