// Package value defines the typed animatable values the motion runtime
// interpolates: scalars, lengths, angles, colors, and composite transforms.
//
// Two values participate in one interpolation only when they share the same
// [Kind]; mixing kinds is a construction-time error surfaced when an
// animation is submitted, never a silent coercion at frame time.
package value

import (
	"math"
	"strconv"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	// KindScalar is a unitless numeric value.
	KindScalar Kind = iota
	// KindLength is a length in device-independent pixels.
	KindLength
	// KindAngle is an angle in degrees.
	KindAngle
	// KindColor is a straight-alpha RGB color.
	KindColor
	// KindComposite is an ordered list of named sub-transforms.
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindLength:
		return "length"
	case KindAngle:
		return "angle"
	case KindColor:
		return "color"
	case KindComposite:
		return "composite"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is one animatable value. The variant set is closed: Scalar, Length,
// Angle, Color, and Composite.
type Value interface {
	// Kind returns the variant of this value.
	Kind() Kind
	// String returns the CSS serialization of this value.
	String() string
}

// Scalar is a unitless numeric value such as opacity.
type Scalar float64

// Kind returns KindScalar.
func (Scalar) Kind() Kind { return KindScalar }

func (s Scalar) String() string { return formatFloat(float64(s)) }

// Length is a length in device-independent pixels.
type Length float64

// Kind returns KindLength.
func (Length) Kind() Kind { return KindLength }

func (l Length) String() string { return formatFloat(float64(l)) + "px" }

// Angle is an angle in degrees. Spring math operates on radians via
// [Angle.Radians]; the stored representation stays in degrees.
type Angle float64

// Kind returns KindAngle.
func (Angle) Kind() Kind { return KindAngle }

func (a Angle) String() string { return formatFloat(float64(a)) + "deg" }

// Radians returns the angle converted to radians.
func (a Angle) Radians() float64 { return float64(a) * math.Pi / 180 }

// Target is a named set of property-value pairs representing one animation
// endpoint (initial, target, or intermediate keyframe). Key order is not
// significant.
type Target map[string]Value

// Clone returns a shallow copy of the target. Values are immutable, so a
// shallow copy is sufficient.
func (t Target) Clone() Target {
	if t == nil {
		return nil
	}
	out := make(Target, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
