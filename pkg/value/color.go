package value

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Color is a straight-alpha color. The RGB channels live in a
// go-colorful Color; Alpha is kept separate so channel interpolation never
// mixes premultiplied and straight representations.
type Color struct {
	// RGB holds the color channels in [0,1].
	RGB colorful.Color
	// Alpha is the opacity in [0,1].
	Alpha float64
}

// Kind returns KindColor.
func (Color) Kind() Kind { return KindColor }

func (c Color) String() string {
	if c.Alpha >= 1 {
		return c.RGB.Clamped().Hex()
	}
	r, g, b := c.RGB.Clamped().RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatFloat(c.Alpha))
}

// RGBA creates an opaque-capable color from 8-bit channels.
func RGBA(r, g, b, a uint8) Color {
	return Color{
		RGB:   colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255},
		Alpha: float64(a) / 255,
	}
}

// ParseColor parses a CSS hex color ("#rgb" or "#rrggbb") or a named color
// ("rebeccapurple"). Named colors come from the SVG 1.1 color list.
func ParseColor(s string) (Color, error) {
	if strings.HasPrefix(s, "#") {
		if len(s) == 4 {
			// Expand short form #rgb to #rrggbb.
			s = "#" + strings.Repeat(string(s[1]), 2) +
				strings.Repeat(string(s[2]), 2) +
				strings.Repeat(string(s[3]), 2)
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return Color{RGB: c, Alpha: 1}, nil
	}

	named, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return Color{}, fmt.Errorf("unknown color name %q", s)
	}
	c, _ := colorful.MakeColor(color.NRGBAModel.Convert(named))
	return Color{RGB: c, Alpha: float64(named.A) / 255}, nil
}

// lerpColor blends component-wise in RGB space with the alpha channel lerped
// separately. One fixed space, no gamut conversion, so the operation is
// deterministic and cheap.
func lerpColor(a, b Color, t float64) Color {
	return Color{
		RGB:   a.RGB.BlendRgb(b.RGB, t),
		Alpha: lerp(a.Alpha, b.Alpha, t),
	}
}
