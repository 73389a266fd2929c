package colors

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/chartkit/pkg/errors"
)

// Color is an 8-bit non-premultiplied sRGB color with alpha.
type Color color.NRGBA

// Common colors.
var (
	Transparent = Color{}
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
)

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA(c).RGBA()
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color { return Color{r, g, b, 255} }

// RGBA returns a color with the given alpha.
func RGBA(r, g, b, a uint8) Color { return Color{r, g, b, a} }

// NRGBA returns c as a standard library color.
func (c Color) NRGBA() color.NRGBA { return color.NRGBA(c) }

// Opaque returns c with alpha set to 255.
func (c Color) Opaque() Color {
	c.A = 255
	return c
}

// WithAlpha returns c with the given alpha.
func (c Color) WithAlpha(a uint8) Color {
	c.A = a
	return c
}

// Hex returns the color as #RRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HexA returns the color as #RRGGBBAA.
func (c Color) HexA() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	if c.A == 255 {
		return c.Hex()
	}
	return c.HexA()
}

// Linear returns the color's RGB components in linear light, each in [0,1].
func (c Color) Linear() (r, g, b float64) {
	return c.colorful().LinearRgb()
}

// FromLinear converts linear-light RGB components back to an sRGB color.
// Components are clamped to [0,1].
func FromLinear(r, g, b float64, a uint8) Color {
	cr, cg, cb := colorful.LinearRgb(r, g, b).Clamped().RGB255()
	return Color{cr, cg, cb, a}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Blend interpolates between c and other in linear light.
// Alpha is interpolated linearly. t is clamped to [0,1]; t=0 returns c and
// t=1 returns other exactly.
func (c Color) Blend(other Color, t float64) Color {
	switch {
	case t <= 0 || math.IsNaN(t):
		return c
	case t >= 1:
		return other
	}
	r1, g1, b1 := c.Linear()
	r2, g2, b2 := other.Linear()
	a := float64(c.A) + (float64(other.A)-float64(c.A))*t
	return FromLinear(
		r1+(r2-r1)*t,
		g1+(g2-g1)*t,
		b1+(b2-b1)*t,
		uint8(math.Round(a)),
	)
}

// Brighten blends c toward white by f, keeping alpha.
func (c Color) Brighten(f float64) Color {
	return c.Blend(White.WithAlpha(c.A), f)
}

// Darken blends c toward black by f, keeping alpha.
func (c Color) Darken(f float64) Color {
	return c.Blend(Black.WithAlpha(c.A), f)
}

// Mean averages colors in linear light; alpha is averaged arithmetically.
// The mean of no colors is Transparent.
func Mean(cs ...Color) Color {
	if len(cs) == 0 {
		return Transparent
	}
	var r, g, b, a float64
	for _, c := range cs {
		lr, lg, lb := c.Linear()
		r += lr
		g += lg
		b += lb
		a += float64(c.A)
	}
	n := float64(len(cs))
	return FromLinear(r/n, g/n, b/n, uint8(math.Round(a/n)))
}

// Convert converts any color.Color to a Color.
func Convert(c color.Color) Color {
	if cc, ok := c.(Color); ok {
		return cc
	}
	return Color(color.NRGBAModel.Convert(c).(color.NRGBA))
}

// MustParse is like Parse but panics on error.
func MustParse(v any) Color {
	c, err := Parse(v)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse converts a color specification to a Color.
//
// Accepted forms are Color, any color.Color, hex strings (#RGB, #RGBA,
// #RRGGBB or #RRGGBBAA, the # being optional), CSS color names, and RGB or
// RGBA tuples given as []int, []uint8, [3]uint8 or [4]uint8.
func Parse(v any) (Color, error) {
	switch x := v.(type) {
	case Color:
		return x, nil
	case string:
		return parseString(x)
	case []int:
		return parseInts(x)
	case []uint8:
		ints := make([]int, len(x))
		for i, b := range x {
			ints[i] = int(b)
		}
		return parseInts(ints)
	case [3]uint8:
		return Color{x[0], x[1], x[2], 255}, nil
	case [4]uint8:
		return Color{x[0], x[1], x[2], x[3]}, nil
	case color.Color:
		return Convert(x), nil
	}
	return Color{}, errors.New(errors.ErrCodeInvalidColor, "unsupported color value %v (%T)", v, v)
}

func parseString(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if c, ok := named[strings.ToLower(s)]; ok {
		return c, nil
	}
	h := strings.TrimPrefix(s, "#")
	var digits []uint8
	switch len(h) {
	case 3, 4:
		for i := 0; i < len(h); i++ {
			v, err := strconv.ParseUint(h[i:i+1], 16, 8)
			if err != nil {
				return Color{}, errors.New(errors.ErrCodeInvalidColor, "invalid hex color %q", s)
			}
			digits = append(digits, uint8(v*17))
		}
	case 6, 8:
		for i := 0; i < len(h); i += 2 {
			v, err := strconv.ParseUint(h[i:i+2], 16, 8)
			if err != nil {
				return Color{}, errors.New(errors.ErrCodeInvalidColor, "invalid hex color %q", s)
			}
			digits = append(digits, uint8(v))
		}
	default:
		return Color{}, errors.New(errors.ErrCodeInvalidColor, "unknown color %q", s)
	}
	c := Color{digits[0], digits[1], digits[2], 255}
	if len(digits) == 4 {
		c.A = digits[3]
	}
	return c, nil
}

func parseInts(v []int) (Color, error) {
	if len(v) != 3 && len(v) != 4 {
		return Color{}, errors.New(errors.ErrCodeInvalidColor, "color tuple must have 3 or 4 components, got %d", len(v))
	}
	out := [4]uint8{0, 0, 0, 255}
	for i, x := range v {
		if x < 0 || x > 255 {
			return Color{}, errors.New(errors.ErrCodeInvalidColor, "color component %d out of range", x)
		}
		out[i] = uint8(x)
	}
	return Color{out[0], out[1], out[2], out[3]}, nil
}
