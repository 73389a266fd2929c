package colors

import "math"

// ColorMap maps a value in [0,1] to a color.
type ColorMap func(t float64) Color

// Gradient returns a color map through evenly spaced stops, interpolating
// in linear light. t is clamped to [0,1].
func Gradient(stops ...Color) ColorMap {
	stops = append([]Color(nil), stops...)
	return func(t float64) Color {
		switch len(stops) {
		case 0:
			return Transparent
		case 1:
			return stops[0]
		}
		if math.IsNaN(t) || t <= 0 {
			return stops[0]
		}
		if t >= 1 {
			return stops[len(stops)-1]
		}
		pos := t * float64(len(stops)-1)
		i := int(pos)
		return stops[i].Blend(stops[i+1], pos-float64(i))
	}
}

// Discrete returns a color map that picks palette colors by bucket:
// [0,1] is split into p.Len() equal bins.
func Discrete(p *Palette) ColorMap {
	return func(t float64) Color {
		n := p.Len()
		if n == 0 {
			return Transparent
		}
		i := int(math.Floor(t * float64(n)))
		if i >= n {
			i = n - 1
		}
		if i < 0 {
			i = 0
		}
		return p.At(i)
	}
}
