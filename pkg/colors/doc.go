// Package colors provides RGBA colors, named palettes and color maps.
//
// Colors are stored as 8-bit non-premultiplied sRGB ([Color] is a
// [color.NRGBA]) but blending, averaging and nearest-color search happen in
// linear light using the piecewise sRGB transfer function. Blending red and green at 0.5 therefore gives a
// brighter yellow than naive sRGB averaging would.
//
// # Parsing
//
// [Parse] accepts the loose color specifications found in chart
// descriptions:
//
//	colors.Parse("#c00")          // short hex
//	colors.Parse("#80808080")     // hex with alpha
//	colors.Parse("steelblue")     // CSS name
//	colors.Parse([]int{0, 0, 255}) // RGB tuple
//
// # Palettes
//
// A [Palette] is an ordered list of named colors. [Tab10], [Paired] and
// [Heraldic] are built in. Palettes support modular indexing (At),
// case-insensitive lookup by name (Get) and nearest-color quantization.
package colors
