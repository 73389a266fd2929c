package chart

import (
	"image"
	"image/color"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/config"
	"github.com/matzehuels/chartkit/pkg/raster"
	"github.com/matzehuels/chartkit/pkg/text"
)

// Label is chart annotation: an image, or text drawn with the chart font.
// Image wins when both are set.
type Label struct {
	Text  string
	Image image.Image
}

// TextLabel returns a text label.
func TextLabel(s string) Label { return Label{Text: s} }

// ImageLabel returns an image label.
func ImageLabel(img image.Image) Label { return Label{Image: img} }

// IsZero reports whether the label draws nothing.
func (l Label) IsZero() bool { return l.Image == nil && l.Text == "" }

// labeler renders labels with shared text options.
type labeler struct {
	opts text.Options
}

func newLabeler(font text.Font, fg color.Color, loader text.Loader, cfg *config.Config) labeler {
	return labeler{opts: text.Options{Font: font, FG: fg, Loader: loader, Config: cfg}}
}

// render returns nil for the zero label.
func (lb labeler) render(l Label) (image.Image, error) {
	if l.Image != nil {
		return l.Image, nil
	}
	if l.Text == "" {
		return nil, nil
	}
	return text.Render(l.Text, lb.opts)
}

// solidFills wraps each color in a solid fill.
func solidFills(cs []color.Color) []raster.Fill {
	out := make([]raster.Fill, len(cs))
	for i, c := range cs {
		out[i] = raster.Solid(c)
	}
	return out
}

// Colors returns a FillFunc that colors bars by column, cycling through cs.
// With no colors it uses the tab10 palette.
func Colors(cs ...color.Color) FillFunc {
	if len(cs) == 0 {
		return PaletteFill(colors.Tab10)
	}
	fills := solidFills(cs)
	return func(col, _ int, _ float64) raster.Fill {
		return fills[col%len(fills)]
	}
}

// PaletteFill colors bars by column from a palette.
func PaletteFill(p *colors.Palette) FillFunc {
	return func(col, _ int, _ float64) raster.Fill {
		return raster.Solid(p.At(col))
	}
}

// FillFunc returns the fill of the bar for column col of row row.
type FillFunc func(col, row int, v float64) raster.Fill
