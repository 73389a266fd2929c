package chart

import (
	"image"
	"image/color"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/config"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/geometry"
	"github.com/matzehuels/chartkit/pkg/raster"
	"github.com/matzehuels/chartkit/pkg/text"
)

// GridOptions configures GridChart.
type GridOptions struct {
	// RowLabel and ColLabel label rows on the left and columns on top.
	// CornerLabel fills the cell where they meet.
	RowLabel, ColLabel func(i int) Label
	CornerLabel        Label

	// Padding is added on both sides of every cell, per axis.
	Padding image.Point
	BG      color.Color
	// XAlign holds one alignment or one per data column, YAlign one or one
	// per data row. Row labels are right aligned and column labels bottom
	// aligned.
	XAlign, YAlign []float64

	// GroupRows and GroupCols key rows and columns; runs of equal
	// non-empty keys are framed.
	GroupRows, GroupCols func(i int) string
	// GroupColor colors a group's frame; the default is black.
	GroupColor func(key string) color.Color
	// GroupPadding is the clearance between a frame and its cells,
	// GroupWidth the frame's stroke (default 2) and GroupRounded its corner
	// radius.
	GroupPadding int
	GroupWidth   int
	GroupRounded float64

	Font   text.Font
	FG     color.Color
	Loader text.Loader
	Config *config.Config
}

// GridChart draws data as a grid of cell images. Columns are as wide as
// their widest cell and rows as tall as their tallest; a nil cell image
// leaves its place empty.
func GridChart[T any](data [][]T, cell func(v T, row, col int) image.Image, opts GridOptions) (*image.NRGBA, error) {
	if cell == nil {
		return nil, errors.New(errors.ErrCodeArgument, "grid chart needs a cell function")
	}
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, errors.New(errors.ErrCodeDataShape, "grid has no cells")
	}
	nr, nc := len(data), len(data[0])
	for i, row := range data {
		if len(row) != nc {
			return nil, errors.New(errors.ErrCodeDataShape, "grid row %d has %d cells, want %d", i, len(row), nc)
		}
	}

	lb := newLabeler(opts.Font, opts.FG, opts.Loader, opts.Config)
	labelCol := opts.RowLabel != nil
	labelRow := opts.ColLabel != nil
	li, lj := 0, 0
	if labelRow {
		li = 1
	}
	if labelCol {
		lj = 1
	}

	rows := make([][]image.Image, 0, nr+li)
	if labelRow {
		header := make([]image.Image, 0, nc+lj)
		if labelCol {
			corner, err := lb.render(opts.CornerLabel)
			if err != nil {
				return nil, err
			}
			header = append(header, corner)
		}
		for j := 0; j < nc; j++ {
			img, err := lb.render(opts.ColLabel(j))
			if err != nil {
				return nil, err
			}
			header = append(header, img)
		}
		rows = append(rows, header)
	}
	for i, row := range data {
		r := make([]image.Image, 0, nc+lj)
		if labelCol {
			img, err := lb.render(opts.RowLabel(i))
			if err != nil {
				return nil, err
			}
			r = append(r, img)
		}
		for j, v := range row {
			r = append(r, cell(v, i, j))
		}
		rows = append(rows, r)
	}

	xalign, err := expandAlign(opts.XAlign, nc, lj)
	if err != nil {
		return nil, err
	}
	yalign, err := expandAlign(opts.YAlign, nr, li)
	if err != nil {
		return nil, err
	}
	aopts := raster.ArrayOptions{Padding: opts.Padding, BG: opts.BG, XAlign: xalign, YAlign: yalign}
	layout, err := raster.ArrayLayout(rows, aopts)
	if err != nil {
		return nil, err
	}
	out := raster.New(layout.Size.X, layout.Size.Y, opts.BG)
	for i, r := range rows {
		for j, img := range r {
			raster.Paste(out, img, layout.Images[i][j])
		}
	}
	if opts.GroupRows == nil && opts.GroupCols == nil {
		return out, nil
	}

	width := opts.GroupWidth
	if width <= 0 {
		width = 2
	}
	margin := opts.GroupPadding + width
	out = raster.Pad(out, raster.Uniform(margin), opts.BG)
	frame := func(r image.Rectangle, key string) {
		c := color.Color(colors.Black)
		if opts.GroupColor != nil {
			if gc := opts.GroupColor(key); gc != nil {
				c = gc
			}
		}
		r = r.Inset(-margin).Add(image.Pt(margin, margin))
		raster.Paste(out, geometry.Frame(r.Size(), c, width, opts.GroupRounded), r.Min)
	}
	if opts.GroupRows != nil {
		for _, g := range runs(nr, opts.GroupRows) {
			frame(layout.Cells[li+g.start][lj].Union(layout.Cells[li+g.end-1][lj+nc-1]), g.key)
		}
	}
	if opts.GroupCols != nil {
		for _, g := range runs(nc, opts.GroupCols) {
			frame(layout.Cells[li][lj+g.start].Union(layout.Cells[li+nr-1][lj+g.end-1]), g.key)
		}
	}
	return out, nil
}

// expandAlign broadcasts align to n data entries and prepends extra label
// entries aligned towards the data.
func expandAlign(align []float64, n, extra int) ([]float64, error) {
	var data []float64
	switch len(align) {
	case 0:
		data = repeat(0.5, n)
	case 1:
		data = repeat(align[0], n)
	case n:
		data = align
	default:
		return nil, errors.New(errors.ErrCodeArgument, "got %d alignments for %d rows or columns", len(align), n)
	}
	return append(repeat(1, extra), data...), nil
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

type run struct {
	start, end int
	key        string
}

// runs returns the maximal runs of equal non-empty keys.
func runs(n int, key func(int) string) []run {
	var out []run
	for i := 0; i < n; {
		k := key(i)
		j := i + 1
		for j < n && key(j) == k {
			j++
		}
		if k != "" {
			out = append(out, run{i, j, k})
		}
		i = j
	}
	return out
}
