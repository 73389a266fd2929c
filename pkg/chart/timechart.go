package chart

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"time"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/config"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/raster"
	"github.com/matzehuels/chartkit/pkg/text"
)

// TimeOptions configures TimeChart. Start and End are required.
type TimeOptions[T any] struct {
	Start, End func(T) float64
	// Color fills an interval; the default cycles through tab10 by row.
	Color func(T) raster.Fill
	// Label draws over an interval, given its size.
	Label func(v T, w, h int) image.Image

	Width, RowHeight int
	XMin, XMax       *float64

	GridInterval float64
	// GridLabel formats grid values above the chart; nil means no labels.
	GridLabel func(float64) string
	GridFont  text.Font
	GridColor color.Color

	// LabelsLeft and LabelsRight hold one label per row, or none.
	LabelsLeft, LabelsRight []Label
	LabelFont               text.Font
	Title                   Label
	// TimelineSpacing separates rows.
	TimelineSpacing int

	BG, FG color.Color
	Loader text.Loader
	Config *config.Config
}

// FormatYear is a GridLabel printing whole numbers.
func FormatYear(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

// Year converts t to a decimal year.
func Year(t time.Time) float64 {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(1, 0, 0)
	return float64(t.Year()) + float64(t.Sub(start))/float64(end.Sub(start))
}

// TimeChart draws rows of intervals along a linear time axis Width pixels
// long. Intervals are clipped to [XMin, XMax] and are at least one pixel
// wide.
func TimeChart[T any](rows [][]T, opts TimeOptions[T]) (*image.NRGBA, error) {
	if opts.Start == nil || opts.End == nil {
		return nil, errors.New(errors.ErrCodeArgument, "time chart needs start and end functions")
	}
	if opts.Width <= 0 || opts.RowHeight <= 0 {
		return nil, errors.New(errors.ErrCodeArgument, "width and row height must be positive")
	}
	if opts.TimelineSpacing < 0 {
		return nil, errors.New(errors.ErrCodeArgument, "timeline spacing must not be negative")
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeDataShape, "time chart has no rows")
	}
	for _, labels := range [][]Label{opts.LabelsLeft, opts.LabelsRight} {
		if len(labels) != 0 && len(labels) != len(rows) {
			return nil, errors.New(errors.ErrCodeDataShape, "got %d row labels for %d rows", len(labels), len(rows))
		}
	}
	if opts.GridInterval < 0 || math.IsNaN(opts.GridInterval) {
		return nil, errors.New(errors.ErrCodeNumericRange, "grid interval must not be negative")
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range rows {
		for _, v := range row {
			s, e := span(opts.Start(v), opts.End(v))
			lo, hi = math.Min(lo, s), math.Max(hi, e)
		}
	}
	if opts.XMin != nil {
		lo = *opts.XMin
	}
	if opts.XMax != nil {
		hi = *opts.XMax
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) || lo >= hi {
		return nil, errors.New(errors.ErrCodeNumericRange, "invalid time range [%v, %v]", lo, hi)
	}

	scale := valueScale{min: lo, max: hi, length: opts.Width}
	n := len(rows)
	g := barGeometry{horizontal: true, length: opts.Width, mainLen: n*opts.RowHeight + (n-1)*opts.TimelineSpacing}
	plot := raster.New(g.size().X, g.size().Y, opts.BG)

	offs, vals, err := scale.marks(opts.GridInterval)
	if err != nil {
		return nil, err
	}
	gridColor := opts.GridColor
	if gridColor == nil {
		gridColor = defaultGridColor
	}
	for _, o := range offs {
		raster.FillRect(plot, g.line(o), gridColor)
	}

	for i, row := range rows {
		m0 := i * (opts.RowHeight + opts.TimelineSpacing)
		for _, v := range row {
			s, e := span(opts.Start(v), opts.End(v))
			if e < lo || s > hi {
				continue
			}
			v0, v1 := scale.pos(s), scale.pos(e)
			if v1-v0 < 1 {
				v0 = min(v0, opts.Width-1)
				v1 = v0 + 1
			}
			r := g.rect(m0, m0+opts.RowHeight, v0, v1)
			var f raster.Fill = raster.Solid(colors.Tab10.At(i))
			if opts.Color != nil {
				f = opts.Color(v)
			}
			raster.Paste(plot, raster.PaintFill(f, r.Size()), r.Min)
			if opts.Label != nil {
				if img := opts.Label(v, r.Dx(), r.Dy()); img != nil {
					c := r.Min.Add(r.Size().Div(2))
					raster.Paste(plot, img, c.Sub(raster.Center.Anchor(raster.Size(img))))
				}
			}
		}
	}

	c := raster.NewCanvas(plot, opts.BG)
	rowLabels := newLabeler(opts.LabelFont, opts.FG, opts.Loader, opts.Config)
	for i := range rows {
		mid := i*(opts.RowHeight+opts.TimelineSpacing) + opts.RowHeight/2
		if len(opts.LabelsLeft) > 0 {
			img, err := rowLabels.render(opts.LabelsLeft[i])
			if err != nil {
				return nil, err
			}
			c.Pin(img, image.Pt(-labelGap, mid), raster.Right)
		}
		if len(opts.LabelsRight) > 0 {
			img, err := rowLabels.render(opts.LabelsRight[i])
			if err != nil {
				return nil, err
			}
			c.Pin(img, image.Pt(opts.Width+labelGap, mid), raster.Left)
		}
	}

	if opts.GridLabel != nil {
		gridLabels := newLabeler(opts.GridFont, opts.FG, opts.Loader, opts.Config)
		for k, o := range offs {
			img, err := gridLabels.render(TextLabel(opts.GridLabel(vals[k])))
			if err != nil {
				return nil, err
			}
			c.Pin(img, image.Pt(g.line(o).Min.X, -labelGap), raster.Bottom)
		}
	}

	title, err := rowLabels.render(opts.Title)
	if err != nil {
		return nil, err
	}
	c.Pin(title, image.Pt(opts.Width/2, c.Bounds().Min.Y-labelGap), raster.Bottom)
	return c.Image(), nil
}

func span(s, e float64) (float64, float64) {
	if e < s {
		return e, s
	}
	return s, e
}
