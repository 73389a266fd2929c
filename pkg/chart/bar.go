package chart

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/config"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/legend"
	"github.com/matzehuels/chartkit/pkg/raster"
	"github.com/matzehuels/chartkit/pkg/text"
)

// Table is numeric chart data: one row per bar or group of bars, one column
// per group member or stack component. Rows and Columns name them and may
// be empty.
type Table struct {
	Rows    []string
	Columns []string
	Values  [][]float64
}

// NumRows returns the number of data rows.
func (t Table) NumRows() int { return len(t.Values) }

// NumCols returns the number of data columns.
func (t Table) NumCols() int {
	if len(t.Values) == 0 {
		return 0
	}
	return len(t.Values[0])
}

// Validate checks that the table is non-empty and rectangular and that its
// names match its shape.
func (t Table) Validate() error {
	if len(t.Values) == 0 {
		return errors.New(errors.ErrCodeDataShape, "table has no rows")
	}
	n := len(t.Values[0])
	if n == 0 {
		return errors.New(errors.ErrCodeDataShape, "table has no columns")
	}
	for i, row := range t.Values {
		if len(row) != n {
			return errors.New(errors.ErrCodeDataShape, "row %d has %d values, want %d", i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New(errors.ErrCodeNumericRange, "value at row %d, column %d is %v", i, j, v)
			}
		}
	}
	if len(t.Rows) != 0 && len(t.Rows) != len(t.Values) {
		return errors.New(errors.ErrCodeDataShape, "%d row names for %d rows", len(t.Rows), len(t.Values))
	}
	if len(t.Columns) != 0 && len(t.Columns) != n {
		return errors.New(errors.ErrCodeDataShape, "%d column names for %d columns", len(t.Columns), n)
	}
	return nil
}

// BarType selects how columns of a row are drawn.
type BarType int

const (
	// Grouped draws one bar per column side by side.
	Grouped BarType = iota
	// Stacked stacks the columns of a row into one bar.
	Stacked
	// StackedPercentage stacks each row normalised to sum to one.
	StackedPercentage
)

var barTypeNames = []string{"grouped", "stacked", "stacked_percentage"}

func (t BarType) String() string {
	if int(t) < len(barTypeNames) {
		return barTypeNames[t]
	}
	return fmt.Sprintf("BarType(%d)", int(t))
}

// ParseBarType parses "grouped", "stacked" or "stacked_percentage".
func ParseBarType(s string) (BarType, error) {
	for i, n := range barTypeNames {
		if strings.EqualFold(s, n) {
			return BarType(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeArgument, "unknown bar type %q", s)
}

// Position places a label relative to a bar.
type Position int

const (
	// Inside centres the label in the bar.
	Inside Position = iota
	// Outside puts the label just past the bar's head.
	Outside
	// Above puts the label beyond the maximum end of the value axis.
	Above
	// Below puts the label beyond the minimum end of the value axis.
	Below
	// Axis puts the label on the zero line, opposite the bar.
	Axis
)

var positionNames = []string{"inside", "outside", "above", "below", "axis"}

func (p Position) String() string {
	if int(p) < len(positionNames) {
		return positionNames[p]
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// ParsePosition parses a position name such as "outside".
func ParsePosition(s string) (Position, error) {
	for i, n := range positionNames {
		if strings.EqualFold(s, n) {
			return Position(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeArgument, "unknown label position %q", s)
}

// CellLabelFunc labels the bar for column col of row row. v is the plotted
// value (a fraction of the row total for StackedPercentage) and w, h the
// bar's size in pixels.
type CellLabelFunc func(col, row int, v float64, w, h int) Label

// RowLabelFunc labels a row.
type RowLabelFunc func(row int) Label

// ValueLabels returns a CellLabelFunc printing each value with format.
func ValueLabels(format func(float64) string) CellLabelFunc {
	if format == nil {
		format = formatValue
	}
	return func(_, _ int, v float64, _, _ int) Label { return TextLabel(format(v)) }
}

// RowNames returns a RowLabelFunc printing the table's row names.
func RowNames(t Table) RowLabelFunc {
	return func(row int) Label {
		if row < len(t.Rows) {
			return TextLabel(t.Rows[row])
		}
		return Label{}
	}
}

// LegendOptions places a legend inside the plot area.
type LegendOptions struct {
	// X and Y are the legend's position as fractions of the plot size; the
	// same fraction of the legend lands there, so 0,0 is top left and 1,1
	// bottom right.
	X, Y float64
	// Labels default to the column names.
	Labels []string
	legend.Options
}

// BarOptions configures BarChart.
type BarOptions struct {
	// BarWidth is the thickness of each bar and ChartLength the length of
	// the value axis, both in pixels.
	BarWidth    int
	ChartLength int

	Type       BarType
	Horizontal bool

	// Spacing separates groups, and the first and last group from the
	// plot edges.
	Spacing int

	// Colors fills bars; nil colors columns from the tab10 palette.
	Colors FillFunc

	// YMin and YMax fix the value range. The defaults are min(0, min(data))
	// and max(data). Both are ignored for StackedPercentage.
	YMin, YMax *float64

	// Intervals between grid lines, axis ticks and axis labels; zero omits
	// them.
	GridInterval  float64
	TickInterval  float64
	LabelInterval float64
	// TickLength defaults to 4.
	TickLength  int
	LabelFormat func(float64) string

	// GridColor defaults to light grey and AxisColor to black.
	GridColor color.Color
	AxisColor color.Color

	CellLabels map[Position]CellLabelFunc
	// RowLabels accepts Below and Above.
	RowLabels map[Position]RowLabelFunc

	XLabel, YLabel string

	Font   text.Font
	FG, BG color.Color

	Legend *LegendOptions

	Loader text.Loader
	Config *config.Config
}

const (
	labelGap          = 2
	defaultTickLength = 4
	maxAxisMarks      = 10000
)

var defaultGridColor = colors.RGB(0xcc, 0xcc, 0xcc)

func formatValue(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// valueScale maps data values to pixel offsets along the value axis.
type valueScale struct {
	min, max float64
	length   int
}

// pos clips v to the range and returns its offset from the axis start.
func (s valueScale) pos(v float64) int {
	v = math.Max(s.min, math.Min(s.max, v))
	return int(math.Round((v - s.min) / (s.max - s.min) * float64(s.length)))
}

// marks returns the offsets of the multiples of step inside the range.
func (s valueScale) marks(step float64) ([]int, []float64, error) {
	if step <= 0 {
		return nil, nil, nil
	}
	const eps = 1e-9
	first := math.Ceil(s.min/step - eps)
	last := math.Floor(s.max/step + eps)
	if last-first > maxAxisMarks {
		return nil, nil, errors.New(errors.ErrCodeNumericRange, "interval %v is too small for range [%v, %v]", step, s.min, s.max)
	}
	var offs []int
	var vals []float64
	for k := first; k <= last; k++ {
		v := k * step
		vals = append(vals, v)
		offs = append(offs, s.pos(v))
	}
	return offs, vals, nil
}

// barGeometry converts between chart coordinates, a main-axis position and
// a value-axis offset, and image coordinates.
type barGeometry struct {
	horizontal bool
	length     int // value axis
	mainLen    int
}

func (g barGeometry) size() image.Point {
	if g.horizontal {
		return image.Pt(g.length, g.mainLen)
	}
	return image.Pt(g.mainLen, g.length)
}

func (g barGeometry) rect(m0, m1, v0, v1 int) image.Rectangle {
	if g.horizontal {
		return image.Rect(v0, m0, v1, m1)
	}
	return image.Rect(m0, g.length-v1, m1, g.length-v0)
}

func (g barGeometry) point(m, v int) image.Point {
	if g.horizontal {
		return image.Pt(v, m)
	}
	return image.Pt(m, g.length-v)
}

// outward aligns a label so it extends from its anchor along the value
// axis, towards larger values when dir > 0.
func (g barGeometry) outward(dir int) raster.Align {
	switch {
	case g.horizontal && dir > 0:
		return raster.Left
	case g.horizontal:
		return raster.Right
	case dir > 0:
		return raster.Bottom
	}
	return raster.Top
}

// extent is the size of img along the value axis.
func (g barGeometry) extent(img image.Image) int {
	s := raster.Size(img)
	if g.horizontal {
		return s.X
	}
	return s.Y
}

// line returns the one-pixel line across the plot at value offset o. The
// line for the axis start lies on the plot's last row or first column.
func (g barGeometry) line(o int) image.Rectangle {
	if g.horizontal {
		x := max(0, min(o, g.length-1))
		return image.Rect(x, 0, x+1, g.mainLen)
	}
	y := max(0, min(g.length-o, g.length-1))
	return image.Rect(0, y, g.mainLen, y+1)
}

type barSpec struct {
	row, col   int
	v          float64
	m0, m1     int
	v0, v1     int
	sign       int
	head, tail int
}

// BarChart draws a bar chart. Without labels, axes or legend the result is
// exactly the plot area.
func BarChart(t Table, opts BarOptions) (*image.NRGBA, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if opts.BarWidth <= 0 || opts.ChartLength <= 0 {
		return nil, errors.New(errors.ErrCodeArgument, "bar width and chart length must be positive, got %d and %d", opts.BarWidth, opts.ChartLength)
	}
	if opts.Spacing < 0 {
		return nil, errors.New(errors.ErrCodeArgument, "negative spacing %d", opts.Spacing)
	}
	if opts.GridInterval < 0 || opts.TickInterval < 0 || opts.LabelInterval < 0 {
		return nil, errors.New(errors.ErrCodeNumericRange, "axis intervals must not be negative")
	}
	if opts.Type < Grouped || opts.Type > StackedPercentage {
		return nil, errors.New(errors.ErrCodeArgument, "unknown bar type %d", int(opts.Type))
	}

	values := t.Values
	if opts.Type == StackedPercentage {
		values = normalizeRows(values)
	}
	lo, hi, err := barRange(values, opts)
	if err != nil {
		return nil, err
	}
	scale := valueScale{min: lo, max: hi, length: opts.ChartLength}
	bars, geom := layoutBars(values, opts, scale)

	fills := opts.Colors
	if fills == nil {
		fills = Colors()
	}
	gridColor, axisColor := opts.GridColor, opts.AxisColor
	if gridColor == nil {
		gridColor = defaultGridColor
	}
	if axisColor == nil {
		axisColor = colors.Black
	}

	plot := raster.New(geom.size().X, geom.size().Y, opts.BG)
	grid, _, err := scale.marks(opts.GridInterval)
	if err != nil {
		return nil, err
	}
	for _, o := range grid {
		raster.FillRect(plot, geom.line(o), gridColor)
	}
	for _, b := range bars {
		r := geom.rect(b.m0, b.m1, b.v0, b.v1)
		if r.Empty() {
			continue
		}
		raster.Paste(plot, raster.PaintFill(fills(b.col, b.row, b.v), r.Size()), r.Min)
	}

	lb := newLabeler(opts.Font, opts.FG, opts.Loader, opts.Config)
	canvas := raster.NewCanvas(plot, opts.BG)
	if err := drawValueAxis(canvas, geom, scale, opts, lb, axisColor); err != nil {
		return nil, err
	}
	ext, err := drawCellLabels(canvas, geom, scale, bars, opts, lb)
	if err != nil {
		return nil, err
	}
	if err := drawRowLabels(canvas, geom, t, opts, lb, ext); err != nil {
		return nil, err
	}
	if err := drawAxisTitles(canvas, geom, opts, lb); err != nil {
		return nil, err
	}
	if opts.Legend != nil {
		if err := drawBarLegend(canvas, geom, t, fills, opts); err != nil {
			return nil, err
		}
	}
	return canvas.Image(), nil
}

func normalizeRows(values [][]float64) [][]float64 {
	out := make([][]float64, len(values))
	for i, row := range values {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		out[i] = make([]float64, len(row))
		if sum == 0 {
			continue
		}
		for j, v := range row {
			out[i][j] = v / sum
		}
	}
	return out
}

func barRange(values [][]float64, opts BarOptions) (float64, float64, error) {
	if opts.Type == StackedPercentage {
		return 0, 1, nil
	}
	lo, hi := 0.0, math.Inf(-1)
	for _, row := range values {
		if opts.Type == Stacked {
			pos, neg := 0.0, 0.0
			for _, v := range row {
				if v >= 0 {
					pos += v
				} else {
					neg += v
				}
			}
			lo, hi = math.Min(lo, neg), math.Max(hi, pos)
			continue
		}
		for _, v := range row {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if opts.YMin != nil {
		lo = *opts.YMin
	}
	if opts.YMax != nil {
		hi = *opts.YMax
	} else if hi <= lo {
		hi = lo + 1
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || lo >= hi {
		return 0, 0, errors.New(errors.ErrCodeNumericRange, "value range [%v, %v] is empty", lo, hi)
	}
	return lo, hi, nil
}

func layoutBars(values [][]float64, opts BarOptions, s valueScale) ([]barSpec, barGeometry) {
	nc := len(values[0])
	bw, sp := opts.BarWidth, opts.Spacing
	group := bw
	if opts.Type == Grouped {
		group = nc * bw
	}
	geom := barGeometry{
		horizontal: opts.Horizontal,
		length:     opts.ChartLength,
		mainLen:    sp + len(values)*(group+sp),
	}

	var bars []barSpec
	zero := s.pos(0)
	for r, row := range values {
		start := sp + r*(group+sp)
		pos, neg := 0.0, 0.0
		for c, v := range row {
			b := barSpec{row: r, col: c, v: v, sign: 1}
			if v < 0 {
				b.sign = -1
			}
			if opts.Type == Grouped {
				b.m0 = start + c*bw
				b.v0, b.v1 = zero, s.pos(v)
			} else {
				b.m0 = start
				if v >= 0 {
					b.v0, b.v1 = s.pos(pos), s.pos(pos+v)
					pos += v
				} else {
					b.v0, b.v1 = s.pos(neg), s.pos(neg+v)
					neg += v
				}
			}
			b.m1 = b.m0 + bw
			b.head, b.tail = b.v1, b.v0
			if b.v0 > b.v1 {
				b.v0, b.v1 = b.v1, b.v0
			}
			bars = append(bars, b)
		}
	}
	return bars, geom
}

func drawValueAxis(c *raster.Canvas, g barGeometry, s valueScale, opts BarOptions, lb labeler, axisColor color.Color) error {
	if opts.TickInterval == 0 && opts.LabelInterval == 0 {
		return nil
	}
	tickLen := opts.TickLength
	if tickLen <= 0 {
		tickLen = defaultTickLength
	}
	if g.horizontal {
		c.Pin(raster.New(g.length, 1, axisColor), image.Pt(0, g.mainLen), raster.TopLeft)
	} else {
		c.Pin(raster.New(1, g.length, axisColor), image.Pt(-1, 0), raster.TopLeft)
	}

	ticks, _, err := s.marks(opts.TickInterval)
	if err != nil {
		return err
	}
	for _, o := range ticks {
		r := g.line(o)
		if g.horizontal {
			c.Pin(raster.New(1, tickLen, axisColor), image.Pt(r.Min.X, g.mainLen+1), raster.TopLeft)
		} else {
			c.Pin(raster.New(tickLen, 1, axisColor), image.Pt(-1-tickLen, r.Min.Y), raster.TopLeft)
		}
	}

	offs, vals, err := s.marks(opts.LabelInterval)
	if err != nil {
		return err
	}
	format := opts.LabelFormat
	if format == nil {
		format = formatValue
	}
	beyond := 1 + labelGap
	if opts.TickInterval > 0 {
		beyond += tickLen
	}
	for i, o := range offs {
		img, err := lb.render(TextLabel(format(vals[i])))
		if err != nil {
			return err
		}
		r := g.line(o)
		if g.horizontal {
			c.Pin(img, image.Pt(r.Min.X, g.mainLen+beyond), raster.Top)
		} else {
			c.Pin(img, image.Pt(-beyond, r.Min.Y), raster.Right)
		}
	}
	return nil
}

// labelExtents records how far Below and Above cell labels reach past the
// plot along the value axis.
type labelExtents struct {
	below, above int
}

func drawCellLabels(c *raster.Canvas, g barGeometry, s valueScale, bars []barSpec, opts BarOptions, lb labeler) (labelExtents, error) {
	var ext labelExtents
	zero := s.pos(0)
	for _, pos := range []Position{Inside, Outside, Above, Below, Axis} {
		fn := opts.CellLabels[pos]
		if fn == nil {
			continue
		}
		for _, b := range bars {
			r := g.rect(b.m0, b.m1, b.v0, b.v1)
			img, err := lb.render(fn(b.col, b.row, b.v, r.Dx(), r.Dy()))
			if err != nil {
				return ext, err
			}
			if img == nil {
				continue
			}
			mc := (b.m0 + b.m1) / 2
			switch pos {
			case Inside:
				c.Pin(img, r.Min.Add(r.Size().Div(2)), raster.Center)
			case Outside:
				c.Pin(img, g.point(mc, b.head+b.sign*labelGap), g.outward(b.sign))
			case Above:
				c.Pin(img, g.point(mc, g.length+labelGap), g.outward(1))
				ext.above = max(ext.above, g.extent(img)+labelGap)
			case Below:
				c.Pin(img, g.point(mc, -labelGap), g.outward(-1))
				ext.below = max(ext.below, g.extent(img)+labelGap)
			case Axis:
				c.Pin(img, g.point(mc, zero-b.sign*labelGap), g.outward(-b.sign))
			}
		}
	}
	return ext, nil
}

func drawRowLabels(c *raster.Canvas, g barGeometry, t Table, opts BarOptions, lb labeler, ext labelExtents) error {
	for pos, fn := range opts.RowLabels {
		if fn == nil {
			continue
		}
		if pos != Below && pos != Above {
			return errors.New(errors.ErrCodeArgument, "row labels go %s or %s, not %s", Below, Above, pos)
		}
	}
	nc := t.NumCols()
	group := opts.BarWidth
	if opts.Type == Grouped {
		group = nc * opts.BarWidth
	}
	for _, pos := range []Position{Below, Above} {
		fn := opts.RowLabels[pos]
		if fn == nil {
			continue
		}
		for r := 0; r < t.NumRows(); r++ {
			img, err := lb.render(fn(r))
			if err != nil {
				return err
			}
			if img == nil {
				continue
			}
			mc := opts.Spacing + r*(group+opts.Spacing) + group/2
			if pos == Below {
				c.Pin(img, g.point(mc, -labelGap-ext.below), g.outward(-1))
			} else {
				c.Pin(img, g.point(mc, g.length+labelGap+ext.above), g.outward(1))
			}
		}
	}
	return nil
}

func drawAxisTitles(c *raster.Canvas, g barGeometry, opts BarOptions, lb labeler) error {
	size := g.size()
	if opts.XLabel != "" {
		img, err := lb.render(TextLabel(opts.XLabel))
		if err != nil {
			return err
		}
		c.Pin(img, image.Pt(size.X/2, c.Bounds().Max.Y+labelGap), raster.Top)
	}
	if opts.YLabel != "" {
		img, err := lb.render(TextLabel(opts.YLabel))
		if err != nil {
			return err
		}
		c.Pin(raster.Rotate90(img), image.Pt(c.Bounds().Min.X-labelGap, size.Y/2), raster.Right)
	}
	return nil
}

func drawBarLegend(c *raster.Canvas, g barGeometry, t Table, fills FillFunc, opts BarOptions) error {
	lo := opts.Legend
	labels := lo.Labels
	if labels == nil {
		labels = t.Columns
	}
	n := t.NumCols()
	if len(labels) != n {
		return errors.New(errors.ErrCodeArgument, "legend needs %d labels, got %d", n, len(labels))
	}
	swatches := make([]legend.Swatch, n)
	for col := 0; col < n; col++ {
		swatches[col] = legend.FillSwatch(fills(col, 0, t.Values[0][col]))
	}
	lopts := lo.Options
	if lopts.Font == (text.Font{}) {
		lopts.Font = opts.Font
	}
	if lopts.FG == nil {
		lopts.FG = opts.FG
	}
	if lopts.Loader == nil {
		lopts.Loader = opts.Loader
	}
	if lopts.Config == nil {
		lopts.Config = opts.Config
	}
	img, err := legend.Generate(swatches, labels, lopts)
	if err != nil {
		return err
	}
	a := raster.Align{X: lo.X, Y: lo.Y}
	c.Pin(img, a.Anchor(g.size()), a)
	return nil
}
