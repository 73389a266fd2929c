package chart

import (
	"image"
	"testing"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/legend"
	"github.com/matzehuels/chartkit/pkg/raster"
	"github.com/matzehuels/chartkit/pkg/text"
)

var (
	red   = colors.RGB(255, 0, 0)
	blue  = colors.RGB(0, 0, 255)
	green = colors.RGB(0, 255, 0)
	small = text.Font{Family: "Go", Size: 8}
)

func ptr(v float64) *float64 { return &v }

func legendOptions() legend.Options {
	return legend.Options{BoxSizes: []legend.BoxSize{legend.Square(8)}, Font: small, Spacing: 2}
}

// runLength counts the pixels of column x that have color c.
func runLength(img *image.NRGBA, x int, c colors.Color) int {
	n := 0
	for y := 0; y < img.Rect.Dy(); y++ {
		if raster.At(img, x, y) == c {
			n++
		}
	}
	return n
}

func TestBarChartGrouped(t *testing.T) {
	img, err := BarChart(Table{Values: [][]float64{{3, 1}, {1, 2}}}, BarOptions{
		BarWidth:     10,
		ChartLength:  100,
		YMax:         ptr(5),
		Colors:       Colors(red, blue),
		GridInterval: 1,
	})
	if err != nil {
		t.Fatalf("BarChart() failed: %v", err)
	}
	if got := raster.Size(img); got != image.Pt(40, 100) {
		t.Fatalf("got size %v, want plot area 40x100", got)
	}

	tests := []struct {
		name string
		x    int
		c    colors.Color
		want int
	}{
		{"row 0 col 0", 5, red, 60},
		{"row 0 col 1", 15, blue, 20},
		{"row 1 col 0", 25, red, 20},
		{"row 1 col 1", 35, blue, 40},
	}
	for _, tt := range tests {
		if got := runLength(img, tt.x, tt.c); got != tt.want {
			t.Errorf("%s: got bar length %d, want %d", tt.name, got, tt.want)
		}
	}
	if got := raster.At(img, 5, 99); got != red {
		t.Errorf("bar should reach the bottom row, got %v", got)
	}

	// Grid lines at multiples of 1, visible above the bars.
	for _, y := range []int{0, 20} {
		if got := raster.At(img, 5, y); got != defaultGridColor {
			t.Errorf("row %d = %v, want grid", y, got)
		}
	}
	if got := raster.At(img, 5, 10); got.A != 0 {
		t.Errorf("row 10 should be empty, got %v", got)
	}
}

func TestBarChartSpacing(t *testing.T) {
	img, err := BarChart(Table{Values: [][]float64{{1}, {1}, {1}}}, BarOptions{
		BarWidth:    4,
		ChartLength: 10,
		Spacing:     3,
		Colors:      Colors(red),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := raster.Size(img).X; got != 3+3*(4+3) {
		t.Errorf("got width %d, want %d", got, 3+3*(4+3))
	}
	for _, x := range []int{3, 6, 10, 13, 17, 20} {
		if got := raster.At(img, x, 5); got != red {
			t.Errorf("x=%d = %v, want bar", x, got)
		}
	}
	for _, x := range []int{0, 2, 7, 9, 14, 16, 21, 23} {
		if got := raster.At(img, x, 5); got.A != 0 {
			t.Errorf("x=%d = %v, want gap", x, got)
		}
	}
}

func TestBarChartStackedPercentage(t *testing.T) {
	const length = 97
	rows := [][]float64{{1, 2, 3}, {5, 5, 1}, {1, 1, 1}, {7, 0, 0.5}}
	img, err := BarChart(Table{Values: rows}, BarOptions{
		BarWidth:    5,
		ChartLength: length,
		Spacing:     1,
		Type:        StackedPercentage,
		YMax:        ptr(1000),
	})
	if err != nil {
		t.Fatal(err)
	}
	for r := range rows {
		x := 1 + r*6 + 2
		n := 0
		for y := 0; y < length; y++ {
			if raster.At(img, x, y).A != 0 {
				n++
			}
		}
		if n != length {
			t.Errorf("row %d stack spans %d pixels, want %d", r, n, length)
		}
	}
}

func TestBarChartStacked(t *testing.T) {
	img, err := BarChart(Table{Values: [][]float64{{1, 3}}}, BarOptions{
		BarWidth:    2,
		ChartLength: 40,
		Type:        Stacked,
		Colors:      Colors(red, blue),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := runLength(img, 0, red); got != 10 {
		t.Errorf("first component = %d px, want 10", got)
	}
	if got := runLength(img, 0, blue); got != 30 {
		t.Errorf("second component = %d px, want 30", got)
	}
	if raster.At(img, 0, 39) != red || raster.At(img, 0, 0) != blue {
		t.Error("first component should sit at the bottom of the stack")
	}
}

func TestBarChartNegative(t *testing.T) {
	img, err := BarChart(Table{Values: [][]float64{{-1, 1}}}, BarOptions{
		BarWidth:    5,
		ChartLength: 100,
		Colors:      Colors(red, blue),
	})
	if err != nil {
		t.Fatal(err)
	}
	if raster.At(img, 2, 50) != red || raster.At(img, 2, 99) != red || raster.At(img, 2, 49).A != 0 {
		t.Error("negative bar should hang below the zero line")
	}
	if raster.At(img, 7, 0) != blue || raster.At(img, 7, 49) != blue || raster.At(img, 7, 50).A != 0 {
		t.Error("positive bar should stand on the zero line")
	}
}

func TestBarChartHorizontal(t *testing.T) {
	img, err := BarChart(Table{Values: [][]float64{{2}, {4}}}, BarOptions{
		BarWidth:    10,
		ChartLength: 50,
		YMax:        ptr(4),
		Horizontal:  true,
		Colors:      Colors(red),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := raster.Size(img); got != image.Pt(50, 20) {
		t.Fatalf("got size %v, want 50x20", got)
	}
	if raster.At(img, 24, 5) != red || raster.At(img, 25, 5).A != 0 {
		t.Error("first bar should end at x=25")
	}
	if raster.At(img, 49, 15) != red {
		t.Error("second bar should span the axis")
	}
}

func TestBarChartClipsToRange(t *testing.T) {
	img, err := BarChart(Table{Values: [][]float64{{10}}}, BarOptions{
		BarWidth:    4,
		ChartLength: 30,
		YMax:        ptr(5),
		Colors:      Colors(red),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := raster.Size(img).Y; got != 30 {
		t.Errorf("got height %d, want 30", got)
	}
	if got := runLength(img, 1, red); got != 30 {
		t.Errorf("clipped bar = %d px, want 30", got)
	}
}

func TestBarChartCellLabels(t *testing.T) {
	mark := raster.New(4, 4, green)
	img, err := BarChart(Table{Values: [][]float64{{3}}}, BarOptions{
		BarWidth:    10,
		ChartLength: 100,
		YMax:        ptr(5),
		Colors:      Colors(red),
		CellLabels: map[Position]CellLabelFunc{
			Outside: func(_, _ int, _ float64, w, h int) Label {
				if w != 10 || h != 60 {
					t.Errorf("label got bar size %dx%d, want 10x60", w, h)
				}
				return ImageLabel(mark)
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := raster.Size(img); got != image.Pt(10, 100) {
		t.Fatalf("outside label fits in the plot; got size %v", got)
	}
	// The head is at y=40; the label sits above it with a 2px gap.
	if got := raster.At(img, 4, 36); got != green {
		t.Errorf("label pixel = %v, want green", got)
	}
	if got := raster.At(img, 4, 38); got == green {
		t.Error("label should leave a gap above the bar")
	}
}

func TestBarChartAboveAndRowLabels(t *testing.T) {
	mark := raster.New(4, 4, green)
	rowMark := raster.New(6, 3, blue)
	img, err := BarChart(Table{Values: [][]float64{{3}}}, BarOptions{
		BarWidth:    10,
		ChartLength: 100,
		Colors:      Colors(red),
		CellLabels: map[Position]CellLabelFunc{
			Above: func(int, int, float64, int, int) Label { return ImageLabel(mark) },
		},
		RowLabels: map[Position]RowLabelFunc{
			Below: func(int) Label { return ImageLabel(rowMark) },
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	// 4px label + 2px gap above, 2px gap + 3px row label below.
	if got := raster.Size(img).Y; got != 100+6+5 {
		t.Errorf("got height %d, want %d", got, 111)
	}
	if got := raster.At(img, 4, 0); got != green {
		t.Errorf("above label missing: %v", got)
	}
	if got := raster.At(img, 4, 110); got != blue {
		t.Errorf("row label missing: %v", got)
	}
}

func TestBarChartAxisLabelsGrowCanvas(t *testing.T) {
	img, err := BarChart(Table{Values: [][]float64{{3, 1}}}, BarOptions{
		BarWidth:      10,
		ChartLength:   100,
		TickInterval:  1,
		LabelInterval: 1,
		Font:          small,
		XLabel:        "Year",
		YLabel:        "Count",
	})
	if err != nil {
		t.Fatal(err)
	}
	s := raster.Size(img)
	if s.X <= 20 || s.Y <= 100 {
		t.Errorf("axis labels and titles should enlarge the chart, got %v", s)
	}
}

func TestBarChartLegend(t *testing.T) {
	img, err := BarChart(Table{
		Columns: []string{"a", "b"},
		Values:  [][]float64{{3, 1}, {1, 2}},
	}, BarOptions{
		BarWidth:    50,
		ChartLength: 200,
		Legend: &LegendOptions{X: 1, Y: 0, Options: legendOptions()},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := raster.Size(img); got != image.Pt(200, 200) {
		t.Fatalf("legend should fit inside the plot, got size %v", got)
	}
	if got := raster.At(img, 199, 0); got != colors.Black {
		t.Errorf("legend border should touch the top right corner, got %v", got)
	}
}

func TestBarChartErrors(t *testing.T) {
	tests := []struct {
		name  string
		table Table
		opts  BarOptions
		code  errors.Code
	}{
		{"empty", Table{}, BarOptions{BarWidth: 1, ChartLength: 1}, errors.ErrCodeDataShape},
		{"no columns", Table{Values: [][]float64{{}}}, BarOptions{BarWidth: 1, ChartLength: 1}, errors.ErrCodeDataShape},
		{"ragged", Table{Values: [][]float64{{1, 2}, {1}}}, BarOptions{BarWidth: 1, ChartLength: 1}, errors.ErrCodeDataShape},
		{"row names", Table{Rows: []string{"a"}, Values: [][]float64{{1}, {2}}}, BarOptions{BarWidth: 1, ChartLength: 1}, errors.ErrCodeDataShape},
		{"inverted range", Table{Values: [][]float64{{1}}}, BarOptions{BarWidth: 1, ChartLength: 1, YMin: ptr(5), YMax: ptr(1)}, errors.ErrCodeNumericRange},
		{"empty range", Table{Values: [][]float64{{1}}}, BarOptions{BarWidth: 1, ChartLength: 1, YMin: ptr(2), YMax: ptr(2)}, errors.ErrCodeNumericRange},
		{"negative interval", Table{Values: [][]float64{{1}}}, BarOptions{BarWidth: 1, ChartLength: 1, GridInterval: -1}, errors.ErrCodeNumericRange},
		{"zero width", Table{Values: [][]float64{{1}}}, BarOptions{ChartLength: 1}, errors.ErrCodeArgument},
		{"row label position", Table{Values: [][]float64{{1}}}, BarOptions{BarWidth: 1, ChartLength: 1,
			RowLabels: map[Position]RowLabelFunc{Inside: func(int) Label { return Label{} }}}, errors.ErrCodeArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BarChart(tt.table, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("got %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBarRangeDefaults(t *testing.T) {
	tests := []struct {
		name   string
		values [][]float64
		typ    BarType
		lo, hi float64
	}{
		{"positive", [][]float64{{1, 4}}, Grouped, 0, 4},
		{"negative", [][]float64{{-2, 3}}, Grouped, -2, 3},
		{"all zero", [][]float64{{0, 0}}, Grouped, 0, 1},
		{"stacked sums", [][]float64{{1, 4, -2}, {2, 2, -5}}, Stacked, -5, 5},
		{"percentage", [][]float64{{10, 30}}, StackedPercentage, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, err := barRange(tt.values, BarOptions{Type: tt.typ})
			if err != nil {
				t.Fatal(err)
			}
			if lo != tt.lo || hi != tt.hi {
				t.Errorf("got [%v, %v], want [%v, %v]", lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestParseBarType(t *testing.T) {
	for _, typ := range []BarType{Grouped, Stacked, StackedPercentage} {
		got, err := ParseBarType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseBarType(%q) = %v, %v", typ.String(), got, err)
		}
	}
	if _, err := ParseBarType("pie"); !errors.Is(err, errors.ErrCodeArgument) {
		t.Errorf("got %v, want ARGUMENT_ERROR", err)
	}
	if p, err := ParsePosition("Outside"); err != nil || p != Outside {
		t.Errorf("ParsePosition(Outside) = %v, %v", p, err)
	}
}
