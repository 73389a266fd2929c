package chart

import (
	"image"
	"testing"
	"time"

	"github.com/matzehuels/chartkit/pkg/colors"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/raster"
)

type interval struct{ start, end float64 }

func intervalOptions() TimeOptions[interval] {
	return TimeOptions[interval]{
		Start:           func(i interval) float64 { return i.start },
		End:             func(i interval) float64 { return i.end },
		Color:           func(interval) raster.Fill { return raster.Solid(red) },
		Width:           100,
		RowHeight:       10,
		TimelineSpacing: 2,
		XMin:            ptr(0),
		XMax:            ptr(10),
	}
}

func TestTimeChartIntervals(t *testing.T) {
	opts := intervalOptions()
	opts.GridInterval = 5
	img, err := TimeChart([][]interval{{{0, 5}}, {{5, 10}}}, opts)
	if err != nil {
		t.Fatalf("TimeChart() failed: %v", err)
	}
	if got := raster.Size(img); got != image.Pt(100, 22) {
		t.Fatalf("got size %v, want 100x22", got)
	}
	tests := []struct {
		name string
		pt   image.Point
		want colors.Color
	}{
		{"first bar start", image.Pt(0, 0), red},
		{"first bar end", image.Pt(49, 9), red},
		{"grid after first bar", image.Pt(50, 5), defaultGridColor},
		{"second bar", image.Pt(50, 12), red},
		{"second bar end", image.Pt(99, 21), red},
		{"spacing grid", image.Pt(99, 10), defaultGridColor},
		{"spacing", image.Pt(20, 10), colors.RGBA(0, 0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := raster.At(img, tt.pt.X, tt.pt.Y); got != tt.want {
				t.Errorf("pixel %v = %v, want %v", tt.pt, got, tt.want)
			}
		})
	}
}

func TestTimeChartClipping(t *testing.T) {
	img, err := TimeChart([][]interval{{{-5, 2}, {3, 3}, {20, 30}}}, intervalOptions())
	if err != nil {
		t.Fatalf("TimeChart() failed: %v", err)
	}
	if got := runLengthRow(img, 5, red); got != 20+1 {
		t.Errorf("got %d red pixels, want 21 (clipped bar and 1px instant)", got)
	}
	if got := raster.At(img, 30, 5); got != red {
		t.Errorf("instant not drawn at x=30: %v", got)
	}
}

func TestTimeChartDefaultRange(t *testing.T) {
	opts := intervalOptions()
	opts.XMin, opts.XMax = nil, nil
	opts.Color = nil
	img, err := TimeChart([][]interval{{{2, 4}}, {{4, 6}}}, opts)
	if err != nil {
		t.Fatalf("TimeChart() failed: %v", err)
	}
	if got := raster.At(img, 0, 0); got != colors.Tab10.At(0) {
		t.Errorf("first row color = %v, want tab10[0]", got)
	}
	if got := raster.At(img, 99, 12); got != colors.Tab10.At(1) {
		t.Errorf("second row color = %v, want tab10[1]", got)
	}
}

func TestTimeChartLabels(t *testing.T) {
	opts := intervalOptions()
	opts.LabelsLeft = []Label{ImageLabel(raster.New(6, 4, blue)), {}}
	opts.LabelsRight = []Label{{}, ImageLabel(raster.New(3, 4, green))}
	var boxes []image.Point
	opts.Label = func(_ interval, w, h int) image.Image {
		boxes = append(boxes, image.Pt(w, h))
		return nil
	}
	img, err := TimeChart([][]interval{{{0, 5}}, {{5, 10}}}, opts)
	if err != nil {
		t.Fatalf("TimeChart() failed: %v", err)
	}
	if got := raster.Size(img); got != image.Pt(6+labelGap+100+labelGap+3, 22) {
		t.Fatalf("got size %v", got)
	}
	if got := raster.At(img, 0, 3); got != blue {
		t.Errorf("left label missing: %v", got)
	}
	if len(boxes) != 2 || boxes[0] != image.Pt(50, 10) {
		t.Errorf("label boxes = %v, want 50x10 each", boxes)
	}
}

func TestTimeChartErrors(t *testing.T) {
	withOpts := func(f func(*TimeOptions[interval])) TimeOptions[interval] {
		o := intervalOptions()
		f(&o)
		return o
	}
	rows := [][]interval{{{0, 1}}}
	tests := []struct {
		name string
		rows [][]interval
		opts TimeOptions[interval]
		code errors.Code
	}{
		{"inverted range", rows, withOpts(func(o *TimeOptions[interval]) { o.XMin = ptr(5); o.XMax = ptr(5) }), errors.ErrCodeNumericRange},
		{"negative grid", rows, withOpts(func(o *TimeOptions[interval]) { o.GridInterval = -1 }), errors.ErrCodeNumericRange},
		{"no start", rows, withOpts(func(o *TimeOptions[interval]) { o.Start = nil }), errors.ErrCodeArgument},
		{"no width", rows, withOpts(func(o *TimeOptions[interval]) { o.Width = 0 }), errors.ErrCodeArgument},
		{"no rows", nil, intervalOptions(), errors.ErrCodeDataShape},
		{"labels", rows, withOpts(func(o *TimeOptions[interval]) { o.LabelsLeft = make([]Label, 3) }), errors.ErrCodeDataShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := TimeChart(tt.rows, tt.opts); !errors.Is(err, tt.code) {
				t.Errorf("TimeChart() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestYear(t *testing.T) {
	tests := []struct {
		t    time.Time
		want float64
	}{
		{time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), 2020},
		{time.Date(2020, time.July, 2, 0, 0, 0, 0, time.UTC), 2020.5},
		{time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC), 1999 + 364.0/365},
	}
	for _, tt := range tests {
		if got := Year(tt.t); got != tt.want {
			t.Errorf("Year(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if got := FormatYear(1914.6); got != "1915" {
		t.Errorf("FormatYear() = %q", got)
	}
}

// runLengthRow counts the pixels of row y that have color c.
func runLengthRow(img *image.NRGBA, y int, c colors.Color) int {
	n := 0
	for x := 0; x < img.Rect.Dx(); x++ {
		if raster.At(img, x, y) == c {
			n++
		}
	}
	return n
}
