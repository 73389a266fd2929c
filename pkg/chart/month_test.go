package chart

import (
	"image"
	"testing"

	"github.com/matzehuels/chartkit/pkg/calendar"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/raster"
)

func monthOptions() MonthOptions {
	return MonthOptions{
		CellWidth:  10,
		CellHeight: 8,
		MonthImage: raster.New(20, 6, blue),
		DayLabel:   func(calendar.Date, int, int) image.Image { return nil },
		DayBG: func(d calendar.Date) raster.Fill {
			if calendar.Gregorian.Weekday(d) >= 5 {
				return raster.Solid(red)
			}
			return nil
		},
	}
}

func TestMonthChartLayout(t *testing.T) {
	// February 2021 starts on a Monday and fills exactly four weeks.
	img, err := MonthChart(calendar.Date{Year: 2021, Month: 2, Day: 14}, monthOptions())
	if err != nil {
		t.Fatalf("MonthChart() failed: %v", err)
	}
	if got := raster.Size(img); got != image.Pt(70, 10+32) {
		t.Fatalf("got size %v, want 70x42", got)
	}
	band := 10
	tests := []struct {
		name string
		pt   image.Point
		red  bool
	}{
		{"monday 1st", image.Pt(5, band+4), false},
		{"saturday 6th", image.Pt(55, band+4), true},
		{"sunday 28th", image.Pt(65, band+3*8+4), true},
		{"friday 26th", image.Pt(45, band+3*8+4), false},
	}
	for _, tt := range tests {
		if got := raster.At(img, tt.pt.X, tt.pt.Y) == red; got != tt.red {
			t.Errorf("%s: red = %v, want %v", tt.name, got, tt.red)
		}
	}
	if got := raster.At(img, 35, 5); got != blue {
		t.Errorf("title not centred in band: %v", got)
	}
}

func TestMonthChartDayStart(t *testing.T) {
	opts := monthOptions()
	opts.DayStart = 6
	opts.Padding = 1
	img, err := MonthChart(calendar.Date{Year: 2021, Month: 2, Day: 1}, opts)
	if err != nil {
		t.Fatalf("MonthChart() failed: %v", err)
	}
	// Sunday first pushes the month into five rows.
	if got := raster.Size(img); got != image.Pt(7*11-1, 10+5*9-1) {
		t.Fatalf("got size %v", got)
	}
	// The first cell is an empty Sunday; the 6th is the last cell of row 0.
	if got := raster.At(img, 5, 10+4); got == red {
		t.Error("leading empty cell was filled")
	}
	if got := raster.At(img, 6*11+5, 10+4); got != red {
		t.Errorf("saturday 6th = %v, want red", got)
	}
}

func TestMonthChartDayLabels(t *testing.T) {
	opts := monthOptions()
	var days []int
	opts.DayLabel = func(d calendar.Date, w, h int) image.Image {
		if w != 10 || h != 8 {
			t.Errorf("day %v got cell %dx%d", d, w, h)
		}
		days = append(days, d.Day)
		return raster.New(2, 2, green)
	}
	img, err := MonthChart(calendar.Date{Year: 2024, Month: 2, Day: 1}, opts)
	if err != nil {
		t.Fatalf("MonthChart() failed: %v", err)
	}
	if len(days) != 29 || days[0] != 1 || days[28] != 29 {
		t.Fatalf("days = %v, want 1..29", days)
	}
	// 2024-02-01 is a Thursday: column 3, label centred at (34,4).
	if got := raster.At(img, 34, 10+3); got != green {
		t.Errorf("label of the 1st = %v, want green", got)
	}
}

func TestMonthChartWeekdayLabels(t *testing.T) {
	opts := monthOptions()
	opts.DayLabel = nil
	opts.Font = small
	opts.WeekdayLabels = true
	img, err := MonthChart(calendar.Date{Year: 2021, Month: 2, Day: 1}, opts)
	if err != nil {
		t.Fatalf("MonthChart() failed: %v", err)
	}
	if got := raster.Size(img); got.X < 70 || got.Y <= 42 {
		t.Errorf("got size %v, want weekday labels above the grid", got)
	}
}

func TestMonthChartErrors(t *testing.T) {
	tests := []struct {
		name string
		date calendar.Date
		opts MonthOptions
		code errors.Code
	}{
		{"bad month", calendar.Date{Year: 2021, Month: 13, Day: 1}, monthOptions(), errors.ErrCodeArgument},
		{"no cell size", calendar.Date{Year: 2021, Month: 1, Day: 1}, MonthOptions{}, errors.ErrCodeArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MonthChart(tt.date, tt.opts); !errors.Is(err, tt.code) {
				t.Errorf("MonthChart() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestAbbreviate(t *testing.T) {
	if got := abbreviate("Wednesday"); got != "Wed" {
		t.Errorf("abbreviate() = %q", got)
	}
	if got := abbreviate("Mo"); got != "Mo" {
		t.Errorf("abbreviate() = %q", got)
	}
}
