package chart

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/matzehuels/chartkit/pkg/calendar"
	"github.com/matzehuels/chartkit/pkg/config"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/raster"
	"github.com/matzehuels/chartkit/pkg/text"
)

// MonthOptions configures MonthChart.
type MonthOptions struct {
	CellWidth, CellHeight int
	// DayStart is the weekday of the first column, 0 being the calendar's
	// first weekday.
	DayStart int
	// DayBG fills a day's cell; nil leaves it as BG.
	DayBG func(calendar.Date) raster.Fill
	// DayLabel draws a day's cell content. By default the day number is
	// centred in the cell.
	DayLabel func(d calendar.Date, w, h int) image.Image

	// MonthImage replaces the month title; MonthLabel replaces its text,
	// which defaults to the month name and year.
	MonthImage image.Image
	MonthLabel string
	// MonthBG fills the title band.
	MonthBG       color.Color
	WeekdayLabels bool

	Font    text.Font
	FG, BG  color.Color
	Loader  text.Loader
	Config  *config.Config
	Padding int
	// Calendar defaults to Gregorian.
	Calendar calendar.Calendar
}

// MonthChart draws the month containing date as a grid of days, one
// column per weekday.
func MonthChart(date calendar.Date, opts MonthOptions) (*image.NRGBA, error) {
	cal := opts.Calendar
	if cal == nil {
		cal = calendar.Gregorian
	}
	if opts.CellWidth <= 0 || opts.CellHeight <= 0 {
		return nil, errors.New(errors.ErrCodeArgument, "cell size must be positive")
	}
	if opts.Padding < 0 {
		return nil, errors.New(errors.ErrCodeArgument, "padding must not be negative")
	}
	first := calendar.Date{Year: date.Year, Month: date.Month, Day: 1}
	if err := calendar.Validate(cal, first); err != nil {
		return nil, err
	}

	week := cal.DaysInWeek()
	days := cal.DaysInMonth(first.Year, first.Month)
	col0 := mod(cal.Weekday(first)-opts.DayStart, week)
	nrows := (col0 + days + week - 1) / week
	cell := image.Pt(opts.CellWidth, opts.CellHeight)
	step := cell.Add(image.Pt(opts.Padding, opts.Padding))
	grid := raster.New(week*step.X-opts.Padding, nrows*step.Y-opts.Padding, opts.BG)

	lb := newLabeler(opts.Font, opts.FG, opts.Loader, opts.Config)
	for i := 0; i < days; i++ {
		d := calendar.AddDays(cal, first, i)
		k := col0 + i
		pt := image.Pt(k%week*step.X, k/week*step.Y)
		if opts.DayBG != nil {
			raster.Paste(grid, raster.PaintFill(opts.DayBG(d), cell), pt)
		}
		var img image.Image
		if opts.DayLabel != nil {
			img = opts.DayLabel(d, cell.X, cell.Y)
		} else {
			var err error
			if img, err = lb.render(TextLabel(strconv.Itoa(d.Day))); err != nil {
				return nil, err
			}
		}
		if img != nil {
			raster.Paste(grid, raster.Crop(img, image.Rectangle{Max: cell}), pt.Add(raster.Center.Offset(cell, minSize(raster.Size(img), cell))))
		}
	}

	c := raster.NewCanvas(grid, opts.BG)
	if opts.WeekdayLabels {
		for j := 0; j < week; j++ {
			img, err := lb.render(TextLabel(abbreviate(cal.WeekdayName(mod(opts.DayStart+j, week)))))
			if err != nil {
				return nil, err
			}
			c.Pin(img, image.Pt(j*step.X+cell.X/2, -labelGap), raster.Bottom)
		}
	}

	title := opts.MonthImage
	if title == nil {
		label := opts.MonthLabel
		if label == "" {
			label = fmt.Sprintf("%s %d", cal.MonthName(first.Month), first.Year)
		}
		img, err := lb.render(TextLabel(label))
		if err != nil {
			return nil, err
		}
		title = img
	}
	if title != nil {
		ts := raster.Size(title)
		band := raster.New(max(grid.Rect.Dx(), ts.X), ts.Y+2*labelGap, opts.MonthBG)
		band = raster.Place(band, title, raster.Center, raster.Insets{})
		c.Pin(band, image.Pt(grid.Rect.Dx()/2, c.Bounds().Min.Y), raster.Bottom)
	}
	return c.Image(), nil
}

func minSize(a, b image.Point) image.Point {
	return image.Pt(min(a.X, b.X), min(a.Y, b.Y))
}

// abbreviate shortens a weekday name to three letters.
func abbreviate(s string) string {
	r := []rune(s)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

func mod(a, b int) int {
	return ((a % b) + b) % b
}
