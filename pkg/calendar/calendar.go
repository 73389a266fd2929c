// Package calendar provides the calendars month charts are drawn in.
//
// Dates in every calendar map to a shared day count, the ordinal, where
// ordinal 1 is 1 January of year 1 in the proleptic Gregorian calendar.
// Converting through ordinals moves a date between calendars.
package calendar

import (
	"fmt"
	"time"

	"github.com/matzehuels/chartkit/pkg/errors"
)

// Date is a day in some calendar. Months and days count from 1.
type Date struct {
	Year, Month, Day int
}

// FromTime returns the Gregorian date of t.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{y, int(m), d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Calendar describes a calendar's months, weeks and day count.
type Calendar interface {
	Name() string
	MonthsInYear(year int) int
	DaysInMonth(year, month int) int
	DaysInWeek() int
	// Weekday returns the day of the week, 0 being the first weekday.
	Weekday(d Date) int
	DateToOrdinal(d Date) int
	OrdinalToDate(n int) Date
	MonthName(month int) string
	WeekdayName(weekday int) string
}

// Validate checks that d exists in cal.
func Validate(cal Calendar, d Date) error {
	if d.Year < 1 {
		return errors.New(errors.ErrCodeArgument, "%s: year must be positive", d)
	}
	if d.Month < 1 || d.Month > cal.MonthsInYear(d.Year) {
		return errors.New(errors.ErrCodeArgument, "%s: no month %d in the %s calendar", d, d.Month, cal.Name())
	}
	if d.Day < 1 || d.Day > cal.DaysInMonth(d.Year, d.Month) {
		return errors.New(errors.ErrCodeArgument, "%s: no day %d in month %d", d, d.Day, d.Month)
	}
	return nil
}

// AddDays returns the date n days after d.
func AddDays(cal Calendar, d Date, n int) Date {
	return cal.OrdinalToDate(cal.DateToOrdinal(d) + n)
}

// Convert returns the date in to that is the same day as d in from.
func Convert(d Date, from, to Calendar) Date {
	return to.OrdinalToDate(from.DateToOrdinal(d))
}

var (
	monthNames = [...]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
	weekdayNames = [...]string{
		"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
	}
	monthDays = [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
)

// solar implements the shared parts of the Gregorian and Julian calendars,
// which differ only in their leap years.
type solar struct {
	name   string
	leap   func(year int) bool
	before func(year int) int // days before 1 January of year
	offset int                // ordinal of 1 January 1 minus one
}

func (c solar) Name() string                { return c.name }
func (solar) MonthsInYear(int) int          { return 12 }
func (solar) DaysInWeek() int               { return 7 }
func (solar) MonthName(month int) string    { return name(monthNames[:], month-1) }
func (solar) WeekdayName(weekday int) string { return name(weekdayNames[:], weekday) }

func (c solar) DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && c.leap(year) {
		return 29
	}
	return monthDays[month-1]
}

// Weekday counts Monday as 0.
func (c solar) Weekday(d Date) int {
	return mod(c.DateToOrdinal(d)+6, 7)
}

func (c solar) DateToOrdinal(d Date) int {
	n := c.before(d.Year) + d.Day + c.offset
	for m := 1; m < d.Month; m++ {
		n += c.DaysInMonth(d.Year, m)
	}
	return n
}

func (c solar) OrdinalToDate(n int) Date {
	days := n - c.offset
	y := max(1, days/366)
	for c.before(y+1) < days {
		y++
	}
	days -= c.before(y)
	m := 1
	for ; m < 12 && days > c.DaysInMonth(y, m); m++ {
		days -= c.DaysInMonth(y, m)
	}
	return Date{y, m, days}
}

// Gregorian is the proleptic Gregorian calendar with weeks starting on
// Monday.
var Gregorian Calendar = solar{
	name: "Gregorian",
	leap: func(y int) bool { return y%4 == 0 && (y%100 != 0 || y%400 == 0) },
	before: func(y int) int {
		y--
		return y*365 + y/4 - y/100 + y/400
	},
}

// Julian is the Julian calendar. Its 1 January 1 is 30 December 0 in the
// proleptic Gregorian calendar.
var Julian Calendar = solar{
	name: "Julian",
	leap: func(y int) bool { return y%4 == 0 },
	before: func(y int) int {
		y--
		return y*365 + y/4
	},
	offset: -2,
}

func name(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return ""
	}
	return names[i]
}

func mod(a, b int) int {
	return (a%b + b) % b
}
