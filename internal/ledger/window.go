package ledger

import (
	"fmt"
	"time"
)

// Period is the granularity of a Window.
type Period string

const (
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Window bounds aggregation to a calendar month or year in Location.
type Window struct {
	Period   Period
	Year     int
	Month    time.Month // ignored for PeriodYear
	Location *time.Location
}

// MonthWindow returns the window for one calendar month.
func MonthWindow(year int, month time.Month, loc *time.Location) Window {
	return Window{Period: PeriodMonth, Year: year, Month: month, Location: loc}
}

// YearWindow returns the window for one calendar year.
func YearWindow(year int, loc *time.Location) Window {
	return Window{Period: PeriodYear, Year: year, Location: loc}
}

// CurrentMonth returns the month window containing now.
func CurrentMonth(now time.Time, loc *time.Location) Window {
	now = now.In(location(loc))
	return MonthWindow(now.Year(), now.Month(), loc)
}

func (w Window) Validate() error {
	switch w.Period {
	case PeriodMonth:
		if w.Month < time.January || w.Month > time.December {
			return fmt.Errorf("invalid month %d", w.Month)
		}
	case PeriodYear:
	default:
		return fmt.Errorf("invalid period %q", w.Period)
	}
	if w.Year < 1 || w.Year > 9999 {
		return fmt.Errorf("invalid year %d", w.Year)
	}
	return nil
}

// Contains reports whether t falls inside the window on the local calendar.
func (w Window) Contains(t time.Time) bool {
	lt := t.In(location(w.Location))
	if lt.Year() != w.Year {
		return false
	}
	return w.Period == PeriodYear || lt.Month() == w.Month
}

// Start returns the first instant of the window.
func (w Window) Start() time.Time {
	if w.Period == PeriodYear {
		return time.Date(w.Year, time.January, 1, 0, 0, 0, 0, location(w.Location))
	}
	return time.Date(w.Year, w.Month, 1, 0, 0, 0, 0, location(w.Location))
}

// End returns the first instant after the window.
func (w Window) End() time.Time {
	if w.Period == PeriodYear {
		return w.Start().AddDate(1, 0, 0)
	}
	return w.Start().AddDate(0, 1, 0)
}

// Months is the number of calendar months the window spans.
func (w Window) Months() int {
	if w.Period == PeriodYear {
		return 12
	}
	return 1
}

func (w Window) String() string {
	if w.Period == PeriodYear {
		return fmt.Sprintf("%04d", w.Year)
	}
	return fmt.Sprintf("%04d-%02d", w.Year, int(w.Month))
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// DayKey is the local calendar day of t, used both for grouping and display.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(location(loc)).Format("2006-01-02")
}
