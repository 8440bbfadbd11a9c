// Package dates provides calendar-date utilities for business logic.
//
// All business computations that depend on "today" must receive the date from
// the caller (the client knows its own timezone); the server's wall clock is
// only trusted for audit timestamps. Dates travel as YYYY-MM-DD strings and
// carry no time component.
package dates

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned for strings that are not well-formed
// YYYY-MM-DD calendar dates.
var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar date with no time component.
type Date struct {
	Year  int
	Month int // 1-12
	Day   int // 1-31
}

// Parse parses a YYYY-MM-DD string into a Date. Out-of-range components
// (e.g. 2025-02-30) are rejected, never clamped.
func Parse(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	// time.Parse normalizes overflow (Feb 30 -> Mar 2); round-trip to catch it.
	if t.Format("2006-01-02") != s {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// MustParse parses s and panics on error. For tests and constants only.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// DayOfWeek returns the weekday of d, 0 = Sunday through 6 = Saturday.
func (d Date) DayOfWeek() int {
	return int(d.time().Weekday())
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	t := d.time().AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// SameMonth reports whether d falls in the given year and month.
func (d Date) SameMonth(year, month int) bool {
	return d.Year == year && d.Month == month
}

// LastDayOfMonth returns the number of days in the given month,
// accounting for leap years.
func LastDayOfMonth(year, month int) int {
	// Day 0 of the next month is the last day of this one.
	t := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	return t.Day()
}

// MonthStart returns the first day of the given month.
func MonthStart(year, month int) Date {
	return Date{Year: year, Month: month, Day: 1}
}

// MonthEnd returns the last day of the given month.
func MonthEnd(year, month int) Date {
	return Date{Year: year, Month: month, Day: LastDayOfMonth(year, month)}
}

// DaysInRange returns every date from start through end inclusive,
// in ascending order. The result is empty when start is after end.
func DaysInRange(start, end Date) []Date {
	if start.After(end) {
		return nil
	}
	var days []Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// FromTime converts a wall-clock time to a Date in the time's location.
// Only audit metadata should derive dates from the server clock.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}
