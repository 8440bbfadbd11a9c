// Package schedule models the weekdays a task is active on and counts how
// many of those days occur within a date range.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/juniperhall/taskpoints/internal/dates"
)

// ErrInvalidActiveDay is returned for weekday values outside 0-6 or an
// empty active-day set.
var ErrInvalidActiveDay = errors.New("invalid active day")

// ActiveDays is the set of weekdays (0 = Sunday .. 6 = Saturday) a task
// is expected to be performed on.
type ActiveDays struct {
	days [7]bool
}

// ParseActiveDays parses a comma-separated weekday list such as "1,3,5".
// Duplicates collapse; the set must contain at least one valid day.
func ParseActiveDays(s string) (ActiveDays, error) {
	var ad ActiveDays
	any := false
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return ActiveDays{}, fmt.Errorf("%w: %q", ErrInvalidActiveDay, part)
		}
		if n < 0 || n > 6 {
			return ActiveDays{}, fmt.Errorf("%w: %d out of range 0-6", ErrInvalidActiveDay, n)
		}
		ad.days[n] = true
		any = true
	}
	if !any {
		return ActiveDays{}, fmt.Errorf("%w: at least one day required", ErrInvalidActiveDay)
	}
	return ad, nil
}

// FromDays builds an ActiveDays set from weekday integers.
func FromDays(days ...int) (ActiveDays, error) {
	var ad ActiveDays
	if len(days) == 0 {
		return ActiveDays{}, fmt.Errorf("%w: at least one day required", ErrInvalidActiveDay)
	}
	for _, n := range days {
		if n < 0 || n > 6 {
			return ActiveDays{}, fmt.Errorf("%w: %d out of range 0-6", ErrInvalidActiveDay, n)
		}
		ad.days[n] = true
	}
	return ad, nil
}

// Contains reports whether weekday is in the set.
func (ad ActiveDays) Contains(weekday int) bool {
	if weekday < 0 || weekday > 6 {
		return false
	}
	return ad.days[weekday]
}

// Days returns the member weekdays in ascending order.
func (ad ActiveDays) Days() []int {
	var out []int
	for d := 0; d < 7; d++ {
		if ad.days[d] {
			out = append(out, d)
		}
	}
	return out
}

// String renders the set back to the stored comma-separated form.
func (ad ActiveDays) String() string {
	days := ad.Days()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// CountInRange returns the number of dates from start through end inclusive
// whose weekday is in the set. An inverted range counts zero.
func (ad ActiveDays) CountInRange(start, end dates.Date) int {
	if start.After(end) {
		return 0
	}
	count := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		if ad.days[d.DayOfWeek()] {
			count++
		}
	}
	return count
}
