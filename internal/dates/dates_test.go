package dates

import (
	"errors"
	"testing"
)

func TestParseValid(t *testing.T) {
	d, err := Parse("2025-12-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Year != 2025 || d.Month != 12 || d.Day != 1 {
		t.Errorf("parsed = %+v, want 2025-12-01", d)
	}
	if d.String() != "2025-12-01" {
		t.Errorf("String() = %q, want %q", d.String(), "2025-12-01")
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{
		"",
		"2025-13-01",
		"2025-00-10",
		"2025-02-30",
		"2025-2-3",
		"12/01/2025",
		"2025-12-01T00:00:00",
		"not-a-date",
	}
	for _, s := range cases {
		if _, err := Parse(s); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidDate", s, err)
		}
	}
}

func TestParseLeapDay(t *testing.T) {
	if _, err := Parse("2024-02-29"); err != nil {
		t.Errorf("2024-02-29 should be valid: %v", err)
	}
	if _, err := Parse("2025-02-29"); !errors.Is(err, ErrInvalidDate) {
		t.Error("2025-02-29 should be invalid")
	}
}

func TestDayOfWeek(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"2025-12-01", 1}, // Monday
		{"2025-12-03", 3}, // Wednesday
		{"2025-12-05", 5}, // Friday
		{"2025-12-07", 0}, // Sunday
		{"2024-02-29", 4}, // leap day, Thursday
	}
	for _, c := range cases {
		if got := MustParse(c.date).DayOfWeek(); got != c.want {
			t.Errorf("DayOfWeek(%s) = %d, want %d", c.date, got, c.want)
		}
	}
}

func TestLastDayOfMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2025, 1, 31},
		{2025, 2, 28},
		{2024, 2, 29}, // leap year
		{2000, 2, 29}, // divisible by 400
		{1900, 2, 28}, // divisible by 100 but not 400
		{2025, 4, 30},
		{2025, 12, 31},
	}
	for _, c := range cases {
		if got := LastDayOfMonth(c.year, c.month); got != c.want {
			t.Errorf("LastDayOfMonth(%d, %d) = %d, want %d", c.year, c.month, got, c.want)
		}
	}
}

func TestDaysInRange(t *testing.T) {
	days := DaysInRange(MustParse("2025-12-01"), MustParse("2025-12-07"))
	if len(days) != 7 {
		t.Fatalf("len = %d, want 7", len(days))
	}
	if days[0].String() != "2025-12-01" || days[6].String() != "2025-12-07" {
		t.Errorf("range bounds = %s..%s", days[0], days[6])
	}

	// Single day is inclusive on both ends.
	one := DaysInRange(MustParse("2025-06-15"), MustParse("2025-06-15"))
	if len(one) != 1 {
		t.Errorf("single-day range len = %d, want 1", len(one))
	}

	// Inverted range is empty.
	if got := DaysInRange(MustParse("2025-06-16"), MustParse("2025-06-15")); len(got) != 0 {
		t.Errorf("inverted range len = %d, want 0", len(got))
	}
}

func TestDaysInRangeAcrossLeapDay(t *testing.T) {
	days := DaysInRange(MustParse("2024-02-28"), MustParse("2024-03-01"))
	want := []string{"2024-02-28", "2024-02-29", "2024-03-01"}
	if len(days) != len(want) {
		t.Fatalf("len = %d, want %d", len(days), len(want))
	}
	for i, w := range want {
		if days[i].String() != w {
			t.Errorf("days[%d] = %s, want %s", i, days[i], w)
		}
	}
}

func TestAddDaysCrossesMonthAndYear(t *testing.T) {
	if got := MustParse("2025-12-31").AddDays(1).String(); got != "2026-01-01" {
		t.Errorf("Dec 31 + 1 = %s, want 2026-01-01", got)
	}
	if got := MustParse("2025-01-01").AddDays(-1).String(); got != "2024-12-31" {
		t.Errorf("Jan 1 - 1 = %s, want 2024-12-31", got)
	}
}

func TestBeforeAfter(t *testing.T) {
	a := MustParse("2025-06-15")
	b := MustParse("2025-07-01")
	if !a.Before(b) || b.Before(a) {
		t.Error("Before ordering wrong")
	}
	if !b.After(a) || a.After(b) {
		t.Error("After ordering wrong")
	}
	if a.Before(a) || a.After(a) {
		t.Error("date should not be before or after itself")
	}
}
