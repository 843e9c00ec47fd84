// Package dates provides civil date parsing and calendar arithmetic for
// day-indexed health report history
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayFormat is the wire format for day keys and ping dates
const DayFormat = "2006-01-02"

// Date is a civil calendar date with no time or zone component
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New builds a Date without validation; use Parse for wire input
func New(y int, m time.Month, d int) Date { return Date{Year: y, Month: m, Day: d} }

// FromTime truncates t to its civil date in t's location
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Parse parses a YYYY-MM-DD day key.
// The second return is false when the string does not split into three
// integer components or the components do not name a real calendar day.
// Callers keep unparseable strings around rather than dropping them
func Parse(s string) (Date, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Date{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, false
		}
		nums[i] = n
	}
	y, m, d := nums[0], nums[1], nums[2]
	if m < 1 || m > 12 || d < 1 || d > 31 || y < 1 {
		return Date{}, false
	}
	// Reject e.g. Feb 30: round-tripping through time catches it
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return Date{}, false
	}
	return Date{Year: y, Month: time.Month(m), Day: d}, true
}

// Time returns midnight UTC on the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool { return d == Date{} }

// Before reports d < o
func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }

// After reports d > o
func (d Date) After(o Date) bool { return d.Time().After(o.Time()) }

// Compare returns -1, 0, or 1 ordering d against o
func (d Date) Compare(o Date) int { return d.Time().Compare(o.Time()) }

// AddDays returns the date n days after d (n may be negative)
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// DaysSince returns the whole days from o to d
func (d Date) DaysSince(o Date) int {
	return int(d.Time().Sub(o.Time()) / (24 * time.Hour))
}

// Weekday returns the day of week
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// Max returns the later of a and b
func Max(a, b Date) Date {
	if a.Before(b) {
		return b
	}
	return a
}

// LastAnchor returns the most recent day with the given weekday on or
// before d. With anchor = Saturday this truncates to the start of the
// reporting week
func LastAnchor(d Date, anchor time.Weekday) Date {
	back := (int(d.Weekday()) - int(anchor) + 7) % 7
	return d.AddDays(-back)
}

// MarshalJSON encodes the date as a "YYYY-MM-DD" string
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	p, ok := Parse(s)
	if !ok {
		return fmt.Errorf("dates: invalid day key %q", s)
	}
	*d = p
	return nil
}
