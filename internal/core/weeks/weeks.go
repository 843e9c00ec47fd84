// Package weeks partitions sorted day keys into contiguous calendar-week
// buckets anchored to a fixed weekday boundary.
package weeks

import (
	"sort"
	"time"

	"churnscope/internal/platform/dates"
)

// DefaultAnchor is the weekday reporting weeks are anchored to
const DefaultAnchor = time.Saturday

// Day is one bucketed day: its parsed date plus the raw key it came from
type Day struct {
	Date dates.Date
	Key  string
}

// Bucket is an ordered run of days falling within one 7-day span starting
// at Anchor. Buckets are never padded with empty days
type Bucket struct {
	Anchor dates.Date
	Days   []Day
}

// Last returns the final day of the bucket
func (b Bucket) Last() Day { return b.Days[len(b.Days)-1] }

// Result carries the ordered buckets plus any day-key strings that failed
// to parse, reported separately rather than dropped
type Result struct {
	Buckets     []Bucket
	Unparseable []string
}

// Bucketize sorts the day-key strings and walks them into week buckets.
// The first bucket anchors at the most recent anchor weekday on or before
// the first parseable key; a key more than 7 days past the current anchor
// closes the bucket and re-anchors. Concatenating all bucket days in order
// reproduces exactly the sorted parseable input sequence
func Bucketize(dayKeys []string, anchor time.Weekday) Result {
	keys := make([]string, len(dayKeys))
	copy(keys, dayKeys)
	sort.Strings(keys)

	var res Result
	var cur *Bucket
	for _, k := range keys {
		d, ok := dates.Parse(k)
		if !ok {
			res.Unparseable = append(res.Unparseable, k)
			continue
		}
		if cur == nil || d.DaysSince(cur.Anchor) > 7 {
			res.Buckets = append(res.Buckets, Bucket{Anchor: dates.LastAnchor(d, anchor)})
			cur = &res.Buckets[len(res.Buckets)-1]
		}
		cur.Days = append(cur.Days, Day{Date: d, Key: k})
	}
	return res
}

// Month is a calendar month
type Month struct {
	Year  int
	Month time.Month
}

// MonthPresence flags whether any day key fell in the month
type MonthPresence struct {
	Month   Month
	Present bool
}

// SixMonthWindow reports, for the six months ending at the start month,
// whether any of the given day keys fell inside each month. Unparseable
// keys are ignored here; callers wanting them use Bucketize
func SixMonthWindow(start dates.Date, dayKeys []string) []MonthPresence {
	active := make(map[Month]struct{})
	for _, k := range dayKeys {
		if d, ok := dates.Parse(k); ok {
			active[Month{Year: d.Year, Month: d.Month}] = struct{}{}
		}
	}

	window := make([]Month, 0, 6)
	y, m := start.Year, int(start.Month)
	for i := 0; i < 6; i++ {
		window = append(window, Month{Year: y, Month: time.Month(m)})
		m--
		if m == 0 {
			m = 12
			y--
		}
	}

	out := make([]MonthPresence, 0, 6)
	for i := len(window) - 1; i >= 0; i-- {
		_, present := active[window[i]]
		out = append(out, MonthPresence{Month: window[i], Present: present})
	}
	return out
}
