// Package churn correlates weekly crash totals with a supplied churn date.
package churn

import (
	"strings"
	"time"

	"churnscope/internal/core/payload"
	"churnscope/internal/core/retention"
	"churnscope/internal/core/weeks"
	"churnscope/internal/platform/dates"
)

// crashSuffix matches the counter names under the crash provider. Both the
// "crash" counters and the long-standing "brash" typo variant end in it
const crashSuffix = "rash"

// Metric names emitted per payload
const (
	MetricLast    = "last"
	MetricTotal   = "total"
	MetricAverage = "average"
)

// Tuple is one (metric, churned) keyed aggregate, the reduce-side unit of
// a correlation run
type Tuple struct {
	Metric  string
	Churned bool
	Value   float64
}

// CrashCount sums the counters in a crash provider record whose name ends
// in the crash suffix. A nil record contributes zero
func CrashCount(crashes payload.Fields) int64 {
	var sum int64
	for k, v := range crashes {
		if !strings.HasSuffix(k, crashSuffix) {
			continue
		}
		if n, ok := payload.AsInt64(v); ok {
			sum += n
		}
	}
	return sum
}

// DayCrashCount sums the crash counters for one day record
func DayCrashCount(rec payload.DayRecord) int64 {
	return CrashCount(rec[payload.ProviderCrashes])
}

// Result is one payload's correlation outcome
type Result struct {
	// Churned reports whether the churn date falls strictly after the last
	// day of the most recent week
	Churned bool

	// Last is 1 when the most recent week's crash count is nonzero
	Last float64

	// Total is the sum of all weekly crash counts
	Total float64

	// Average is Total over the number of distinct day keys in the payload;
	// HasAverage is false when that denominator is zero
	Average    float64
	HasAverage bool
}

// Tuples flattens the result for the reduce side, in stable metric order
func (r Result) Tuples() []Tuple {
	out := []Tuple{
		{Metric: MetricLast, Churned: r.Churned, Value: r.Last},
		{Metric: MetricTotal, Churned: r.Churned, Value: r.Total},
	}
	if r.HasAverage {
		out = append(out, Tuple{Metric: MetricAverage, Churned: r.Churned, Value: r.Average})
	}
	return out
}

// Correlate buckets the payload's day keys into weeks and computes the
// crash metrics against the churn date. ok is false when the payload has no
// bucketable weeks at all; reasons carry the zero-denominator annotation
// when the average cannot be computed
func Correlate(p *payload.Payload, churnDate dates.Date, anchor time.Weekday) (Result, []retention.Reason, bool) {
	dayKeys := p.Days()
	res := weeks.Bucketize(dayKeys, anchor)
	if len(res.Buckets) == 0 {
		// nothing bucketable: either no day keys at all or none parseable
		return Result{}, []retention.Reason{
			retention.InvalidMeasurement("", "no bucketable day keys"),
		}, false
	}

	var out Result
	var total int64
	var lastWeek int64
	for i, b := range res.Buckets {
		var wk int64
		for _, d := range b.Days {
			wk += DayCrashCount(p.DayRecordFor(d.Key))
		}
		total += wk
		if i == len(res.Buckets)-1 {
			lastWeek = wk
		}
	}

	lastDay := res.Buckets[len(res.Buckets)-1].Last().Date
	out.Churned = churnDate.After(lastDay)
	if lastWeek != 0 {
		out.Last = 1
	}
	out.Total = float64(total)

	// the denominator is every distinct day key in the payload, parseable
	// or not; it is nonzero whenever a bucket exists
	out.Average = float64(total) / float64(len(dayKeys))
	out.HasAverage = true
	return out, nil, true
}
