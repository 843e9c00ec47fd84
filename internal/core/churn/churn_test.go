package churn

import (
	"testing"
	"time"

	"churnscope/internal/core/payload"
	"churnscope/internal/core/weeks"
	"churnscope/internal/platform/dates"
)

func TestCrashCount_SuffixRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  payload.Fields
		want int64
	}{
		{
			name: "crash only",
			rec:  payload.Fields{"crash": 5.0, "other": 1.0},
			want: 5,
		},
		{
			name: "typo variant counts too",
			rec:  payload.Fields{"crash": 3.0, "brash": 1.0},
			want: 4,
		},
		{
			name: "nil record",
			rec:  nil,
			want: 0,
		},
		{
			name: "non numeric counter skipped",
			rec:  payload.Fields{"crash": "boom", "main-crash": 2.0},
			want: 2,
		},
	}

	for _, tc := range tests {
		if got := CrashCount(tc.rec); got != tc.want {
			t.Fatalf("%s: CrashCount = %d, want %d", tc.name, got, tc.want)
		}
	}
}

const churnDoc = `{
	"version": 2,
	"data": {"days": {
		"2015-04-26": {"org.mozilla.crashes.crashes": {"crash": 5}},
		"2015-05-01": {"org.mozilla.crashes.crashes": {"crash": 3, "brash": 1}}
	}}
}`

func TestCorrelate_SingleWeek(t *testing.T) {
	t.Parallel()

	p, err := payload.Parse([]byte(churnDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// both days fall in the week of Sat Apr 25 to Fri May 1
	res, reasons, ok := Correlate(p, dates.New(2015, time.June, 1), weeks.DefaultAnchor)
	if !ok || len(reasons) != 0 {
		t.Fatalf("ok=%v reasons=%v", ok, reasons)
	}
	if res.Total != 9 {
		t.Fatalf("total = %v, want 9", res.Total)
	}
	if res.Last != 1 {
		t.Fatalf("last = %v", res.Last)
	}
	if !res.Churned {
		t.Fatalf("june churn date must count as churned")
	}
	if !res.HasAverage || res.Average != 4.5 {
		t.Fatalf("average = %v has=%v", res.Average, res.HasAverage)
	}
}

func TestCorrelate_NotChurned(t *testing.T) {
	t.Parallel()

	p, err := payload.Parse([]byte(churnDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// churn date equal to the last day is not strictly after it
	res, _, ok := Correlate(p, dates.New(2015, time.May, 1), weeks.DefaultAnchor)
	if !ok || res.Churned {
		t.Fatalf("ok=%v churned=%v", ok, res.Churned)
	}
}

func TestCorrelate_MultiWeekAndQuietLastWeek(t *testing.T) {
	t.Parallel()

	doc := `{
		"version": 2,
		"data": {"days": {
			"2015-04-26": {"org.mozilla.crashes.crashes": {"crash": 5}},
			"2015-05-23": {"org.mozilla.appInfo.appinfo": {"isDefaultBrowser": 1}}
		}}
	}`
	p, err := payload.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	res, _, ok := Correlate(p, dates.New(2015, time.July, 1), weeks.DefaultAnchor)
	if !ok {
		t.Fatalf("not ok")
	}
	if res.Last != 0 { // most recent week has no crashes
		t.Fatalf("last = %v", res.Last)
	}
	if res.Total != 5 || res.Average != 2.5 {
		t.Fatalf("total=%v average=%v", res.Total, res.Average)
	}
}

func TestCorrelate_NoBucketableDays(t *testing.T) {
	t.Parallel()

	p, err := payload.Parse([]byte(`{"version": 2, "data": {"days": {"junk": {}}}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, reasons, ok := Correlate(p, dates.New(2015, time.May, 1), weeks.DefaultAnchor)
	if ok {
		t.Fatalf("expected no result")
	}
	if len(reasons) != 1 {
		t.Fatalf("reasons = %v", reasons)
	}
}

func TestTuples_OrderAndAverageGuard(t *testing.T) {
	t.Parallel()

	r := Result{Churned: true, Last: 1, Total: 9, Average: 4.5, HasAverage: true}
	ts := r.Tuples()
	if len(ts) != 3 || ts[0].Metric != MetricLast || ts[1].Metric != MetricTotal || ts[2].Metric != MetricAverage {
		t.Fatalf("tuples = %+v", ts)
	}
	for _, tp := range ts {
		if !tp.Churned {
			t.Fatalf("churned flag lost: %+v", tp)
		}
	}

	r.HasAverage = false
	if got := r.Tuples(); len(got) != 2 {
		t.Fatalf("average must be withheld: %+v", got)
	}
}
