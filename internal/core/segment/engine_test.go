package segment

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"churnscope/internal/core/payload"
	"churnscope/internal/platform/dates"
)

const engineDoc = `{
	"version": 2,
	"thisPingDate": "2015-05-02",
	"geckoAppInfo": {"updateChannel": "release", "vendor": "Mozilla"},
	"data": {
		"last": {
			"org.mozilla.profile.age": {"profileCreation": "2014-06-04"}
		},
		"days": {
			"2015-04-01": {
				"org.mozilla.appInfo.appinfo": {"isDefaultBrowser": 1},
				"org.mozilla.appSessions.previous": {
					"cleanTotalTime": [100],
					"abortedTotalTime": [],
					"cleanActiveTicks": [10],
					"abortedActiveTicks": []
				}
			},
			"2015-04-20": {
				"org.mozilla.appInfo.appinfo": {"isDefaultBrowser": 0}
			},
			"2015-05-02": {
				"org.mozilla.appInfo.appinfo": {"isDefaultBrowser": 1}
			},
			"not-a-day": {}
		}
	}
}`

func TestEngine_Segment(t *testing.T) {
	t.Parallel()

	p, err := payload.Parse([]byte(engineDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	eng := New(Options{})
	now := dates.New(2015, time.May, 10)

	seg := eng.Segment(p, now)

	if seg.Window == nil {
		t.Fatalf("window missing, reasons %v", seg.ReasonsNotSegmented)
	}
	if seg.Window.Days != 180 {
		t.Fatalf("window days = %d", seg.Window.Days)
	}
	if len(seg.ActiveDays) != 3 {
		t.Fatalf("active days = %v", seg.ActiveDays)
	}
	if len(seg.UnparseableDays) != 1 || seg.UnparseableDays[0] != "not-a-day" {
		t.Fatalf("unparseable = %v", seg.UnparseableDays)
	}
	if seg.Default.Active != 3 || seg.Default.Default != 2 || seg.Default.SwitchCount != 2 {
		t.Fatalf("default = %+v", seg.Default)
	}
	if seg.Default.Switches != SwitchesMultiple {
		t.Fatalf("switches = %q", seg.Default.Switches)
	}
	if seg.Activity.AverageSessionsPerDay != "0" { // 1 session over 3 active days floors to 0
		t.Fatalf("sessions = %q", seg.Activity.AverageSessionsPerDay)
	}
	if seg.Activity.TenureYears != "0" { // 332 days
		t.Fatalf("years = %q", seg.Activity.TenureYears)
	}
	if len(seg.Activity.ByDay) != 3 || seg.Activity.ByDay[0].TotalSeconds != 100 {
		t.Fatalf("by_day = %+v", seg.Activity.ByDay)
	}
	// the unparseable key is annotated, nothing else
	if len(seg.ReasonsNotSegmented) != 1 ||
		seg.ReasonsNotSegmented[0] != `Unparseable date "not-a-day"` {
		t.Fatalf("reasons = %v", seg.ReasonsNotSegmented)
	}
}

func TestEngine_ScalarsSurviveWindowFailure(t *testing.T) {
	t.Parallel()

	doc := `{
		"version": 2,
		"geckoAppInfo": {"updateChannel": "beta", "vendor": "Mozilla"},
		"data": {"days": {"2015-04-01": {"org.mozilla.appInfo.appinfo": {"isDefaultBrowser": 1}}}}
	}`
	p, err := payload.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	seg := New(Options{}).Segment(p, dates.New(2015, time.May, 10))

	if seg.Channel != "beta" || seg.Vendor != "Mozilla" {
		t.Fatalf("scalars lost: %+v", seg)
	}
	if seg.Window != nil {
		t.Fatalf("window must be absent")
	}

	var missingCreation, missingPing bool
	for _, r := range seg.ReasonsNotSegmented {
		if strings.Contains(r, "profileCreation") {
			missingCreation = true
		}
		if strings.Contains(r, "thisPingDate") {
			missingPing = true
		}
	}
	if !missingCreation || !missingPing {
		t.Fatalf("reasons = %v", seg.ReasonsNotSegmented)
	}

	// downstream segments degrade to empty, not to a fault
	if !seg.Default.Unmeasured || seg.Activity.AverageHoursPerDay != "0.0" {
		t.Fatalf("degenerate output wrong: %+v", seg)
	}
}

func TestEngine_InactiveSpanSkipsDownstream(t *testing.T) {
	t.Parallel()

	doc := `{
		"version": 2,
		"thisPingDate": "2015-05-02",
		"data": {
			"last": {"org.mozilla.profile.age": {"profileCreation": "2014-06-04"}},
			"days": {
				"2015-04-28": {"org.mozilla.appInfo.appinfo": {"isDefaultBrowser": 1}},
				"2015-05-01": {"org.mozilla.appInfo.appinfo": {"isDefaultBrowser": 1}}
			}
		}
	}`
	p, err := payload.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	seg := New(Options{}).Segment(p, dates.New(2015, time.May, 10))

	var sawInactive bool
	for _, r := range seg.ReasonsNotSegmented {
		if strings.Contains(r, "less than two weeks") {
			sawInactive = true
		}
	}
	if !sawInactive {
		t.Fatalf("reasons = %v", seg.ReasonsNotSegmented)
	}
	// the days are still reported, but segments treat the set as empty
	if len(seg.ActiveDays) != 2 {
		t.Fatalf("active days = %v", seg.ActiveDays)
	}
	if seg.Default.Active != 0 || !seg.Default.Unmeasured {
		t.Fatalf("default = %+v", seg.Default)
	}
}

func TestEngine_IdempotentAndReadOnly(t *testing.T) {
	t.Parallel()

	raw := []byte(engineDoc)
	p, err := payload.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	eng := New(Options{})
	now := dates.New(2015, time.May, 10)

	a, aerr := json.Marshal(eng.Segment(p, now))
	b, berr := json.Marshal(eng.Segment(p, now))
	if aerr != nil || berr != nil {
		t.Fatalf("marshal: %v %v", aerr, berr)
	}
	if string(a) != string(b) {
		t.Fatalf("segment output not idempotent:\n%s\n%s", a, b)
	}

	// the raw document is untouched by segmentation
	p2, err := payload.Parse(raw)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	c, _ := json.Marshal(eng.Segment(p2, now))
	if string(a) != string(c) {
		t.Fatalf("payload was mutated across runs")
	}
}
