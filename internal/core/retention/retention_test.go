package retention

import (
	"testing"
	"time"

	"churnscope/internal/platform/dates"
)

func d(y int, m time.Month, day int) dates.Date { return dates.New(y, m, day) }

func TestComputeWindow_Table(t *testing.T) {
	t.Parallel()

	now := d(2015, time.May, 10)

	tests := []struct {
		name     string
		creation string
		ping     string
		ok       bool
		start    dates.Date
		days     int
		reason   string
	}{
		{
			name:     "creation inside horizon",
			creation: "2015-03-01",
			ping:     "2015-05-02",
			ok:       true,
			start:    d(2015, time.March, 1),
			days:     62,
		},
		{
			name:     "creation before horizon clamps start",
			creation: "2014-06-04",
			ping:     "2015-05-02",
			ok:       true,
			start:    d(2014, time.November, 3), // ping minus 180
			days:     180,
		},
		{
			name:   "missing creation",
			ping:   "2015-05-02",
			reason: "Missing field: profileCreation",
		},
		{
			name:     "missing ping",
			creation: "2015-03-01",
			reason:   "Missing field: thisPingDate",
		},
		{
			name:     "corrupted creation",
			creation: "2015-02-30",
			ping:     "2015-05-02",
			reason:   "Corrupted field: profileCreation",
		},
		{
			name:     "corrupted ping",
			creation: "2015-03-01",
			ping:     "not-a-date",
			reason:   "Corrupted field: thisPingDate",
		},
		{
			name:     "ping before creation is skew",
			creation: "2015-05-03",
			ping:     "2015-05-02",
			reason:   `Ping date "2015-05-02" does not fall between creation date "2015-05-03" and current date "2015-05-10"`,
		},
		{
			name:     "ping in the future is skew",
			creation: "2015-03-01",
			ping:     "2015-05-11",
			reason:   `Ping date "2015-05-11" does not fall between creation date "2015-03-01" and current date "2015-05-10"`,
		},
		{
			name:     "ping older than horizon",
			creation: "2013-01-01",
			ping:     "2014-11-01",
			reason:   string(TooOld),
		},
	}

	for _, tc := range tests {
		w, reasons, ok := ComputeWindow(tc.creation, tc.ping, now, DefaultHorizonDays)
		if ok != tc.ok {
			t.Fatalf("%s: ok = %v, reasons %v", tc.name, ok, reasons)
		}
		if !tc.ok {
			if len(reasons) == 0 || string(reasons[0]) != tc.reason {
				t.Fatalf("%s: reasons = %v, want %q", tc.name, reasons, tc.reason)
			}
			continue
		}
		if w.Start != tc.start {
			t.Fatalf("%s: start = %s, want %s", tc.name, w.Start, tc.start)
		}
		if w.Days != tc.days {
			t.Fatalf("%s: days = %d, want %d", tc.name, w.Days, tc.days)
		}
		if w.Ping.Before(w.Start) || w.Days > DefaultHorizonDays {
			t.Fatalf("%s: window invariant broken: %+v", tc.name, w)
		}
	}
}

func TestComputeWindow_BothMissingAccumulates(t *testing.T) {
	t.Parallel()

	_, reasons, ok := ComputeWindow("", "", d(2015, time.May, 10), 0)
	if ok || len(reasons) != 2 {
		t.Fatalf("want both missing-field reasons, got %v", reasons)
	}
}

func TestFilterActiveDays(t *testing.T) {
	t.Parallel()

	w := Window{Start: d(2015, time.April, 1), Ping: d(2015, time.May, 2), Days: 31}
	keys := []string{
		"2015-05-01",
		"2015-04-02", // out of order on purpose
		"bogus",
		"2015-03-31", // before window
		"2015-05-02",
		"2015-06-01", // after window
	}

	got := FilterActiveDays(w, keys)
	if len(got.Unparseable) != 1 || got.Unparseable[0] != "bogus" {
		t.Fatalf("Unparseable = %v", got.Unparseable)
	}
	if len(got.Days) != 3 {
		t.Fatalf("Days = %+v", got.Days)
	}
	if got.Days[0].Key != "2015-04-02" || got.Days[2].Key != "2015-05-02" {
		t.Fatalf("Days not sorted: %+v", got.Days)
	}
	if !got.Active {
		t.Fatalf("span is 30 days, must be active")
	}
}

func TestFilterActiveDays_ShortSpanInactive(t *testing.T) {
	t.Parallel()

	w := Window{Start: d(2015, time.April, 1), Ping: d(2015, time.May, 2)}

	got := FilterActiveDays(w, []string{"2015-04-10", "2015-04-20"})
	if got.Active {
		t.Fatalf("10 day span must be inactive")
	}

	got = FilterActiveDays(w, nil)
	if got.Active || len(got.Days) != 0 {
		t.Fatalf("empty set must be inactive: %+v", got)
	}

	// exactly 14 days counts
	got = FilterActiveDays(w, []string{"2015-04-10", "2015-04-24"})
	if !got.Active {
		t.Fatalf("14 day span must be active")
	}
}
