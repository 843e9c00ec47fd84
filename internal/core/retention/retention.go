package retention

import (
	"sort"

	"churnscope/internal/platform/dates"
)

// DefaultHorizonDays is the default retention horizon
const DefaultHorizonDays = 180

// MinActiveSpanDays is the minimum first-to-last active day span for a
// payload to count as active
const MinActiveSpanDays = 14

// Window is a validated [Start, Ping] history range.
// Days = Ping - Start, bounded above by the horizon
type Window struct {
	Start dates.Date `json:"start_date"`
	Ping  dates.Date `json:"ping_date"`
	Days  int        `json:"window_days"`
}

// ComputeWindow derives the retention window from the raw creation and ping
// date strings. now is injected by the caller; horizonDays <= 0 falls back to
// the default. On failure it returns the zero Window, ok=false, and the
// reasons explaining the abort; scalar fields not depending on the window
// stay computable for the caller
func ComputeWindow(creationStr, pingStr string, now dates.Date, horizonDays int) (Window, []Reason, bool) {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	var reasons []Reason
	if creationStr == "" {
		reasons = append(reasons, MissingField("profileCreation"))
	}
	if pingStr == "" {
		reasons = append(reasons, MissingField("thisPingDate"))
	}
	if len(reasons) > 0 {
		return Window{}, reasons, false
	}

	creation, ok := dates.Parse(creationStr)
	if !ok {
		reasons = append(reasons, CorruptedField("profileCreation"))
	}
	ping, pok := dates.Parse(pingStr)
	if !pok {
		reasons = append(reasons, CorruptedField("thisPingDate"))
	}
	if len(reasons) > 0 {
		return Window{}, reasons, false
	}

	if creation.After(ping) || ping.After(now) {
		return Window{}, []Reason{ClockSkew(ping.String(), creation.String(), now.String())}, false
	}
	if now.DaysSince(ping) > horizonDays {
		return Window{}, []Reason{TooOld}, false
	}

	start := dates.Max(creation, ping.AddDays(-horizonDays))
	return Window{Start: start, Ping: ping, Days: ping.DaysSince(start)}, nil, true
}

// ActiveDays is the sorted in-window day set plus the strings that failed
// to parse as dates. Active is false when the set is empty or spans less
// than two weeks
type ActiveDays struct {
	Days        []ActiveDay
	Unparseable []string
	Active      bool
}

// ActiveDay pairs a parsed date with the raw key it came from, so callers
// can index back into the payload's day records
type ActiveDay struct {
	Date dates.Date
	Key  string
}

// FilterActiveDays parses every day-key string, keeps the parseable ones
// inside [w.Start, w.Ping], and sorts ascending. Unparseable keys are
// retained separately, never silently dropped
func FilterActiveDays(w Window, dayKeys []string) ActiveDays {
	out := ActiveDays{}
	for _, k := range dayKeys {
		d, ok := dates.Parse(k)
		if !ok {
			out.Unparseable = append(out.Unparseable, k)
			continue
		}
		if d.Before(w.Start) || d.After(w.Ping) {
			continue
		}
		out.Days = append(out.Days, ActiveDay{Date: d, Key: k})
	}
	sort.Slice(out.Days, func(i, j int) bool {
		return out.Days[i].Date.Before(out.Days[j].Date)
	})

	if len(out.Days) > 0 {
		span := out.Days[len(out.Days)-1].Date.DaysSince(out.Days[0].Date)
		out.Active = span >= MinActiveSpanDays
	}
	return out
}
