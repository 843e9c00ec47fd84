// Package segment turns a validated payload view into a usage segment:
// retention window, active days, default-browser behavior, and a per-day
// activity summary with capped averages.
package segment

import (
	"churnscope/internal/core/payload"
	"churnscope/internal/core/retention"
)

// Adherence labels for the default-browser ratio
const (
	LabelMostly    = "mostly"
	LabelSometimes = "sometimes"
	LabelRarely    = "rarely"
)

// Switch cardinality labels
const (
	SwitchesOne      = "one"
	SwitchesMultiple = "multiple"
)

// DefaultBrowser describes how often the product was the client's default
// browser across the active days
type DefaultBrowser struct {
	Active      int    `json:"active"`
	Default     int    `json:"default"`
	Always      bool   `json:"always"`
	Never       bool   `json:"never"`
	Label       string `json:"label"`
	SwitchCount int    `json:"switch_count"`
	Switches    string `json:"switches"`
	Unmeasured  bool   `json:"unmeasured"`
}

// DefaultBrowserStatus computes the default-browser segment over the active
// days. The flag is tri-state per day: true, false, or absent. Absent days
// do not participate in switch counting and do not reset the last measured
// value; a switch is counted for every consecutive pair of measured values
// that differ. With zero active days the segment is returned unmeasured
// with no division performed
func DefaultBrowserStatus(p *payload.Payload, days []retention.ActiveDay) DefaultBrowser {
	seg := DefaultBrowser{Unmeasured: true, Never: true}
	if len(days) == 0 {
		return seg
	}

	var lastMeasured bool
	var haveMeasured bool
	for _, ad := range days {
		rec := p.DayRecordFor(ad.Key)
		v, measured := payload.AsBool(rec[payload.ProviderAppInfo]["isDefaultBrowser"])
		if !measured {
			continue
		}
		seg.Unmeasured = false
		if v {
			seg.Default++
		}
		if haveMeasured && lastMeasured != v {
			seg.SwitchCount++
		}
		lastMeasured = v
		haveMeasured = true
	}

	seg.Active = len(days)
	seg.Always = seg.Default == seg.Active
	seg.Never = seg.Default == 0

	ratio := float64(seg.Default) / float64(seg.Active)
	switch {
	case ratio > 0.8:
		seg.Label = LabelMostly
	case ratio < 0.2:
		seg.Label = LabelRarely
	default:
		seg.Label = LabelSometimes
	}

	if seg.SwitchCount < 2 {
		seg.Switches = SwitchesOne
	} else {
		seg.Switches = SwitchesMultiple
	}
	return seg
}
