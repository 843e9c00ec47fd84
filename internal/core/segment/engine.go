package segment

import (
	"churnscope/internal/core/payload"
	"churnscope/internal/core/retention"
	"churnscope/internal/platform/dates"
)

// Options configures an Engine. The zero value picks the defaults
type Options struct {
	// HorizonDays bounds the retention window, default 180
	HorizonDays int
}

// Engine derives one UsageSegment per payload. It is pure and stateless:
// safe for concurrent use, never mutates the payload, and produces identical
// output for identical input
type Engine struct {
	horizonDays int
}

// New constructs an Engine
func New(opts Options) *Engine {
	h := opts.HorizonDays
	if h <= 0 {
		h = retention.DefaultHorizonDays
	}
	return &Engine{horizonDays: h}
}

// UsageSegment is the engine's result for one payload. Scalar fields are
// populated even when the window computation fails; ReasonsNotSegmented
// records, in order, everything that prevented full segmentation
type UsageSegment struct {
	Channel         string `json:"channel"`
	Vendor          string `json:"vendor,omitempty"`
	AppBuildID      string `json:"app_build_id,omitempty"`
	PlatformBuildID string `json:"platform_build_id,omitempty"`
	GeoCountry      string `json:"geo_country,omitempty"`
	Locale          string `json:"locale,omitempty"`
	OS              string `json:"os,omitempty"`

	CreationDate string `json:"creation_date,omitempty"`
	PingDate     string `json:"ping_date,omitempty"`

	Window          *retention.Window `json:"window,omitempty"`
	ActiveDays      []string          `json:"active_days"`
	UnparseableDays []string          `json:"unparseable_days,omitempty"`

	Default  DefaultBrowser `json:"default"`
	Activity Summary        `json:"activity"`

	ReasonsNotSegmented []string `json:"reasons_not_segmented"`
}

// Segment computes the usage segment for one payload. now anchors the
// clock-skew and horizon checks and is injected so runs are reproducible
func (e *Engine) Segment(p *payload.Payload, now dates.Date) UsageSegment {
	out := UsageSegment{
		Channel:         p.Channel(),
		Vendor:          p.Vendor(),
		AppBuildID:      p.AppBuildID(),
		PlatformBuildID: p.PlatformBuildID(),
		GeoCountry:      p.GeoCountry(),
		Locale:          p.Locale(),
		OS:              p.OSName(),
		CreationDate:    p.CreationDateString(),
		PingDate:        p.PingDateString(),
		ActiveDays:      []string{},
	}
	var reasons []retention.Reason

	window, wreasons, winOK := retention.ComputeWindow(
		out.CreationDate, out.PingDate, now, e.horizonDays)
	reasons = append(reasons, wreasons...)

	// days the downstream segments operate on; stays empty when the window
	// failed or activity spans less than two weeks
	var days []retention.ActiveDay
	tenureDays := -1
	if winOK {
		out.Window = &window

		// creation parsed successfully inside ComputeWindow
		creation, _ := dates.Parse(out.CreationDate)
		tenureDays = window.Ping.DaysSince(creation)

		filtered := retention.FilterActiveDays(window, p.Days())
		out.UnparseableDays = filtered.Unparseable
		for _, k := range filtered.Unparseable {
			reasons = append(reasons, retention.UnparseableDate(k))
		}
		if !filtered.Active {
			reasons = append(reasons, retention.Inactive)
		} else {
			days = filtered.Days
		}
		for _, ad := range filtered.Days {
			out.ActiveDays = append(out.ActiveDays, ad.Key)
		}
	}

	out.Default = DefaultBrowserStatus(p, days)
	if out.Default.Unmeasured {
		reasons = append(reasons, retention.DefaultUnmeasured)
	}

	byDay := make([]DailyActivity, 0, len(days))
	for _, ad := range days {
		byDay = append(byDay, ExtractDailyActivity(ad.Key, p.DayRecordFor(ad.Key), e.horizonDays))
	}
	out.Activity = Summarize(byDay, len(days), tenureDays)

	out.ReasonsNotSegmented = make([]string, 0, len(reasons))
	for _, r := range reasons {
		out.ReasonsNotSegmented = append(out.ReasonsNotSegmented, string(r))
	}
	return out
}
