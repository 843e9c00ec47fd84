// Package payload provides a read-only view over a health report document.
//
// A payload is the per-client JSON document describing browser telemetry over
// time: top-level scalars (version, ping dates, app info), a data.last block
// with the latest known provider state, and a data.days history keyed by
// YYYY-MM-DD. The view never mutates the document; every accessor returns
// freshly built values so callers can hold them across invocations.
package payload

import (
	"encoding/json"
	"sort"
	"strings"

	"churnscope/internal/platform/dates"
	perr "churnscope/internal/platform/errors"
)

// Provider names as they appear in the document
const (
	ProviderProfileAge   = "org.mozilla.profile.age"
	ProviderAppInfo      = "org.mozilla.appInfo.appinfo"
	ProviderAppSessions  = "org.mozilla.appSessions.previous"
	ProviderCrashes      = "org.mozilla.crashes.crashes"
	ProviderSearchCounts = "org.mozilla.searches.counts"
	ProviderSysInfo      = "org.mozilla.sysinfo.sysinfo"
	ProviderPlaces       = "org.mozilla.places.places"
)

// SupportedVersion is the only document schema version the view accepts
const SupportedVersion = 2

// Fields is one provider's field map for a single day (or for data.last)
type Fields map[string]any

// DayRecord maps provider name to that provider's fields for one day
type DayRecord map[string]Fields

// DayData pairs a raw day-key string with its record
type DayData struct {
	Day  string
	Data DayRecord
}

type document struct {
	Version      int            `json:"version"`
	ThisPingDate string         `json:"thisPingDate"`
	LastPingDate string         `json:"lastPingDate"`
	GeoCountry   string         `json:"geoCountry"`
	GeckoAppInfo map[string]any `json:"geckoAppInfo"`
	Data         struct {
		Last map[string]Fields    `json:"last"`
		Days map[string]DayRecord `json:"days"`
	} `json:"data"`
	Errors []string `json:"errors"`
}

// Payload is the immutable view. Construct with Parse
type Payload struct {
	doc  document
	days []string // sorted ascending, computed once
}

// Parse decodes raw bytes and gates on the schema version.
// Any version other than 2 is rejected with an unsupported version error;
// a document that does not decode at all is rejected with a JSON error
func Parse(raw []byte) (*Payload, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "payload: decode document")
	}
	if doc.Version != SupportedVersion {
		return nil, perr.UnsupportedVersionf("payload: unsupported version %d", doc.Version)
	}

	days := make([]string, 0, len(doc.Data.Days))
	for d := range doc.Data.Days {
		days = append(days, d)
	}
	sort.Strings(days)

	return &Payload{doc: doc, days: days}, nil
}

// Version reports the document schema version (always 2 after Parse)
func (p *Payload) Version() int { return p.doc.Version }

// PingDateString returns the raw thisPingDate string, possibly empty
func (p *Payload) PingDateString() string { return p.doc.ThisPingDate }

// ThisPingDate parses thisPingDate; ok is false when missing or malformed
func (p *Payload) ThisPingDate() (dates.Date, bool) {
	if p.doc.ThisPingDate == "" {
		return dates.Date{}, false
	}
	return dates.Parse(p.doc.ThisPingDate)
}

// LastPingDate parses lastPingDate; ok is false when absent or malformed
func (p *Payload) LastPingDate() (dates.Date, bool) {
	if p.doc.LastPingDate == "" {
		return dates.Date{}, false
	}
	return dates.Parse(p.doc.LastPingDate)
}

// CreationDateString returns the raw profileCreation string from data.last,
// empty when the profile age provider or field is absent
func (p *Payload) CreationDateString() string {
	age, ok := p.Last()[ProviderProfileAge]
	if !ok {
		return ""
	}
	s, _ := age["profileCreation"].(string)
	return s
}

// Channel returns the update channel, "unknown" when absent
func (p *Payload) Channel() string {
	if c, ok := p.doc.GeckoAppInfo["updateChannel"].(string); ok && c != "" {
		return c
	}
	return "unknown"
}

// Vendor returns the app vendor, empty when absent
func (p *Payload) Vendor() string {
	v, _ := p.doc.GeckoAppInfo["vendor"].(string)
	return v
}

// AppBuildID returns the application build id, empty when absent
func (p *Payload) AppBuildID() string {
	v, _ := p.doc.GeckoAppInfo["appBuildID"].(string)
	return v
}

// PlatformBuildID returns the platform build id, empty when absent
func (p *Payload) PlatformBuildID() string {
	v, _ := p.doc.GeckoAppInfo["platformBuildID"].(string)
	return v
}

// GeoCountry returns the submission country code, empty when absent
func (p *Payload) GeoCountry() string { return p.doc.GeoCountry }

// IsMozillaBuild reports whether the vendor is Mozilla
func (p *Payload) IsMozillaBuild() bool { return p.Vendor() == "Mozilla" }

// majorChannels are the channels that reach a broad population
var majorChannels = map[string]struct{}{
	"release": {},
	"beta":    {},
	"aurora":  {},
	"nightly": {},
}

// IsMajorChannel reports whether the update channel is one of
// release, beta, aurora, nightly
func (p *Payload) IsMajorChannel() bool {
	_, ok := majorChannels[p.Channel()]
	return ok
}

// Last returns the latest known provider state (data.last)
func (p *Payload) Last() map[string]Fields {
	if p.doc.Data.Last == nil {
		return map[string]Fields{}
	}
	return p.doc.Data.Last
}

// Days returns the day-key strings present in the history, sorted ascending.
// The returned slice is a copy
func (p *Payload) Days() []string {
	out := make([]string, len(p.days))
	copy(out, p.days)
	return out
}

// Errors returns the payload's own error strings
func (p *Payload) Errors() []string { return p.doc.Errors }

// SystemInfo returns the latest sysinfo fields, nil when absent
func (p *Payload) SystemInfo() Fields { return p.Last()[ProviderSysInfo] }

// OSName returns the operating system name from sysinfo, empty when absent
func (p *Payload) OSName() string {
	s, _ := p.SystemInfo()["name"].(string)
	return s
}

// Locale returns the most recently measured locale from daily app info,
// falling back to the data.last app info, empty when never measured
func (p *Payload) Locale() string {
	for _, dd := range p.DailyProviderData(ProviderAppInfo, true) {
		if l, ok := dd.Data[ProviderAppInfo]["locale"].(string); ok && l != "" {
			return l
		}
	}
	l, _ := p.Last()[ProviderAppInfo]["locale"].(string)
	return l
}

// DailyData returns (day, record) pairs sorted by day,
// oldest to newest unless reverse is true
func (p *Payload) DailyData(reverse bool) []DayData {
	out := make([]DayData, 0, len(p.days))
	if reverse {
		for i := len(p.days) - 1; i >= 0; i-- {
			out = append(out, DayData{Day: p.days[i], Data: p.doc.Data.Days[p.days[i]]})
		}
		return out
	}
	for _, d := range p.days {
		out = append(out, DayData{Day: d, Data: p.doc.Data.Days[d]})
	}
	return out
}

// DailyProviderData returns the (day, record) pairs where the named provider
// reported anything, in day order (reversed when reverse is true). Each
// returned record holds only the requested provider
func (p *Payload) DailyProviderData(provider string, reverse bool) []DayData {
	var out []DayData
	for _, dd := range p.DailyData(reverse) {
		f := dd.Data[provider]
		if len(f) == 0 {
			continue
		}
		out = append(out, DayData{Day: dd.Day, Data: DayRecord{provider: f}})
	}
	return out
}

// DayRecordFor returns the record for a raw day-key string, nil when absent
func (p *Payload) DayRecordFor(day string) DayRecord { return p.doc.Data.Days[day] }

// ActiveDay reports whether a day record carries any provider other than
// the crash provider. Crash-only days are submission artifacts, not activity
func ActiveDay(rec DayRecord) bool {
	for name := range rec {
		if name != ProviderCrashes {
			return true
		}
	}
	return false
}

// TelemetryEnabled scans daily app info newest first for the telemetry flag.
// ok is false when the flag was never measured
func (p *Payload) TelemetryEnabled() (bool, bool) {
	return p.latestAppInfoFlag("isTelemetryEnabled")
}

// TelemetryEverEnabled reports whether telemetry was enabled on any day
func (p *Payload) TelemetryEverEnabled() bool {
	return p.appInfoFlagEver("isTelemetryEnabled")
}

// BlocklistEnabled scans daily app info newest first for the blocklist flag.
// ok is false when the flag was never measured
func (p *Payload) BlocklistEnabled() (bool, bool) {
	return p.latestAppInfoFlag("isBlocklistEnabled")
}

// BlocklistEverEnabled reports whether the blocklist was enabled on any day
func (p *Payload) BlocklistEverEnabled() bool {
	return p.appInfoFlagEver("isBlocklistEnabled")
}

func (p *Payload) latestAppInfoFlag(field string) (bool, bool) {
	for _, dd := range p.DailyProviderData(ProviderAppInfo, true) {
		if v, ok := AsBool(dd.Data[ProviderAppInfo][field]); ok {
			return v, true
		}
	}
	return false, false
}

func (p *Payload) appInfoFlagEver(field string) bool {
	for _, dd := range p.DailyProviderData(ProviderAppInfo, false) {
		if v, ok := AsBool(dd.Data[ProviderAppInfo][field]); ok && v {
			return true
		}
	}
	return false
}

// LatestPlacesCounts returns the most recent bookmarks and pages counts.
// ok is false when no day carries both fields
func (p *Payload) LatestPlacesCounts() (bookmarks, pages int64, ok bool) {
	for _, dd := range p.DailyProviderData(ProviderPlaces, true) {
		f := dd.Data[ProviderPlaces]
		b, bok := AsInt64(f["bookmarks"])
		pg, pok := AsInt64(f["pages"])
		if bok && pok {
			return b, pg, true
		}
	}
	return 0, 0, false
}

// SearchCount is one engine/where counter for one day
type SearchCount struct {
	Day    string
	Engine string
	Where  string
	Count  int64
}

// DailySearchCounts flattens the search counts provider into per-day counters.
// Days whose counter block is not schema version 2 are skipped. Counter keys
// take the form "<engine>.<where>"; the engine itself may contain dots, so the
// split is on the last dot only
func (p *Payload) DailySearchCounts() []SearchCount {
	var out []SearchCount
	for _, dd := range p.DailyProviderData(ProviderSearchCounts, false) {
		counts := dd.Data[ProviderSearchCounts]
		if v, ok := AsInt64(counts["_v"]); !ok || v != 2 {
			continue
		}
		keys := make([]string, 0, len(counts))
		for k := range counts {
			if k != "_v" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			n, ok := AsInt64(counts[k])
			if !ok {
				continue
			}
			i := strings.LastIndex(k, ".")
			if i < 0 {
				continue
			}
			out = append(out, SearchCount{Day: dd.Day, Engine: k[:i], Where: k[i+1:], Count: n})
		}
	}
	return out
}
