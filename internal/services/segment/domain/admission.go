package domain

import (
	"churnscope/internal/core/payload"
	"churnscope/internal/platform/dates"
)

// AdmissionPolicy pre-filters which payloads reach the engine at all.
// The zero value admits everything
type AdmissionPolicy struct {
	// OnlyMajorChannels admits release, beta, aurora, nightly only
	OnlyMajorChannels bool `json:"only_major_channels"`

	// MozillaOnly admits payloads whose vendor is Mozilla
	MozillaOnly bool `json:"mozilla_only"`

	// MaxPingAgeDays rejects payloads whose ping date is older than this
	// many days; 0 disables the check
	MaxPingAgeDays int `json:"max_ping_age_days" validate:"gte=0"`
}

// Admit applies the policy to a parsed payload
func (p AdmissionPolicy) Admit(pl *payload.Payload, now dates.Date) bool {
	if p.OnlyMajorChannels && !pl.IsMajorChannel() {
		return false
	}
	if p.MozillaOnly && !pl.IsMozillaBuild() {
		return false
	}
	if p.MaxPingAgeDays > 0 {
		ping, ok := pl.ThisPingDate()
		if !ok {
			return false
		}
		if now.DaysSince(ping) > p.MaxPingAgeDays {
			return false
		}
	}
	return true
}
