// Package retention derives the validated history window for a payload and
// filters its day keys down to the active set.
package retention

import "fmt"

// Reason is one human-readable code explaining why a stage of segmentation
// could not run. Reasons are accumulated in order and are not exclusive;
// a payload can be both clock-skewed and inactive
type Reason string

// Reason constructors. The formats are stable output, not log text
func MissingField(name string) Reason {
	return Reason("Missing field: " + name)
}

func CorruptedField(name string) Reason {
	return Reason("Corrupted field: " + name)
}

func ClockSkew(ping, creation, now string) Reason {
	return Reason(fmt.Sprintf(
		"Ping date %q does not fall between creation date %q and current date %q",
		ping, creation, now))
}

func UnparseableDate(s string) Reason {
	return Reason(fmt.Sprintf("Unparseable date %q", s))
}

func InvalidMeasurement(day, why string) Reason {
	return Reason(fmt.Sprintf("Invalid measurement on %q: %s", day, why))
}

const (
	// TooOld marks a ping older than the retention horizon
	TooOld Reason = "Payload from before the retention window"

	// Inactive marks activity spanning less than two weeks
	Inactive Reason = "Activity spanned less than two weeks"

	// DefaultUnmeasured marks a payload with no default-browser data at all
	DefaultUnmeasured Reason = "No data for isDefaultBrowser"
)
