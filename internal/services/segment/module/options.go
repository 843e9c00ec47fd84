package module

import "churnscope/internal/platform/config"

// Options holds configuration settings for the segment module
type Options struct {
	Workers     int
	PageSize    int
	HorizonDays int

	// Now as YYYY-MM-DD; empty means today (UTC)
	Now string

	OnlyMajorChannels bool
	MozillaOnly       bool
	MaxPingAgeDays    int

	DryRun bool
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	sf := cfg.Prefix("SEGMENT_")
	return Options{
		Workers:           sf.MayInt("WORKERS", 4),
		PageSize:          sf.MayInt("PAGE_SIZE", 1000),
		HorizonDays:       sf.MayInt("HORIZON_DAYS", 180),
		Now:               sf.MayString("NOW", ""),
		OnlyMajorChannels: sf.MayBool("ONLY_MAJOR_CHANNELS", true),
		MozillaOnly:       sf.MayBool("MOZILLA_ONLY", false),
		MaxPingAgeDays:    sf.MayInt("MAX_PING_AGE_DAYS", 0),
		DryRun:            sf.MayBool("DRY_RUN", false),
	}
}
