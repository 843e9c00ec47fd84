package module

import (
	"time"

	"churnscope/internal/platform/config"
)

// Options holds configuration settings for the churn module
type Options struct {
	Workers  int
	PageSize int

	// ChurnDate as YYYY-MM-DD; required unless overridden by the caller
	ChurnDate string

	Anchor time.Weekday
	DryRun bool
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	cf := cfg.Prefix("CHURN_")
	return Options{
		Workers:   cf.MayInt("WORKERS", 4),
		PageSize:  cf.MayInt("PAGE_SIZE", 1000),
		ChurnDate: cf.MayString("DATE", ""),
		Anchor:    cf.MayWeekday("ANCHOR", time.Saturday),
		DryRun:    cf.MayBool("DRY_RUN", false),
	}
}
