package module

import "churnscope/internal/platform/config"

// Options holds configuration settings for the searchload module
type Options struct {
	Workers  int
	PageSize int

	// StmtTimeoutMS bounds each page transaction; 0 disables the hook
	StmtTimeoutMS int

	DryRun bool
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	sf := cfg.Prefix("SEARCHLOAD_")
	return Options{
		Workers:       sf.MayInt("WORKERS", 4),
		PageSize:      sf.MayInt("PAGE_SIZE", 1000),
		StmtTimeoutMS: sf.MayInt("STMT_TIMEOUT_MS", 30000),
		DryRun:        sf.MayBool("DRY_RUN", false),
	}
}
