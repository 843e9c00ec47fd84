// Package domain declares the search-count warehouse load job's ports
package domain

import (
	"context"

	"churnscope/internal/platform/dates"
)

// Record is one (client key, raw payload) pair from a snapshot source
type Record struct {
	Key string
	Raw []byte
}

// ReaderPort streams snapshot records; Next returns io.EOF when exhausted
type ReaderPort interface {
	Next() (Record, error)
	Close() error
}

// SearchDay is one client-day of search counts bucketed by engine family
type SearchDay struct {
	ClientID   string
	ActiveDate dates.Date
	Google     int64
	Bing       int64
	Yahoo      int64
	Other      int64
}

// RunStats summarizes one load run
type RunStats struct {
	Read    int
	Skipped int

	// Panicked counts payloads recovered mid-extraction; always <= Skipped
	Panicked int

	// Rows is how many client-day rows were staged for insert
	Rows int
}

// RunnerPort drives a load over a snapshot source
type RunnerPort interface {
	Run(ctx context.Context, src ReaderPort) (RunStats, error)
}

// Ports is the module's input surface; the repo is bound internally
type Ports struct{}
