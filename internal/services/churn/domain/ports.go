// Package domain declares the churn correlation job's ports
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

// Aggregate is one reduced (metric, churned) sum over the whole corpus
type Aggregate struct {
	Metric  string
	Churned bool
	Value   float64

	// Clients is how many payloads contributed to this cell
	Clients int
}

// SinkPort receives the reduced aggregates once per run
type SinkPort interface {
	Flush(ctx context.Context, runID string, churnDate dates.Date, rows []Aggregate) error
}

// RunStats counts record outcomes across a correlation run
type RunStats struct {
	Read       int `json:"read"`
	Skipped    int `json:"skipped"`
	Panicked   int `json:"panicked"`
	Correlated int `json:"correlated"`
}

// RunnerPort is the external port for the churn job
type RunnerPort interface {
	Run(ctx context.Context, src ReaderPort) (RunStats, error)
}

// Ports are dependencies injected into the churn module
type Ports struct {
	Sink SinkPort // required
}
