// Package domain declares the segment job's ports and admission types
package domain

import (
	"context"

	"churnscope/internal/core/segment"
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

// Emitted is one segmentation result, stamped with the run it came from
type Emitted struct {
	RunID   string               `json:"run_id"`
	Key     string               `json:"client_key"`
	Segment segment.UsageSegment `json:"usage"`
}

// EmitterPort receives results as they are produced; implementations must
// tolerate being called once per admitted payload across a large corpus
type EmitterPort interface {
	Emit(ctx context.Context, rec Emitted) error
}

// RunStats counts what happened to every record in a run; the totals are
// logged and returned so a harness can assert nothing was silently dropped
type RunStats struct {
	Read int `json:"read"`

	// Skipped counts records rejected before the engine ran: undecodable
	// documents, unsupported versions, and admission filter rejections
	Skipped int `json:"skipped"`

	// Panicked counts payloads whose processing panicked and was recovered
	Panicked int `json:"panicked"`

	Emitted int `json:"emitted"`
}

// RunnerPort is the external port for the segmentation job
type RunnerPort interface {
	Run(ctx context.Context, src ReaderPort) (RunStats, error)
}

// Ports are dependencies injected into the segment module
type Ports struct {
	Emitter EmitterPort // required
}
