// Package service implements the segmentation batch job
package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"churnscope/internal/core/payload"
	"churnscope/internal/core/segment"
	"churnscope/internal/platform/dates"
	"churnscope/internal/platform/logger"
	"churnscope/internal/services/segment/domain"
)

// Config for the segment service
type Config struct {
	Workers     int
	PageSize    int
	HorizonDays int

	// Now anchors clock-skew and age checks; zero means today (UTC)
	Now dates.Date

	DryRun bool
}

// Service implements domain.RunnerPort
type Service struct {
	Emitter domain.EmitterPort
	Policy  domain.AdmissionPolicy
	Eng     *segment.Engine
	Cfg     Config
}

// New constructs a segment service
func New(emitter domain.EmitterPort, policy domain.AdmissionPolicy, cfg Config) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	return &Service{
		Emitter: emitter,
		Policy:  policy,
		Eng:     segment.New(segment.Options{HorizonDays: cfg.HorizonDays}),
		Cfg:     cfg,
	}
}

// Run streams the source, segments admitted payloads under a bounded worker
// pool, and emits one result per admitted payload in input order. A failure
// inside one payload never interrupts the rest of the batch
func (s *Service) Run(ctx context.Context, src domain.ReaderPort) (domain.RunStats, error) {
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID, "")
	log := logger.C(ctx)

	now := s.Cfg.Now
	if now.IsZero() {
		now = dates.FromTime(time.Now().UTC())
	}

	var stats domain.RunStats
	page := make([]domain.Record, 0, s.Cfg.PageSize)
	done := false
	for !done {
		page = page[:0]
		for len(page) < s.Cfg.PageSize {
			rec, err := src.Next()
			if errors.Is(err, io.EOF) {
				done = true
				break
			}
			if err != nil {
				return stats, err
			}
			page = append(page, rec)
		}
		if len(page) == 0 {
			break
		}
		stats.Read += len(page)

		out := make([]*segment.UsageSegment, len(page))

		sem := make(chan struct{}, s.Cfg.Workers)
		wg := sync.WaitGroup{}
		var mu sync.Mutex // guards the skip counters

		for i := range page {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer func() { <-sem; wg.Done() }()
				seg, outcome := s.process(ctx, now, page[i])
				if outcome != outcomeOK {
					mu.Lock()
					if outcome == outcomePanic {
						stats.Panicked++
					}
					stats.Skipped++
					mu.Unlock()
					return
				}
				out[i] = seg
			}(i)
		}
		wg.Wait()

		if s.Cfg.DryRun {
			continue
		}
		for i, seg := range out {
			if seg == nil {
				continue
			}
			err := s.Emitter.Emit(ctx, domain.Emitted{
				RunID:   runID,
				Key:     page[i].Key,
				Segment: *seg,
			})
			if err != nil {
				return stats, err
			}
			stats.Emitted++
		}
	}

	log.Info().
		Int("read", stats.Read).
		Int("skipped", stats.Skipped).
		Int("panicked", stats.Panicked).
		Int("emitted", stats.Emitted).
		Msg("segment run complete")
	return stats, nil
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeSkip
	outcomePanic
)

// process parses, admits, and segments one record. Panics are recovered
// here so one broken payload becomes a skip, never a crashed run
func (s *Service) process(ctx context.Context, now dates.Date, rec domain.Record) (seg *segment.UsageSegment, oc outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.C(ctx).Error().
				Str("client_key", rec.Key).
				Any("panic", r).
				Msg("segment: recovered payload panic")
			seg, oc = nil, outcomePanic
		}
	}()

	pl, err := payload.Parse(rec.Raw)
	if err != nil {
		logger.C(ctx).Debug().
			Str("client_key", rec.Key).
			Err(err).
			Msg("segment: payload rejected")
		return nil, outcomeSkip
	}
	if !s.Policy.Admit(pl, now) {
		return nil, outcomeSkip
	}

	out := s.Eng.Segment(pl, now)
	return &out, outcomeOK
}
