// Package service implements the churn correlation batch job
package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"churnscope/internal/core/churn"
	"churnscope/internal/core/payload"
	"churnscope/internal/platform/dates"
	"churnscope/internal/platform/logger"
	"churnscope/internal/services/churn/domain"
)

// Config for the churn service
type Config struct {
	Workers  int
	PageSize int

	// ChurnDate is the cutoff clients are measured against; required
	ChurnDate dates.Date

	// Anchor is the weekday reporting weeks start on
	Anchor time.Weekday

	DryRun bool
}

// Service implements domain.RunnerPort
type Service struct {
	Sink domain.SinkPort
	Cfg  Config
}

// cell is one (metric, churned) reduce bucket
type cell struct {
	metric  string
	churned bool
}

// New constructs a churn service
func New(sink domain.SinkPort, cfg Config) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	return &Service{Sink: sink, Cfg: cfg}
}

// Run maps every payload to its (metric, churned) tuples, reduces them by
// summation across the corpus, and flushes the aggregates once at the end.
// One broken payload becomes a skip, never a crashed run
func (s *Service) Run(ctx context.Context, src domain.ReaderPort) (domain.RunStats, error) {
	if s.Cfg.ChurnDate.IsZero() {
		return domain.RunStats{}, errors.New("churn: ChurnDate is required")
	}

	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID, "")
	log := logger.C(ctx)

	var stats domain.RunStats
	sums := map[cell]float64{}
	clients := map[cell]int{}
	var mu sync.Mutex

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

		sem := make(chan struct{}, s.Cfg.Workers)
		wg := sync.WaitGroup{}

		for i := range page {
			wg.Add(1)
			sem <- struct{}{}
			go func(rec domain.Record) {
				defer func() { <-sem; wg.Done() }()
				tuples, oc := s.correlate(ctx, rec)

				mu.Lock()
				defer mu.Unlock()
				switch oc {
				case outcomePanic:
					stats.Panicked++
					stats.Skipped++
				case outcomeSkip:
					stats.Skipped++
				default:
					stats.Correlated++
					for _, tp := range tuples {
						c := cell{metric: tp.Metric, churned: tp.Churned}
						sums[c] += tp.Value
						clients[c]++
					}
				}
			}(page[i])
		}
		wg.Wait()
	}

	rows := make([]domain.Aggregate, 0, len(sums))
	for c, v := range sums {
		rows = append(rows, domain.Aggregate{
			Metric:  c.metric,
			Churned: c.churned,
			Value:   v,
			Clients: clients[c],
		})
	}
	// stable output order for idempotent sinks
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Metric != rows[j].Metric {
			return rows[i].Metric < rows[j].Metric
		}
		return !rows[i].Churned && rows[j].Churned
	})

	if !s.Cfg.DryRun && len(rows) > 0 {
		if err := s.Sink.Flush(ctx, runID, s.Cfg.ChurnDate, rows); err != nil {
			return stats, err
		}
	}

	log.Info().
		Int("read", stats.Read).
		Int("skipped", stats.Skipped).
		Int("correlated", stats.Correlated).
		Int("cells", len(rows)).
		Msg("churn run complete")
	return stats, nil
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeSkip
	outcomePanic
)

func (s *Service) correlate(ctx context.Context, rec domain.Record) (tuples []churn.Tuple, oc outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.C(ctx).Error().
				Str("client_key", rec.Key).
				Any("panic", r).
				Msg("churn: recovered payload panic")
			tuples, oc = nil, outcomePanic
		}
	}()

	pl, err := payload.Parse(rec.Raw)
	if err != nil {
		return nil, outcomeSkip
	}
	res, _, ok := churn.Correlate(pl, s.Cfg.ChurnDate, s.Cfg.Anchor)
	if !ok {
		return nil, outcomeSkip
	}
	return res.Tuples(), outcomeOK
}
