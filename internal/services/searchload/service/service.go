// Package service implements the search-count warehouse load job
package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"

	"churnscope/internal/core/normalize"
	"churnscope/internal/core/payload"
	"churnscope/internal/modkit/repokit"
	"churnscope/internal/platform/dates"
	"churnscope/internal/platform/logger"
	"churnscope/internal/services/searchload/domain"
	"churnscope/internal/services/searchload/repo"
)

// Config for the searchload service
type Config struct {
	Workers  int
	PageSize int
	DryRun   bool
}

// Service implements domain.RunnerPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Cfg    Config

	norm *normalize.Normalizer
}

// New constructs a searchload service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], cfg Config) *Service {
	if db == nil {
		panic("searchload.Service requires a non-nil TxRunner")
	}
	if binder == nil {
		panic("searchload.Service requires a non-nil Storage binder")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	return &Service{DB: db, Binder: binder, Cfg: cfg, norm: normalize.New()}
}

// Run extracts per-day search counts from every payload and batch-inserts
// one row per client-day. Each page is one transaction; a broken payload
// becomes a skip, never a crashed run
func (s *Service) Run(ctx context.Context, src domain.ReaderPort) (domain.RunStats, error) {
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID, "")
	log := logger.C(ctx)

	var stats domain.RunStats
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

		rowsByIdx := make([][]domain.SearchDay, len(page))
		sem := make(chan struct{}, s.Cfg.Workers)
		wg := sync.WaitGroup{}

		for i := range page {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, rec domain.Record) {
				defer func() { <-sem; wg.Done() }()
				rows, oc := s.extract(ctx, rec)

				mu.Lock()
				defer mu.Unlock()
				switch oc {
				case outcomePanic:
					stats.Panicked++
					stats.Skipped++
				case outcomeSkip:
					stats.Skipped++
				default:
					rowsByIdx[i] = rows
					stats.Rows += len(rows)
				}
			}(i, page[i])
		}
		wg.Wait()

		batch := make([]domain.SearchDay, 0, len(page))
		for _, rows := range rowsByIdx {
			batch = append(batch, rows...)
		}
		if len(batch) == 0 || s.Cfg.DryRun {
			continue
		}
		err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
			return s.Binder.Bind(q).WriteBatch(ctx, batch)
		})
		if err != nil {
			return stats, err
		}
	}

	log.Info().
		Int("read", stats.Read).
		Int("skipped", stats.Skipped).
		Int("rows", stats.Rows).
		Msg("searchload run complete")
	return stats, nil
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeSkip
	outcomePanic
)

// extract folds one payload's search counts into client-day rows, one per
// parseable day that has any, with engines bucketed by family
func (s *Service) extract(ctx context.Context, rec domain.Record) (rows []domain.SearchDay, oc outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.C(ctx).Error().
				Str("client_key", rec.Key).
				Any("panic", r).
				Msg("searchload: recovered payload panic")
			rows, oc = nil, outcomePanic
		}
	}()

	pl, err := payload.Parse(rec.Raw)
	if err != nil {
		return nil, outcomeSkip
	}

	byDay := map[dates.Date]*domain.SearchDay{}
	for _, sc := range pl.DailySearchCounts() {
		d, ok := dates.Parse(sc.Day)
		if !ok {
			continue
		}
		row := byDay[d]
		if row == nil {
			row = &domain.SearchDay{ClientID: rec.Key, ActiveDate: d}
			byDay[d] = row
		}
		switch s.norm.Engine(sc.Engine) {
		case "google":
			row.Google += sc.Count
		case "bing":
			row.Bing += sc.Count
		case "yahoo":
			row.Yahoo += sc.Count
		default:
			row.Other += sc.Count
		}
	}
	if len(byDay) == 0 {
		return nil, outcomeSkip
	}

	out := make([]domain.SearchDay, 0, len(byDay))
	for _, row := range byDay {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActiveDate.Before(out[j].ActiveDate) })
	return out, outcomeOK
}
