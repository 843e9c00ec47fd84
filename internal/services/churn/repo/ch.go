// Package repo persists churn aggregates to the columnar warehouse
package repo

import (
	"context"

	"churnscope/internal/platform/dates"
	perr "churnscope/internal/platform/errors"
	"churnscope/internal/platform/store"
	"churnscope/internal/services/churn/domain"
)

// Table is the weekly churn aggregate table.
// Columns: run_id, churn_date, metric, churned, value, clients
const Table = "churn_weekly"

// CH writes aggregates through the store's clickhouse seam
type CH struct {
	ch store.Clickhouse
}

// NewCH constructs a CH sink. The client is caller-owned and injected
func NewCH(ch store.Clickhouse) *CH {
	if ch == nil {
		panic("churn repo: nil clickhouse seam")
	}
	return &CH{ch: ch}
}

// Flush appends one row per aggregate cell in a single batch
func (s *CH) Flush(ctx context.Context, runID string, churnDate dates.Date, rows []domain.Aggregate) error {
	if len(rows) == 0 {
		return nil
	}
	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{
			runID,
			churnDate.String(),
			r.Metric,
			r.Churned,
			r.Value,
			int64(r.Clients),
		})
	}
	if err := s.ch.Insert(ctx, Table, data); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "churn: flush aggregates")
	}
	return nil
}
