// Package repo provides the search-count warehouse bindings
package repo

import (
	"context"
	"fmt"
	"strings"

	"churnscope/internal/modkit/repokit"
	"churnscope/internal/services/searchload/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the search-count repository
type Storage interface {
	WriteBatch(ctx context.Context, xs []domain.SearchDay) error
}

// WriteBatch implements Storage
func (s *pg) WriteBatch(ctx context.Context, xs []domain.SearchDay) error {
	if len(xs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO search_daily_counts
		(client_id, active_date, google, bing, yahoo, other) VALUES `)

	args := make([]any, 0, len(xs)*6)
	for i, r := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*6 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5)

		args = append(args,
			r.ClientID, r.ActiveDate.String(),
			r.Google, r.Bing, r.Yahoo, r.Other,
		)
	}
	// Re-runs over the same snapshot are idempotent
	sb.WriteString(` ON CONFLICT (client_id, active_date) DO NOTHING`)
	_, err := s.q.Exec(ctx, sb.String(), args...)
	return err
}
