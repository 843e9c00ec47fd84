// Package module implements the searchload module
package module

import (
	"context"
	"fmt"

	"churnscope/internal/modkit"
	"churnscope/internal/modkit/repokit"
	"churnscope/internal/services/searchload/domain"
	"churnscope/internal/services/searchload/repo"
	"churnscope/internal/services/searchload/service"
)

// Ports exposed by the searchload module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new searchload module. The repo binds to deps.PG, which
// the caller owns and injects
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	modkit.Build(append([]modkit.Option{
		modkit.WithName("searchload"),
	}, opts...)...)

	if deps.PG == nil {
		panic("searchload module: Deps missing PG")
	}

	cfg := FromConfig(deps.Cfg)
	if overrides.Workers != 0 {
		cfg.Workers = overrides.Workers
	}
	if overrides.PageSize != 0 {
		cfg.PageSize = overrides.PageSize
	}
	if overrides.StmtTimeoutMS != 0 {
		cfg.StmtTimeoutMS = overrides.StmtTimeoutMS
	}
	cfg.DryRun = cfg.DryRun || overrides.DryRun

	// each page insert runs in one tx; keep a runaway batch from holding
	// the warehouse open indefinitely
	db := deps.PG
	if cfg.StmtTimeoutMS > 0 {
		ms := cfg.StmtTimeoutMS
		db = repokit.WithBeginHooks(db, func(ctx context.Context, q repokit.Queryer) error {
			_, err := q.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", ms))
			return err
		})
	}

	runner := service.New(db, repo.NewPG(), service.Config{
		Workers:  cfg.Workers,
		PageSize: cfg.PageSize,
		DryRun:   cfg.DryRun,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Runner: runner}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "searchload" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
