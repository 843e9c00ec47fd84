// Package module implements the churn module
package module

import (
	"fmt"

	"churnscope/internal/modkit"
	"churnscope/internal/platform/dates"
	"churnscope/internal/services/churn/domain"
	"churnscope/internal/services/churn/service"
)

// Ports exposed by the churn module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new churn module
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("churn"),
	}, opts...)...)

	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("churn module: expected WithPorts(churn/domain.Ports)")
	}
	if ports.Sink == nil {
		panic("churn module: Ports missing Sink")
	}

	cfg := FromConfig(deps.Cfg)
	if overrides.Workers != 0 {
		cfg.Workers = overrides.Workers
	}
	if overrides.PageSize != 0 {
		cfg.PageSize = overrides.PageSize
	}
	if overrides.ChurnDate != "" {
		cfg.ChurnDate = overrides.ChurnDate
	}
	// Sunday is the weekday zero value, so it can only come from config
	if overrides.Anchor != 0 {
		cfg.Anchor = overrides.Anchor
	}
	cfg.DryRun = cfg.DryRun || overrides.DryRun

	if cfg.ChurnDate == "" {
		panic("churn module: CHURN_DATE is required")
	}
	churnDate, ok := dates.Parse(cfg.ChurnDate)
	if !ok {
		panic(fmt.Sprintf("churn module: bad CHURN_DATE %q", cfg.ChurnDate))
	}

	runner := service.New(ports.Sink, service.Config{
		Workers:   cfg.Workers,
		PageSize:  cfg.PageSize,
		ChurnDate: churnDate,
		Anchor:    cfg.Anchor,
		DryRun:    cfg.DryRun,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Runner: runner}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "churn" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
