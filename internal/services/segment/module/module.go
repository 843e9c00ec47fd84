// Package module implements the segment module
package module

import (
	"fmt"

	"churnscope/internal/modkit"
	"churnscope/internal/platform/dates"
	"churnscope/internal/platform/validate"
	"churnscope/internal/services/segment/domain"
	"churnscope/internal/services/segment/service"
)

// Ports exposed by the segment module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new segment module
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("segment"),
	}, opts...)...)

	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("segment module: expected WithPorts(segment/domain.Ports)")
	}
	if ports.Emitter == nil {
		panic("segment module: Ports missing Emitter")
	}

	cfg := FromConfig(deps.Cfg)
	if overrides.Workers != 0 {
		cfg.Workers = overrides.Workers
	}
	if overrides.PageSize != 0 {
		cfg.PageSize = overrides.PageSize
	}
	if overrides.HorizonDays != 0 {
		cfg.HorizonDays = overrides.HorizonDays
	}
	if overrides.MaxPingAgeDays != 0 {
		cfg.MaxPingAgeDays = overrides.MaxPingAgeDays
	}
	if overrides.Now != "" {
		cfg.Now = overrides.Now
	}
	// bool overrides win (default false if caller didn't set)
	cfg.DryRun = cfg.DryRun || overrides.DryRun
	cfg.MozillaOnly = cfg.MozillaOnly || overrides.MozillaOnly

	policy := domain.AdmissionPolicy{
		OnlyMajorChannels: cfg.OnlyMajorChannels,
		MozillaOnly:       cfg.MozillaOnly,
		MaxPingAgeDays:    cfg.MaxPingAgeDays,
	}
	if err := validate.Struct(policy); err != nil {
		panic(err)
	}

	var now dates.Date
	if cfg.Now != "" {
		parsed, okNow := dates.Parse(cfg.Now)
		if !okNow {
			panic(fmt.Sprintf("segment module: bad NOW %q", cfg.Now))
		}
		now = parsed
	}

	runner := service.New(ports.Emitter, policy, service.Config{
		Workers:     cfg.Workers,
		PageSize:    cfg.PageSize,
		HorizonDays: cfg.HorizonDays,
		Now:         now,
		DryRun:      cfg.DryRun,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Runner: runner}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "segment" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
