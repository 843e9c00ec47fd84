// Command churnscope-loadsearch loads per-day search counts from one
// snapshot file into the Postgres warehouse table
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"

	"churnscope/internal/adapters/corpus"
	"churnscope/internal/core/version"
	"churnscope/internal/modkit"
	"churnscope/internal/modkit/module"
	"churnscope/internal/modkit/repokit"
	"churnscope/internal/platform/config"
	"churnscope/internal/platform/logger"
	"churnscope/internal/platform/store"

	searchdom "churnscope/internal/services/searchload/domain"
	searchmod "churnscope/internal/services/searchload/module"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

// corpusSource adapts a snapshot reader to the load job's port
type corpusSource struct{ rd *corpus.Reader }

func (s corpusSource) Next() (searchdom.Record, error) {
	rec, err := s.rd.Next()
	if err != nil {
		return searchdom.Record{}, err
	}
	return searchdom.Record{Key: rec.Key, Raw: rec.Raw}, nil
}

func (s corpusSource) Close() error { return s.rd.Close() }

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	l := logger.Get()

	bi := version.Info("churnscope-loadsearch")
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("starting")

	var (
		in      = flag.String("in", "", "snapshot file (.jsonl or .jsonl.gz)")
		workers = flag.Int("workers", 4, "concurrency (>=1)")
		page    = flag.Int("page", 1000, "page size (records)")
		dryRun  = flag.Bool("dry-run", false, "extract but do not insert")
	)
	flag.Parse()

	if *in == "" {
		log.Fatal("-in is required")
	}

	st, err := store.Open(context.Background(), store.Config{
		AppName: "churnscope-loadsearch",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(context.Background(), st)

	// Pass CLI flags into SEARCHLOAD_* so the module can read its own config
	mustSetEnv("SEARCHLOAD_WORKERS", strconv.Itoa(*workers))
	mustSetEnv("SEARCHLOAD_PAGE_SIZE", strconv.Itoa(*page))
	mustSetEnv("SEARCHLOAD_DRY_RUN", map[bool]string{true: "1", false: "0"}[*dryRun])

	deps := modkit.Deps{Cfg: root, Log: *l, PG: st.PG}
	lm := searchmod.New(deps, searchmod.Options{})
	module.Register(lm.Name(), lm.Ports())

	rd, err := corpus.Open(*in)
	if err != nil {
		l.Fatal().Err(err).Str("path", *in).Msg("cannot open snapshot")
	}

	ports := lm.Ports().(searchmod.Ports)
	stats, err := ports.Runner.Run(context.Background(), corpusSource{rd: rd})
	if err != nil {
		l.Fatal().Err(err).Msg("searchload run failed")
	}

	l.Info().
		Int("read", stats.Read).
		Int("skipped", stats.Skipped).
		Int("rows", stats.Rows).
		Msg("searchload done")
}
