// Command churnscope-churn runs the churn/crash correlation job over one
// snapshot file and flushes weekly aggregates to the warehouse
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

	churndom "churnscope/internal/services/churn/domain"
	churnmod "churnscope/internal/services/churn/module"
	churnrepo "churnscope/internal/services/churn/repo"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

// corpusSource adapts a snapshot reader to the churn job's port
type corpusSource struct{ rd *corpus.Reader }

func (s corpusSource) Next() (churndom.Record, error) {
	rec, err := s.rd.Next()
	if err != nil {
		return churndom.Record{}, err
	}
	return churndom.Record{Key: rec.Key, Raw: rec.Raw}, nil
}

func (s corpusSource) Close() error { return s.rd.Close() }

func main() {
	root := config.New()
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	l := logger.Get()

	bi := version.Info("churnscope-churn")
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("starting")

	var (
		in        = flag.String("in", "", "snapshot file (.jsonl or .jsonl.gz)")
		churnDate = flag.String("churn-date", "", "cutoff date YYYY-MM-DD")
		workers   = flag.Int("workers", 4, "concurrency (>=1)")
		page      = flag.Int("page", 1000, "page size (records)")
		dryRun    = flag.Bool("dry-run", false, "correlate but do not flush")
	)
	flag.Parse()

	if *in == "" {
		log.Fatal("-in is required")
	}
	if *churnDate == "" {
		log.Fatal("-churn-date is required")
	}

	st, err := store.Open(context.Background(), store.Config{
		AppName: "churnscope-churn",
		CH: store.CHConfig{
			Enabled: true,
			URL:     chCfg.MustString("DBURL"),
			Role:    "churn",
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

	// Pass CLI flags into CHURN_* so the module can read its own config
	mustSetEnv("CHURN_WORKERS", strconv.Itoa(*workers))
	mustSetEnv("CHURN_PAGE_SIZE", strconv.Itoa(*page))
	mustSetEnv("CHURN_DATE", *churnDate)
	mustSetEnv("CHURN_DRY_RUN", map[bool]string{true: "1", false: "0"}[*dryRun])

	deps := modkit.Deps{Cfg: root, Log: *l, CH: st.CH}
	cm := churnmod.New(deps, churnmod.Options{}, modkit.WithPorts(churndom.Ports{
		Sink: churnrepo.NewCH(st.CH),
	}))
	module.Register(cm.Name(), cm.Ports())

	rd, err := corpus.Open(*in)
	if err != nil {
		l.Fatal().Err(err).Str("path", *in).Msg("cannot open snapshot")
	}

	ports := cm.Ports().(churnmod.Ports)
	stats, err := ports.Runner.Run(context.Background(), corpusSource{rd: rd})
	if err != nil {
		l.Fatal().Err(err).Msg("churn run failed")
	}

	l.Info().
		Int("read", stats.Read).
		Int("skipped", stats.Skipped).
		Int("correlated", stats.Correlated).
		Msg("churn done")
}
