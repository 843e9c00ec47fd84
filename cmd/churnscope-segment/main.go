// Command churnscope-segment runs the usage segmentation job over one
// snapshot file and emits JSONL results
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"strconv"

	"churnscope/internal/adapters/corpus"
	"churnscope/internal/core/version"
	"churnscope/internal/modkit"
	"churnscope/internal/modkit/module"
	"churnscope/internal/platform/config"
	"churnscope/internal/platform/logger"

	segdom "churnscope/internal/services/segment/domain"
	segmod "churnscope/internal/services/segment/module"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

// corpusSource adapts a snapshot reader to the segment job's port
type corpusSource struct{ rd *corpus.Reader }

func (s corpusSource) Next() (segdom.Record, error) {
	rec, err := s.rd.Next()
	if err != nil {
		return segdom.Record{}, err
	}
	return segdom.Record{Key: rec.Key, Raw: rec.Raw}, nil
}

func (s corpusSource) Close() error { return s.rd.Close() }

// jsonlEmitter writes one result per line
type jsonlEmitter struct {
	w  *bufio.Writer
	je *json.Encoder
}

func newJSONLEmitter(w io.Writer) *jsonlEmitter {
	bw := bufio.NewWriterSize(w, 1<<20)
	return &jsonlEmitter{w: bw, je: json.NewEncoder(bw)}
}

func (e *jsonlEmitter) Emit(_ context.Context, rec segdom.Emitted) error {
	return e.je.Encode(rec)
}

func (e *jsonlEmitter) Flush() error { return e.w.Flush() }

func main() {
	root := config.New()
	l := logger.Get()

	bi := version.Info("churnscope-segment")
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("starting")

	var (
		in      = flag.String("in", "", "snapshot file (.jsonl or .jsonl.gz)")
		out     = flag.String("out", "-", "output file, - for stdout")
		workers = flag.Int("workers", 4, "concurrency (>=1)")
		page    = flag.Int("page", 1000, "page size (records)")
		horizon = flag.Int("horizon", 180, "retention horizon in days")
		now     = flag.String("now", "", "segmentation date YYYY-MM-DD (default today UTC)")
		dryRun  = flag.Bool("dry-run", false, "segment but do not emit")
	)
	flag.Parse()

	if *in == "" {
		log.Fatal("-in is required")
	}

	// Pass CLI flags into SEGMENT_* so the module can read its own config
	mustSetEnv("SEGMENT_WORKERS", strconv.Itoa(*workers))
	mustSetEnv("SEGMENT_PAGE_SIZE", strconv.Itoa(*page))
	mustSetEnv("SEGMENT_HORIZON_DAYS", strconv.Itoa(*horizon))
	mustSetEnv("SEGMENT_NOW", *now)
	mustSetEnv("SEGMENT_DRY_RUN", map[bool]string{true: "1", false: "0"}[*dryRun])

	var sink io.Writer = os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			l.Fatal().Err(err).Str("path", *out).Msg("cannot create output")
		}
		defer f.Close()
		sink = f
	}
	emitter := newJSONLEmitter(sink)

	deps := modkit.Deps{Cfg: root, Log: *l}
	sm := segmod.New(deps, segmod.Options{}, modkit.WithPorts(segdom.Ports{
		Emitter: emitter,
	}))
	module.Register(sm.Name(), sm.Ports())

	rd, err := corpus.Open(*in)
	if err != nil {
		l.Fatal().Err(err).Str("path", *in).Msg("cannot open snapshot")
	}

	ports := sm.Ports().(segmod.Ports)
	stats, err := ports.Runner.Run(context.Background(), corpusSource{rd: rd})
	if err != nil {
		l.Fatal().Err(err).Msg("segment run failed")
	}
	if err := emitter.Flush(); err != nil {
		l.Fatal().Err(err).Msg("flush output")
	}

	l.Info().
		Int("read", stats.Read).
		Int("skipped", stats.Skipped).
		Int("emitted", stats.Emitted).
		Msg("segment done")
}
