package module

import (
	"context"
	"io"
	"strings"
	"testing"

	"churnscope/internal/modkit"
	"churnscope/internal/modkit/repokit"
	"churnscope/internal/platform/config"
	"churnscope/internal/platform/store"
	"churnscope/internal/services/searchload/domain"
)

// txSpy records every statement executed inside its transactions
type txSpy struct {
	sqls []string
}

func (s *txSpy) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	s.sqls = append(s.sqls, sql)
	return nil, nil
}

func (s *txSpy) Query(context.Context, string, ...any) (store.Rows, error) {
	panic("unexpected Query")
}

func (s *txSpy) QueryRow(context.Context, string, ...any) store.Row {
	panic("unexpected QueryRow")
}

func (s *txSpy) Tx(_ context.Context, fn func(q repokit.Queryer) error) error {
	return fn(s)
}

type oneShotReader struct {
	rec  domain.Record
	done bool
}

func (r *oneShotReader) Next() (domain.Record, error) {
	if r.done {
		return domain.Record{}, io.EOF
	}
	r.done = true
	return r.rec, nil
}

func (r *oneShotReader) Close() error { return nil }

const loadDoc = `{
	"version": 2,
	"data": {"days": {
		"2015-04-30": {"org.mozilla.searches.counts": {"_v": 2, "google.urlbar": 3}}
	}}
}`

func TestNew_StatementTimeoutRunsBeforePageInsert(t *testing.T) {
	t.Parallel()

	spy := &txSpy{}
	m := New(
		modkit.Deps{Cfg: config.New(), PG: spy},
		Options{Workers: 1, StmtTimeoutMS: 5000},
	)

	src := &oneShotReader{rec: domain.Record{Key: "c", Raw: []byte(loadDoc)}}
	stats, err := m.Ports().(Ports).Runner.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Rows != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	if len(spy.sqls) != 2 {
		t.Fatalf("sqls = %v", spy.sqls)
	}
	if spy.sqls[0] != "SET LOCAL statement_timeout = 5000" {
		t.Fatalf("first statement = %q", spy.sqls[0])
	}
	if !strings.Contains(spy.sqls[1], "INSERT INTO search_daily_counts") {
		t.Fatalf("second statement = %q", spy.sqls[1])
	}
}

func TestNew_ZeroTimeoutSkipsHook(t *testing.T) {
	t.Parallel()

	spy := &txSpy{}
	m := New(
		modkit.Deps{Cfg: config.New(), PG: spy},
		Options{Workers: 1, StmtTimeoutMS: -1},
	)

	src := &oneShotReader{rec: domain.Record{Key: "c", Raw: []byte(loadDoc)}}
	if _, err := m.Ports().(Ports).Runner.Run(context.Background(), src); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(spy.sqls) != 1 || !strings.Contains(spy.sqls[0], "INSERT INTO") {
		t.Fatalf("sqls = %v", spy.sqls)
	}
}
