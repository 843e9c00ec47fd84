package repokit

import (
	"context"
	"errors"
	"testing"

	"churnscope/internal/platform/store"
)

// hookQ records the SQL it sees inside a transaction
type hookQ struct {
	sqls []string
}

func (q *hookQ) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	q.sqls = append(q.sqls, sql)
	return nil, nil
}

func (q *hookQ) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, errors.New("not implemented")
}

func (q *hookQ) QueryRow(context.Context, string, ...any) store.Row { return nil }

// hookTx runs fn against its own queryer
type hookTx struct {
	q       *hookQ
	txCalls int
}

func (f *hookTx) Tx(_ context.Context, fn func(q Queryer) error) error {
	f.txCalls++
	return fn(f.q)
}

func (f *hookTx) Exec(ctx context.Context, sql string, args ...any) (store.CommandTag, error) {
	return f.q.Exec(ctx, sql, args...)
}

func (f *hookTx) Query(ctx context.Context, sql string, args ...any) (store.Rows, error) {
	return f.q.Query(ctx, sql, args...)
}

func (f *hookTx) QueryRow(ctx context.Context, sql string, args ...any) store.Row {
	return f.q.QueryRow(ctx, sql, args...)
}

func TestWithBeginHooks_HooksRunBeforeFnInSameTx(t *testing.T) {
	t.Parallel()

	inner := &hookTx{q: &hookQ{}}
	timeout := func(ctx context.Context, q Queryer) error {
		_, err := q.Exec(ctx, "SET LOCAL statement_timeout = 30000")
		return err
	}

	runner := WithBeginHooks(inner, timeout)
	err := runner.Tx(context.Background(), func(q Queryer) error {
		_, err := q.Exec(context.Background(), "INSERT INTO t VALUES ($1)", 1)
		return err
	})
	if err != nil {
		t.Fatalf("Tx: %v", err)
	}
	if inner.txCalls != 1 {
		t.Fatalf("txCalls = %d", inner.txCalls)
	}
	want := []string{"SET LOCAL statement_timeout = 30000", "INSERT INTO t VALUES ($1)"}
	if len(inner.q.sqls) != 2 || inner.q.sqls[0] != want[0] || inner.q.sqls[1] != want[1] {
		t.Fatalf("sqls = %v", inner.q.sqls)
	}
}

func TestWithBeginHooks_HookErrorAbortsFn(t *testing.T) {
	t.Parallel()

	inner := &hookTx{q: &hookQ{}}
	boom := errors.New("boom")
	runner := WithBeginHooks(inner, func(context.Context, Queryer) error { return boom })

	fnRan := false
	err := runner.Tx(context.Background(), func(Queryer) error { fnRan = true; return nil })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if fnRan {
		t.Fatalf("fn must not run when a hook fails")
	}
}

func TestWithBeginHooks_NonTxCallsPassThrough(t *testing.T) {
	t.Parallel()

	inner := &hookTx{q: &hookQ{}}
	runner := WithBeginHooks(inner, func(ctx context.Context, q Queryer) error {
		_, err := q.Exec(ctx, "SET LOCAL statement_timeout = 1")
		return err
	})

	// hooks only fire inside Tx
	if _, err := runner.Exec(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if len(inner.q.sqls) != 1 || inner.q.sqls[0] != "SELECT 1" {
		t.Fatalf("sqls = %v", inner.q.sqls)
	}
}
