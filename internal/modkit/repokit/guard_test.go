package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubGuard struct{ err error }

func (s stubGuard) Guard(context.Context) error { return s.err }

func TestMustGuard_PanicsOnError(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic, got none")
		}
		err, ok := r.(error)
		if !ok || !strings.Contains(err.Error(), "dependency guard failed") {
			t.Fatalf("panic = %v", r)
		}
	}()
	MustGuard(context.Background(), stubGuard{err: errors.New("ch: unreachable")})
}

func TestMustGuard_PassesOnHealthyStore(t *testing.T) {
	t.Parallel()

	MustGuard(context.Background(), stubGuard{})
}
