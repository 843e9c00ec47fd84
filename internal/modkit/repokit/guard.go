package repokit

import (
	"context"
	"fmt"
)

// guarder is the slice of the store facade startup checks need
type guarder interface {
	Guard(context.Context) error
}

// MustGuard verifies every configured backend and panics on any failure.
// Batch commands call this right after opening the store so a dead
// warehouse aborts the run before any records are read
func MustGuard(ctx context.Context, st guarder) {
	if err := st.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
