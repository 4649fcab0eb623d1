package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/contentflow-backend/internal/data/aggregates"
	"github.com/yungbote/contentflow-backend/internal/platform/dbctx"
)

// FaultyTxRunner wraps a real runner and fails the transaction at a chosen
// point. A failure after the body returns the error from inside the wrapped
// transaction, so every write the body made is rolled back.
type FaultyTxRunner struct {
	Inner aggregates.TxRunner

	FailBegin     error
	FailAfterBody error

	mu       sync.Mutex
	calls    int
	bodyRuns int
}

var _ aggregates.TxRunner = (*FaultyTxRunner)(nil)

func (r *FaultyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.calls++
	failBegin, failAfter := r.FailBegin, r.FailAfterBody
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	return r.Inner.InTx(ctx, func(dbc dbctx.Context) error {
		r.mu.Lock()
		r.bodyRuns++
		r.mu.Unlock()
		if err := fn(dbc); err != nil {
			return err
		}
		return failAfter
	})
}

// Counts reports how many transactions were attempted and how many bodies ran.
func (r *FaultyTxRunner) Counts() (calls, bodyRuns int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls, r.bodyRuns
}
