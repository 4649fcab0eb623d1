package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/contentflow-backend/internal/platform/dbctx"
)

type recordingRunner struct {
	committed  int
	rolledBack int
}

func (r *recordingRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if err := fn(dbctx.Context{Ctx: ctx}); err != nil {
		r.rolledBack++
		return err
	}
	r.committed++
	return nil
}

func TestFaultyTxRunnerPassesThrough(t *testing.T) {
	inner := &recordingRunner{}
	r := &FaultyTxRunner{Inner: inner}
	if err := r.InTx(context.Background(), func(dbctx.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if inner.committed != 1 || inner.rolledBack != 0 {
		t.Fatalf("inner counters commit=%d rollback=%d", inner.committed, inner.rolledBack)
	}
}

func TestFaultyTxRunnerFailAfterBodyRollsBackInner(t *testing.T) {
	inner := &recordingRunner{}
	commitErr := errors.New("commit lost")
	r := &FaultyTxRunner{Inner: inner, FailAfterBody: commitErr}
	ran := false
	err := r.InTx(context.Background(), func(dbctx.Context) error {
		ran = true
		return nil
	})
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit err, got %v", err)
	}
	if !ran {
		t.Fatalf("expected body to run")
	}
	if inner.committed != 0 || inner.rolledBack != 1 {
		t.Fatalf("inner counters commit=%d rollback=%d", inner.committed, inner.rolledBack)
	}
}

func TestFaultyTxRunnerFailBeginSkipsBody(t *testing.T) {
	inner := &recordingRunner{}
	beginErr := errors.New("pool exhausted")
	r := &FaultyTxRunner{Inner: inner, FailBegin: beginErr}
	err := r.InTx(context.Background(), func(dbctx.Context) error {
		t.Fatalf("body must not run")
		return nil
	})
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected begin err, got %v", err)
	}
	if calls, bodies := r.Counts(); calls != 1 || bodies != 0 {
		t.Fatalf("counts calls=%d bodies=%d", calls, bodies)
	}
}
