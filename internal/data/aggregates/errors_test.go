package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/contentflow-backend/internal/domain/aggregates"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PostgresCodes(t *testing.T) {
	cases := map[string]domainagg.ErrorCode{
		"23505": domainagg.CodeConflict,
		"23503": domainagg.CodeValidation,
		"08006": domainagg.CodeDependencyUnavailable,
	}
	for code, want := range cases {
		err := MapError("op", &pgconn.PgError{Code: code, Message: "x"})
		if !domainagg.IsCode(err, want) {
			t.Fatalf("pg %s: want %s got %q", code, want, domainagg.CodeOf(err))
		}
	}
}

func TestMapError_SQLiteUniqueMessage(t *testing.T) {
	err := MapError("op", errors.New("UNIQUE constraint failed: content_request.ticket_code"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q", domainagg.CodeOf(err))
	}
}

func TestMapError_UnclassifiedIsUnavailable(t *testing.T) {
	for _, in := range []error{context.DeadlineExceeded, errors.New("dial tcp: connection refused")} {
		err := MapError("op", in)
		if !domainagg.IsCode(err, domainagg.CodeDependencyUnavailable) {
			t.Fatalf("%v: expected dependency_unavailable, got %q", in, domainagg.CodeOf(err))
		}
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeInvalidTransition, "op", "nope", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}
