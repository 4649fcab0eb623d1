package aggregates

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/contentflow-backend/internal/domain/aggregates"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("aggregate validation")
	// ErrInvariant indicates a persisted invariant would break.
	ErrInvariant = errors.New("aggregate invariant violation")
	// ErrConflict indicates a stale lock version or duplicate key.
	ErrConflict = errors.New("aggregate conflict")
	// ErrUnavailable indicates the store could not be reached.
	ErrUnavailable = errors.New("aggregate store unavailable")
)

func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

func InvariantError(msg string) error {
	return errors.Join(ErrInvariant, errors.New(strings.TrimSpace(msg)))
}

func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

func UnavailableError(msg string) error {
	return errors.Join(ErrUnavailable, errors.New(strings.TrimSpace(msg)))
}

// MapError maps store and domain failures into aggregate error codes. Store
// failures nothing else claims are reported as dependency_unavailable.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	case errors.Is(err, ErrInvariant):
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	case errors.Is(err, ErrConflict):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case errors.Is(err, ErrUnavailable):
		return domainagg.Wrap(domainagg.CodeDependencyUnavailable, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn):
		return domainagg.Wrap(domainagg.CodeDependencyUnavailable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return domainagg.Wrap(domainagg.CodeConflict, op, err) // unique_violation
		case "23503", "23502", "22P02":
			return domainagg.Wrap(domainagg.CodeValidation, op, err) // fk / not_null / bad text repr
		case "40001", "40P01":
			return domainagg.Wrap(domainagg.CodeConflict, op, err) // serialization/deadlock
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"),
		strings.Contains(msg, "already exists"):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case strings.Contains(msg, "foreign key constraint failed"),
		strings.Contains(msg, "not null constraint failed"):
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	default:
		return domainagg.Wrap(domainagg.CodeDependencyUnavailable, op, err)
	}
}
