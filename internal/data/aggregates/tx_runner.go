package aggregates

import (
	"context"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/contentflow-backend/internal/domain/aggregates"
	"github.com/yungbote/contentflow-backend/internal/platform/dbctx"
)

// TxRunner is the transaction boundary every aggregate write goes through.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

// InTx commits when fn returns nil and rolls back otherwise. A panic in fn
// also rolls back before it propagates.
func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeDependencyUnavailable, "aggregate.tx", "transaction runner has no database", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
