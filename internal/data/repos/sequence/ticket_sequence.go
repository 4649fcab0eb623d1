package sequence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/contentflow-backend/internal/domain"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
)

// TicketSequenceRepo hands out monotonically increasing numbers per name.
// Next must run inside the transaction that consumes the number so a
// rollback also gives the number back.
type TicketSequenceRepo interface {
	Next(ctx context.Context, tx *gorm.DB, name string) (int64, error)
	Current(ctx context.Context, tx *gorm.DB, name string) (int64, error)
	EnsureAtLeast(ctx context.Context, tx *gorm.DB, name string, floor int64) error
}

type ticketSequenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTicketSequenceRepo(db *gorm.DB, baseLog *logger.Logger) TicketSequenceRepo {
	repoLog := baseLog.With("repo", "TicketSequenceRepo")
	return &ticketSequenceRepo{db: db, log: repoLog}
}

func (r *ticketSequenceRepo) ensureRow(ctx context.Context, tx *gorm.DB, name string) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&types.TicketSequence{Name: name, Value: 0, UpdatedAt: time.Now().UTC()}).Error
}

// Next increments in place; the row lock taken by the UPDATE serializes
// concurrent allocators until their transactions end.
func (r *ticketSequenceRepo) Next(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := r.ensureRow(ctx, transaction, name); err != nil {
		return 0, err
	}
	if err := transaction.WithContext(ctx).
		Model(&types.TicketSequence{}).
		Where("name = ?", name).
		Updates(map[string]any{
			"value":      gorm.Expr("value + 1"),
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
		return 0, err
	}
	return r.Current(ctx, transaction, name)
}

func (r *ticketSequenceRepo) Current(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var seq types.TicketSequence
	err := transaction.WithContext(ctx).
		Where("name = ?", name).
		Take(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return seq.Value, nil
}

// EnsureAtLeast raises the counter to floor, for databases that already
// hold tickets issued before the sequence existed.
func (r *ticketSequenceRepo) EnsureAtLeast(ctx context.Context, tx *gorm.DB, name string, floor int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := r.ensureRow(ctx, transaction, name); err != nil {
		return err
	}
	return transaction.WithContext(ctx).
		Model(&types.TicketSequence{}).
		Where("name = ? AND value < ?", name, floor).
		Updates(map[string]any{
			"value":      floor,
			"updated_at": time.Now().UTC(),
		}).Error
}
