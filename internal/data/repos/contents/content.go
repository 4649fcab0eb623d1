package contents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/contentflow-backend/internal/domain"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
)

type ContentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, c *types.Content) error
	// GetByID loads the revision log too when withRevisions is set, ordered by version.
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, withRevisions bool) (*types.Content, error)
	ListByRequest(ctx context.Context, tx *gorm.DB, requestID uuid.UUID) ([]*types.Content, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	repoLog := baseLog.With("repo", "ContentRepo")
	return &contentRepo{db: db, log: repoLog}
}

// Create inserts the row only; revisions are written through RevisionRepo.
func (r *contentRepo) Create(ctx context.Context, tx *gorm.DB, c *types.Content) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *contentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, withRevisions bool) (*types.Content, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx)
	if withRevisions {
		q = q.Preload("Revisions", func(db *gorm.DB) *gorm.DB {
			return db.Order("version ASC")
		})
	}
	var out types.Content
	if err := q.Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *contentRepo) ListByRequest(ctx context.Context, tx *gorm.DB, requestID uuid.UUID) ([]*types.Content, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Content
	if err := transaction.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Content{})
	return res.RowsAffected, res.Error
}
