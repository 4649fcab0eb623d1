package contents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/contentflow-backend/internal/domain"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
)

// RevisionRepo is append-only apart from cascading deletes.
type RevisionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, revs []*types.Revision) ([]*types.Revision, error)
	ListByContent(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) ([]*types.Revision, error)
	CountByContent(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) (int64, error)
	DeleteByContentIDs(ctx context.Context, tx *gorm.DB, contentIDs []uuid.UUID) error
}

type revisionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRevisionRepo(db *gorm.DB, baseLog *logger.Logger) RevisionRepo {
	repoLog := baseLog.With("repo", "RevisionRepo")
	return &revisionRepo{db: db, log: repoLog}
}

func (r *revisionRepo) Create(ctx context.Context, tx *gorm.DB, revs []*types.Revision) ([]*types.Revision, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(revs) == 0 {
		return []*types.Revision{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&revs).Error; err != nil {
		return nil, err
	}
	return revs, nil
}

func (r *revisionRepo) ListByContent(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) ([]*types.Revision, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Revision
	if err := transaction.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("version ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *revisionRepo) CountByContent(ctx context.Context, tx *gorm.DB, contentID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.Revision{}).
		Where("content_id = ?", contentID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *revisionRepo) DeleteByContentIDs(ctx context.Context, tx *gorm.DB, contentIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(contentIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("content_id IN ?", contentIDs).
		Delete(&types.Revision{}).Error
}
