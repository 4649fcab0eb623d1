package requests

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/contentflow-backend/internal/domain"
	domainreq "github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
)

type ListFilter struct {
	Statuses    []domainreq.Status
	RequestedBy *uuid.UUID
	AssignedTo  *uuid.UUID
	Limit       int
	Offset      int
}

type ContentRequestRepo interface {
	Create(ctx context.Context, tx *gorm.DB, req *types.ContentRequest) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ContentRequest, error)
	GetByTicket(ctx context.Context, tx *gorm.DB, ticketCode string) (*types.ContentRequest, error)
	List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.ContentRequest, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	HighestTicketCode(ctx context.Context, tx *gorm.DB, prefix string) (string, error)
	Stats(ctx context.Context, tx *gorm.DB) (types.RequestStats, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error)
}

type contentRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRequestRepo(db *gorm.DB, baseLog *logger.Logger) ContentRequestRepo {
	repoLog := baseLog.With("repo", "ContentRequestRepo")
	return &contentRequestRepo{db: db, log: repoLog}
}

func (r *contentRequestRepo) Create(ctx context.Context, tx *gorm.DB, req *types.ContentRequest) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(req).Error
}

func (r *contentRequestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ContentRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.ContentRequest
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *contentRequestRepo) GetByTicket(ctx context.Context, tx *gorm.DB, ticketCode string) (*types.ContentRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.ContentRequest
	if err := transaction.WithContext(ctx).
		Where("ticket_code = ?", strings.ToUpper(strings.TrimSpace(ticketCode))).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// List orders by deadline, then creation, the way the production board reads it.
func (r *contentRequestRepo) List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.ContentRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Model(&types.ContentRequest{})
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.RequestedBy != nil {
		q = q.Where("requested_by = ?", *filter.RequestedBy)
	}
	if filter.AssignedTo != nil {
		id := *filter.AssignedTo
		q = q.Where(
			"assigned_copywriter = ? OR assigned_designer = ? OR assigned_videographer = ? OR assigned_publisher = ?",
			id, id, id, id,
		)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.ContentRequest
	if err := q.
		Order("deadline ASC, created_at ASC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRequestRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).Model(&types.ContentRequest{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// HighestTicketCode returns the highest-numbered ticket issued under prefix,
// or "" when there is none. Longer codes carry more digits, so they sort first.
func (r *contentRequestRepo) HighestTicketCode(ctx context.Context, tx *gorm.DB, prefix string) (string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var codes []string
	if err := transaction.WithContext(ctx).
		Model(&types.ContentRequest{}).
		Where("ticket_code LIKE ?", strings.TrimSpace(prefix)+"-%").
		Order("LENGTH(ticket_code) DESC").
		Order("ticket_code DESC").
		Limit(1).
		Pluck("ticket_code", &codes).Error; err != nil {
		return "", err
	}
	if len(codes) == 0 {
		return "", nil
	}
	return codes[0], nil
}

type groupCount struct {
	GroupKey string
	Total    int64
}

func (r *contentRequestRepo) groupBy(ctx context.Context, tx *gorm.DB, column string) ([]groupCount, error) {
	var rows []groupCount
	err := tx.WithContext(ctx).
		Model(&types.ContentRequest{}).
		Select(column + " AS group_key, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	return rows, err
}

func (r *contentRequestRepo) Stats(ctx context.Context, tx *gorm.DB) (types.RequestStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	stats := types.RequestStats{
		ByStatus:   map[domainreq.Status]int64{},
		ByPriority: map[domainreq.Priority]int64{},
		ByType:     map[domainreq.ContentType]int64{},
	}

	byStatus, err := r.groupBy(ctx, transaction, "status")
	if err != nil {
		return stats, err
	}
	for _, row := range byStatus {
		s := domainreq.Status(row.GroupKey)
		stats.ByStatus[s] = row.Total
		stats.Total += row.Total
		switch s {
		case domainreq.StatusPending:
			stats.Pending += row.Total
		case domainreq.StatusAssigned, domainreq.StatusInProgress, domainreq.StatusReview:
			stats.InProgress += row.Total
		case domainreq.StatusApproved, domainreq.StatusScheduled, domainreq.StatusPublished:
			stats.Completed += row.Total
		}
	}

	byPriority, err := r.groupBy(ctx, transaction, "priority")
	if err != nil {
		return stats, err
	}
	for _, row := range byPriority {
		stats.ByPriority[domainreq.Priority(row.GroupKey)] = row.Total
	}

	byType, err := r.groupBy(ctx, transaction, "content_type")
	if err != nil {
		return stats, err
	}
	for _, row := range byType {
		stats.ByType[domainreq.ContentType(row.GroupKey)] = row.Total
	}
	return stats, nil
}

func (r *contentRequestRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.ContentRequest{})
	return res.RowsAffected, res.Error
}
