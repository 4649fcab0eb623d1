package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/contentflow-backend/internal/data/repos"
	domainagg "github.com/yungbote/contentflow-backend/internal/domain/aggregates"
	"github.com/yungbote/contentflow-backend/internal/domain/contents"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/platform/dbctx"
)

const (
	tableContentRequest = "content_request"
	tableContent        = "content"
)

type WorkflowAggregateDeps struct {
	Base      BaseDeps
	Requests  repos.ContentRequestRepo
	Contents  repos.ContentRepo
	Revisions repos.RevisionRepo
	Tickets   TicketAllocator
}

type workflowAggregate struct {
	deps WorkflowAggregateDeps
}

var _ domainagg.WorkflowAggregate = (*workflowAggregate)(nil)

func NewWorkflowAggregate(deps WorkflowAggregateDeps) domainagg.WorkflowAggregate {
	deps.Base = deps.Base.withDefaults()
	deps.Base.Log = deps.Base.Log.With("aggregate", "WorkflowAggregate")
	return &workflowAggregate{deps: deps}
}

func (a *workflowAggregate) Contract() domainagg.Contract {
	return domainagg.WorkflowAggregateContract
}

func (a *workflowAggregate) CreateRequest(ctx context.Context, in domainagg.CreateRequestInput) (domainagg.CreateRequestResult, error) {
	const op = "workflow.create_request"
	var out domainagg.CreateRequestResult
	if in.Request == nil {
		return out, MapError(op, ValidationError("request is required"))
	}
	if a.deps.Tickets == nil {
		return out, MapError(op, UnavailableError("no ticket allocator configured"))
	}
	req := in.Request
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		code, err := a.deps.Tickets.Allocate(dbc)
		if err != nil {
			return err
		}
		req.TicketCode = code
		if req.LockVersion == 0 {
			req.LockVersion = 1
		}
		if err := a.deps.Requests.Create(dbc.Ctx, dbc.Tx, req); err != nil {
			return err
		}
		out = domainagg.CreateRequestResult{RequestID: req.ID, TicketCode: code}
		return nil
	})
	if err != nil {
		req.TicketCode = ""
		return domainagg.CreateRequestResult{}, err
	}
	return out, nil
}

func (a *workflowAggregate) CommitRequest(ctx context.Context, in domainagg.CommitRequestInput) error {
	const op = "workflow.commit_request"
	if in.Request == nil {
		return MapError(op, ValidationError("request is required"))
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		return a.updateRequest(dbc, in.Request, in.ExpectedLockVersion)
	})
}

func (a *workflowAggregate) CommitContent(ctx context.Context, in domainagg.CommitContentInput) error {
	const op = "workflow.commit_content"
	c := in.Content
	if c == nil {
		return MapError(op, ValidationError("content is required"))
	}
	if in.Create && in.NewRevision != nil {
		return MapError(op, ValidationError("a new content item starts without revisions"))
	}
	if in.NewRevision != nil && in.NewRevision.Version+1 != c.Version {
		return MapError(op, InvariantError("revision version must precede the content version"))
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if in.Create {
			if c.Version != 1 {
				return InvariantError("a new content item starts at version 1")
			}
			if err := a.deps.Contents.Create(dbc.Ctx, dbc.Tx, c); err != nil {
				return err
			}
		} else {
			ok, err := a.deps.Base.CASGuard.UpdateByLockVersion(dbc, tableContent, c.ID, in.ExpectedLockVersion, a.contentColumns(c))
			if err != nil {
				return err
			}
			if !ok {
				return a.staleOrMissing(dbc, tableContent, c.ID)
			}
		}

		if in.NewRevision != nil {
			rev := *in.NewRevision
			rev.ContentID = c.ID
			if _, err := a.deps.Revisions.Create(dbc.Ctx, dbc.Tx, []*contents.Revision{&rev}); err != nil {
				return err
			}
		}
		n, err := a.deps.Revisions.CountByContent(dbc.Ctx, dbc.Tx, c.ID)
		if err != nil {
			return err
		}
		if int(n)+1 != c.Version {
			return InvariantError("content version is out of step with its revision log")
		}

		if in.Request != nil {
			if in.Request.ID != c.RequestID {
				return ValidationError("content and request do not belong together")
			}
			return a.updateRequest(dbc, in.Request, in.ExpectedRequestLockVersion)
		}
		return nil
	})
}

func (a *workflowAggregate) DeleteContent(ctx context.Context, in domainagg.DeleteContentInput) (domainagg.DeleteResult, error) {
	const op = "workflow.delete_content"
	var out domainagg.DeleteResult
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		c, err := a.deps.Contents.GetByID(dbc.Ctx, dbc.Tx, in.ContentID, false)
		if err != nil {
			return err
		}
		ids := []uuid.UUID{c.ID}
		if err := a.deps.Revisions.DeleteByContentIDs(dbc.Ctx, dbc.Tx, ids); err != nil {
			return err
		}
		if _, err := a.deps.Contents.DeleteByIDs(dbc.Ctx, dbc.Tx, ids); err != nil {
			return err
		}
		out = domainagg.DeleteResult{ContentIDs: ids, Files: append([]contents.FileAttachment(nil), c.Files...)}
		return nil
	})
	if err != nil {
		return domainagg.DeleteResult{}, err
	}
	return out, nil
}

func (a *workflowAggregate) DeleteRequest(ctx context.Context, in domainagg.DeleteRequestInput) (domainagg.DeleteResult, error) {
	const op = "workflow.delete_request"
	var out domainagg.DeleteResult
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		n, err := a.deps.Requests.Delete(dbc.Ctx, dbc.Tx, in.RequestID)
		if err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		items, err := a.deps.Contents.ListByRequest(dbc.Ctx, dbc.Tx, in.RequestID)
		if err != nil {
			return err
		}
		res := domainagg.DeleteResult{ContentIDs: make([]uuid.UUID, 0, len(items))}
		for _, c := range items {
			res.ContentIDs = append(res.ContentIDs, c.ID)
			res.Files = append(res.Files, c.Files...)
		}
		if err := a.deps.Revisions.DeleteByContentIDs(dbc.Ctx, dbc.Tx, res.ContentIDs); err != nil {
			return err
		}
		if _, err := a.deps.Contents.DeleteByIDs(dbc.Ctx, dbc.Tx, res.ContentIDs); err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return domainagg.DeleteResult{}, err
	}
	return out, nil
}

func (a *workflowAggregate) updateRequest(dbc dbctx.Context, req *requests.ContentRequest, expected int) error {
	ok, err := a.deps.Base.CASGuard.UpdateByLockVersion(dbc, tableContentRequest, req.ID, expected, a.requestColumns(req))
	if err != nil {
		return err
	}
	if !ok {
		return a.staleOrMissing(dbc, tableContentRequest, req.ID)
	}
	return nil
}

// staleOrMissing tells a lost compare-and-set apart from a deleted row.
func (a *workflowAggregate) staleOrMissing(dbc dbctx.Context, table string, id uuid.UUID) error {
	db, err := a.deps.Base.CASGuard.baseDB(dbc)
	if err != nil {
		return err
	}
	var n int64
	if err := db.Table(table).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return RequireCASSuccess(false, table+" was modified concurrently")
}

func (a *workflowAggregate) now() time.Time { return a.deps.Base.Now() }

func (a *workflowAggregate) requestColumns(r *requests.ContentRequest) map[string]any {
	return map[string]any{
		"title":                 r.Title,
		"content_type":          r.ContentType,
		"deadline":              r.Deadline,
		"priority":              r.Priority,
		"purpose":               r.Purpose,
		"description":           r.Description,
		"target_audience":       r.TargetAudience,
		"key_points":            r.KeyPoints,
		"publish_platforms":     r.PublishPlatforms,
		"reference_links":       r.References,
		"notes":                 r.Notes,
		"status":                r.Status,
		"assigned_copywriter":   r.Assignment.Copywriter,
		"assigned_designer":     r.Assignment.Designer,
		"assigned_videographer": r.Assignment.Videographer,
		"assigned_publisher":    r.Assignment.Publisher,
		"validated_by":          r.ValidatedBy,
		"validated_at":          r.ValidatedAt,
		"rejection_reason":      r.RejectionReason,
		"lock_version":          r.LockVersion,
		"updated_at":            a.now(),
	}
}

func (a *workflowAggregate) contentColumns(c *contents.Content) map[string]any {
	return map[string]any{
		"title":        c.Title,
		"content_type": c.ContentType,
		"caption":      c.Caption,
		"hashtags":     c.Hashtags,
		"files":        c.Files,
		"version":      c.Version,
		"status":       c.Status,
		"reviewed_by":  c.ReviewedBy,
		"review_notes": c.ReviewNotes,
		"approved_by":  c.ApprovedBy,
		"approved_at":  c.ApprovedAt,
		"lock_version": c.LockVersion,
		"updated_at":   a.now(),
	}
}
