package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/contentflow-backend/internal/data/aggregates"
	"github.com/yungbote/contentflow-backend/internal/data/repos"
	types "github.com/yungbote/contentflow-backend/internal/domain"
	domainagg "github.com/yungbote/contentflow-backend/internal/domain/aggregates"
	"github.com/yungbote/contentflow-backend/internal/domain/contents"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/observability"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
	"github.com/yungbote/contentflow-backend/internal/platform/storage"
	"github.com/yungbote/contentflow-backend/internal/realtime"
	"github.com/yungbote/contentflow-backend/internal/workflow"
)

// Outcome reports what happened after a command's state change committed.
// Fan-out and file cleanup never fail a committed command; their problems
// surface as warnings.
type Outcome struct {
	Notified int      `json:"notified"`
	Warnings []string `json:"warnings,omitempty"`
}

func (o *Outcome) warn(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

type RequestResult struct {
	Request *types.ContentRequest
	Outcome
}

type ContentResult struct {
	Content *types.Content
	Request *types.ContentRequest
	Outcome
}

type DeleteResult struct {
	ContentIDs []uuid.UUID
	Outcome
}

type WorkflowService interface {
	SubmitRequest(ctx context.Context, actor types.User, brief requests.Brief) (RequestResult, error)
	UpdateRequest(ctx context.Context, actor types.User, id uuid.UUID, patch requests.BriefPatch) (RequestResult, error)
	ValidateRequest(ctx context.Context, actor types.User, id uuid.UUID) (RequestResult, error)
	AssignRequest(ctx context.Context, actor types.User, id uuid.UUID, team requests.Assignment) (RequestResult, error)
	ScheduleRequest(ctx context.Context, actor types.User, id uuid.UUID) (RequestResult, error)
	PublishRequest(ctx context.Context, actor types.User, id uuid.UUID) (RequestResult, error)
	SetRequestStatus(ctx context.Context, actor types.User, id uuid.UUID, target requests.Status) (RequestResult, error)
	ForceRequestStatus(ctx context.Context, actor types.User, id uuid.UUID, target requests.Status, reason string) (RequestResult, error)
	DeleteRequest(ctx context.Context, actor types.User, id uuid.UUID) (DeleteResult, error)

	CreateContent(ctx context.Context, actor types.User, requestID uuid.UUID, draft contents.Draft) (ContentResult, error)
	EditContent(ctx context.Context, actor types.User, contentID uuid.UUID, edits contents.Edits) (ContentResult, error)
	AttachFiles(ctx context.Context, actor types.User, contentID uuid.UUID, files []contents.FileAttachment) (ContentResult, error)
	SubmitContentForReview(ctx context.Context, actor types.User, contentID uuid.UUID) (ContentResult, error)
	ApproveContent(ctx context.Context, actor types.User, contentID uuid.UUID, notes string) (ContentResult, error)
	RejectContent(ctx context.Context, actor types.User, contentID uuid.UUID, notes string) (ContentResult, error)
	RequestContentRevision(ctx context.Context, actor types.User, contentID uuid.UUID, notes string) (ContentResult, error)
	DeleteContent(ctx context.Context, actor types.User, contentID uuid.UUID) (DeleteResult, error)

	GetRequest(ctx context.Context, actor types.User, id uuid.UUID) (*types.ContentRequest, error)
	GetRequestByTicket(ctx context.Context, actor types.User, ticket string) (*types.ContentRequest, error)
	RequestStats(ctx context.Context, actor types.User) (types.RequestStats, error)
	GetContent(ctx context.Context, actor types.User, id uuid.UUID) (*types.Content, error)
	ListContentsForRequest(ctx context.Context, actor types.User, requestID uuid.UUID) ([]*types.Content, error)
	VersionHistory(ctx context.Context, actor types.User, contentID uuid.UUID) (types.VersionHistory, error)
}

type WorkflowServiceDeps struct {
	Log           *logger.Logger
	Aggregate     domainagg.WorkflowAggregate
	Requests      repos.ContentRequestRepo
	Contents      repos.ContentRepo
	Directory     UserDirectory
	Notifications NotificationService
	Files         storage.Releaser
	Emitter       SSEEmitter
	Metrics       *observability.Metrics
	Now           func() time.Time
}

type workflowService struct {
	log   *logger.Logger
	agg   domainagg.WorkflowAggregate
	reqs  repos.ContentRequestRepo
	cnts  repos.ContentRepo
	dir   UserDirectory
	notif NotificationService
	files storage.Releaser
	emit  SSEEmitter
	m     *observability.Metrics
	now   func() time.Time
}

func NewWorkflowService(deps WorkflowServiceDeps) WorkflowService {
	s := &workflowService{
		log:   deps.Log.With("service", "WorkflowService"),
		agg:   deps.Aggregate,
		reqs:  deps.Requests,
		cnts:  deps.Contents,
		dir:   deps.Directory,
		notif: deps.Notifications,
		files: deps.Files,
		emit:  deps.Emitter,
		m:     deps.Metrics,
		now:   deps.Now,
	}
	if s.files == nil {
		s.files = storage.Nop{}
	}
	if s.emit == nil {
		s.emit = nopEmitter{}
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// run wraps one command in a span and records its latency under the error
// code it ended with.
func (s *workflowService) run(ctx context.Context, command string, fn func(ctx context.Context) error) error {
	ctx, span := observability.StartWorkflowSpan(ctx, command)
	start := time.Now()
	err := fn(ctx)
	status := "success"
	if err != nil {
		status = string(domainagg.CodeOf(err))
		if status == "" {
			status = string(domainagg.CodeInternal)
		}
	}
	s.m.ObserveWorkflowCommand(command, status, time.Since(start))
	observability.EndSpan(span, err)
	return err
}

func (s *workflowService) SubmitRequest(ctx context.Context, actor types.User, brief requests.Brief) (RequestResult, error) {
	var res RequestResult
	err := s.run(ctx, "submit_request", func(ctx context.Context) error {
		out, err := workflow.SubmitRequest(actor, brief, s.now())
		if err != nil {
			return err
		}
		created, err := s.agg.CreateRequest(ctx, domainagg.CreateRequestInput{Request: out.Request})
		if err != nil {
			return err
		}
		for i := range out.Effects {
			out.Effects[i].Data.Ticket = created.TicketCode
		}
		s.log.Info("content request submitted", "request_id", created.RequestID, "ticket", created.TicketCode)
		res = RequestResult{Request: out.Request}
		res.Outcome = s.afterRequest(ctx, out.Request, out.Effects)
		return nil
	})
	return res, err
}

func (s *workflowService) UpdateRequest(ctx context.Context, actor types.User, id uuid.UUID, patch requests.BriefPatch) (RequestResult, error) {
	return s.requestCommand(ctx, "update_request", id, func(req *types.ContentRequest) (workflow.RequestOutcome, error) {
		return workflow.UpdateRequest(actor, req, patch, s.now())
	})
}

func (s *workflowService) ValidateRequest(ctx context.Context, actor types.User, id uuid.UUID) (RequestResult, error) {
	return s.requestCommand(ctx, "validate_request", id, func(req *types.ContentRequest) (workflow.RequestOutcome, error) {
		return workflow.ValidateRequest(actor, req, s.now())
	})
}

func (s *workflowService) AssignRequest(ctx context.Context, actor types.User, id uuid.UUID, team requests.Assignment) (RequestResult, error) {
	return s.requestCommand(ctx, "assign_request", id, func(req *types.ContentRequest) (workflow.RequestOutcome, error) {
		out, err := workflow.AssignRequest(actor, req, team, s.now())
		if err != nil {
			return out, err
		}
		if err := s.dir.RequireActive(ctx, team.Members()); err != nil {
			return workflow.RequestOutcome{}, err
		}
		return out, nil
	})
}

func (s *workflowService) ScheduleRequest(ctx context.Context, actor types.User, id uuid.UUID) (RequestResult, error) {
	return s.requestCommand(ctx, "schedule_request", id, func(req *types.ContentRequest) (workflow.RequestOutcome, error) {
		return workflow.ScheduleRequest(actor, req, s.now())
	})
}

func (s *workflowService) PublishRequest(ctx context.Context, actor types.User, id uuid.UUID) (RequestResult, error) {
	return s.requestCommand(ctx, "publish_request", id, func(req *types.ContentRequest) (workflow.RequestOutcome, error) {
		return workflow.PublishRequest(actor, req, s.now())
	})
}

func (s *workflowService) SetRequestStatus(ctx context.Context, actor types.User, id uuid.UUID, target requests.Status) (RequestResult, error) {
	return s.requestCommand(ctx, "set_request_status", id, func(req *types.ContentRequest) (workflow.RequestOutcome, error) {
		return workflow.ChangeRequestStatus(actor, req, target, s.now())
	})
}

func (s *workflowService) ForceRequestStatus(ctx context.Context, actor types.User, id uuid.UUID, target requests.Status, reason string) (RequestResult, error) {
	return s.requestCommand(ctx, "force_request_status", id, func(req *types.ContentRequest) (workflow.RequestOutcome, error) {
		out, err := workflow.ForceRequestStatus(actor, req, target, reason, s.now())
		if err != nil {
			return out, err
		}
		s.log.Warn("request status forced",
			"request_id", req.ID,
			"ticket", req.TicketCode,
			"from", req.Status,
			"to", target,
			"actor_id", actor.ID,
			"reason", reason,
		)
		return out, nil
	})
}

func (s *workflowService) requestCommand(
	ctx context.Context,
	command string,
	id uuid.UUID,
	decide func(req *types.ContentRequest) (workflow.RequestOutcome, error),
) (RequestResult, error) {
	var res RequestResult
	err := s.run(ctx, command, func(ctx context.Context) error {
		req, err := s.loadRequest(ctx, "workflow."+command, id)
		if err != nil {
			return err
		}
		out, err := decide(req)
		if err != nil {
			return err
		}
		if err := s.agg.CommitRequest(ctx, domainagg.CommitRequestInput{
			Request:             out.Request,
			ExpectedLockVersion: out.ExpectedLockVersion,
		}); err != nil {
			return err
		}
		res = RequestResult{Request: out.Request}
		res.Outcome = s.afterRequest(ctx, out.Request, out.Effects)
		return nil
	})
	return res, err
}

func (s *workflowService) DeleteRequest(ctx context.Context, actor types.User, id uuid.UUID) (DeleteResult, error) {
	var res DeleteResult
	err := s.run(ctx, "delete_request", func(ctx context.Context) error {
		req, err := s.loadRequest(ctx, "workflow.delete_request", id)
		if err != nil {
			return err
		}
		if err := workflow.DeleteRequest(actor, req); err != nil {
			return err
		}
		deleted, err := s.agg.DeleteRequest(ctx, domainagg.DeleteRequestInput{RequestID: id})
		if err != nil {
			return err
		}
		res.ContentIDs = deleted.ContentIDs
		s.release(ctx, &res.Outcome, deleted.Files)
		return nil
	})
	return res, err
}

func (s *workflowService) CreateContent(ctx context.Context, actor types.User, requestID uuid.UUID, draft contents.Draft) (ContentResult, error) {
	var res ContentResult
	err := s.run(ctx, "create_content", func(ctx context.Context) error {
		req, err := s.loadRequest(ctx, "workflow.create_content", requestID)
		if err != nil {
			return err
		}
		out, err := workflow.CreateContent(actor, req, draft, s.now())
		if err != nil {
			return err
		}
		res, err = s.commitContent(ctx, req, out)
		return err
	})
	return res, err
}

func (s *workflowService) EditContent(ctx context.Context, actor types.User, contentID uuid.UUID, edits contents.Edits) (ContentResult, error) {
	return s.contentCommand(ctx, "edit_content", contentID, func(ctx context.Context, req *types.ContentRequest, c *types.Content) (workflow.ContentOutcome, error) {
		return workflow.EditContent(actor, req, c, edits, s.now())
	})
}

func (s *workflowService) AttachFiles(ctx context.Context, actor types.User, contentID uuid.UUID, files []contents.FileAttachment) (ContentResult, error) {
	return s.contentCommand(ctx, "attach_files", contentID, func(ctx context.Context, req *types.ContentRequest, c *types.Content) (workflow.ContentOutcome, error) {
		return workflow.AttachFiles(actor, req, c, files, s.now())
	})
}

func (s *workflowService) SubmitContentForReview(ctx context.Context, actor types.User, contentID uuid.UUID) (ContentResult, error) {
	return s.contentCommand(ctx, "submit_content", contentID, func(ctx context.Context, req *types.ContentRequest, c *types.Content) (workflow.ContentOutcome, error) {
		return workflow.SubmitContent(actor, req, c, s.now())
	})
}

func (s *workflowService) ApproveContent(ctx context.Context, actor types.User, contentID uuid.UUID, notes string) (ContentResult, error) {
	return s.contentCommand(ctx, "approve_content", contentID, func(ctx context.Context, req *types.ContentRequest, c *types.Content) (workflow.ContentOutcome, error) {
		siblings, err := s.cnts.ListByRequest(ctx, nil, req.ID)
		if err != nil {
			return workflow.ContentOutcome{}, aggregates.MapError("workflow.approve_content", err)
		}
		return workflow.ApproveContent(actor, req, c, siblings, notes, s.now())
	})
}

func (s *workflowService) RejectContent(ctx context.Context, actor types.User, contentID uuid.UUID, notes string) (ContentResult, error) {
	return s.contentCommand(ctx, "reject_content", contentID, func(ctx context.Context, req *types.ContentRequest, c *types.Content) (workflow.ContentOutcome, error) {
		return workflow.RejectContent(actor, req, c, notes, s.now())
	})
}

func (s *workflowService) RequestContentRevision(ctx context.Context, actor types.User, contentID uuid.UUID, notes string) (ContentResult, error) {
	return s.contentCommand(ctx, "request_revision", contentID, func(ctx context.Context, req *types.ContentRequest, c *types.Content) (workflow.ContentOutcome, error) {
		return workflow.RequestRevision(actor, req, c, notes, s.now())
	})
}

func (s *workflowService) contentCommand(
	ctx context.Context,
	command string,
	contentID uuid.UUID,
	decide func(ctx context.Context, req *types.ContentRequest, c *types.Content) (workflow.ContentOutcome, error),
) (ContentResult, error) {
	var res ContentResult
	err := s.run(ctx, command, func(ctx context.Context) error {
		op := "workflow." + command
		c, err := s.loadContent(ctx, op, contentID, true)
		if err != nil {
			return err
		}
		req, err := s.loadRequest(ctx, op, c.RequestID)
		if err != nil {
			return err
		}
		out, err := decide(ctx, req, c)
		if err != nil {
			return err
		}
		res, err = s.commitContent(ctx, req, out)
		return err
	})
	return res, err
}

func (s *workflowService) commitContent(ctx context.Context, req *types.ContentRequest, out workflow.ContentOutcome) (ContentResult, error) {
	if err := s.agg.CommitContent(ctx, domainagg.CommitContentInput{
		Content:                    out.Content,
		Create:                     out.Created,
		ExpectedLockVersion:        out.ExpectedLockVersion,
		NewRevision:                out.Revision,
		Request:                    out.Request,
		ExpectedRequestLockVersion: out.ExpectedRequestLockVersion,
	}); err != nil {
		return ContentResult{}, err
	}
	current := req
	if out.Request != nil {
		current = out.Request
	}
	res := ContentResult{Content: out.Content, Request: current}
	s.release(ctx, &res.Outcome, out.ReleasedFiles)
	s.announce(ctx, current, realtime.SSEEventContentUpdated, out.Content)
	s.fanOut(ctx, &res.Outcome, current, out.Effects)
	return res, nil
}

func (s *workflowService) DeleteContent(ctx context.Context, actor types.User, contentID uuid.UUID) (DeleteResult, error) {
	var res DeleteResult
	err := s.run(ctx, "delete_content", func(ctx context.Context) error {
		op := "workflow.delete_content"
		c, err := s.loadContent(ctx, op, contentID, false)
		if err != nil {
			return err
		}
		req, err := s.loadRequest(ctx, op, c.RequestID)
		if err != nil {
			return err
		}
		if err := workflow.DeleteContent(actor, req); err != nil {
			return err
		}
		deleted, err := s.agg.DeleteContent(ctx, domainagg.DeleteContentInput{ContentID: contentID})
		if err != nil {
			return err
		}
		res.ContentIDs = deleted.ContentIDs
		s.release(ctx, &res.Outcome, deleted.Files)
		return nil
	})
	return res, err
}

func (s *workflowService) GetRequest(ctx context.Context, actor types.User, id uuid.UUID) (*types.ContentRequest, error) {
	const op = "workflow.GetRequest"
	req, err := s.loadRequest(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.Authorize(op, actor, workflow.ActionView, workflow.SubjectOf(req)); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *workflowService) GetRequestByTicket(ctx context.Context, actor types.User, ticket string) (*types.ContentRequest, error) {
	const op = "workflow.GetRequestByTicket"
	req, err := s.reqs.GetByTicket(ctx, nil, ticket)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if err := workflow.Authorize(op, actor, workflow.ActionView, workflow.SubjectOf(req)); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *workflowService) RequestStats(ctx context.Context, actor types.User) (types.RequestStats, error) {
	const op = "workflow.RequestStats"
	if err := workflow.Authorize(op, actor, workflow.ActionViewStats, workflow.OwnedBy(actor.ID)); err != nil {
		return types.RequestStats{}, err
	}
	stats, err := s.reqs.Stats(ctx, nil)
	if err != nil {
		return types.RequestStats{}, aggregates.MapError(op, err)
	}
	return stats, nil
}

func (s *workflowService) GetContent(ctx context.Context, actor types.User, id uuid.UUID) (*types.Content, error) {
	const op = "workflow.GetContent"
	c, err := s.loadContent(ctx, op, id, false)
	if err != nil {
		return nil, err
	}
	if err := workflow.Authorize(op, actor, workflow.ActionView, workflow.OwnedBy(c.CreatedBy)); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *workflowService) ListContentsForRequest(ctx context.Context, actor types.User, requestID uuid.UUID) ([]*types.Content, error) {
	const op = "workflow.ListContentsForRequest"
	req, err := s.loadRequest(ctx, op, requestID)
	if err != nil {
		return nil, err
	}
	if err := workflow.Authorize(op, actor, workflow.ActionView, workflow.SubjectOf(req)); err != nil {
		return nil, err
	}
	list, err := s.cnts.ListByRequest(ctx, nil, requestID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return list, nil
}

func (s *workflowService) VersionHistory(ctx context.Context, actor types.User, contentID uuid.UUID) (types.VersionHistory, error) {
	const op = "workflow.VersionHistory"
	c, err := s.loadContent(ctx, op, contentID, true)
	if err != nil {
		return types.VersionHistory{}, err
	}
	if err := workflow.Authorize(op, actor, workflow.ActionView, workflow.OwnedBy(c.CreatedBy)); err != nil {
		return types.VersionHistory{}, err
	}
	if !workflow.VersionConsistent(c) {
		s.log.Error("revision log out of step with version", "content_id", c.ID, "version", c.Version, "revisions", len(c.Revisions))
		return types.VersionHistory{}, domainagg.NewError(domainagg.CodeInternal, op, "revision log is inconsistent", nil)
	}
	history := c.Revisions
	if history == nil {
		history = []contents.Revision{}
	}
	return types.VersionHistory{
		ContentID:      c.ID,
		Title:          c.Title,
		CurrentVersion: c.Version,
		History:        history,
	}, nil
}

func (s *workflowService) loadRequest(ctx context.Context, op string, id uuid.UUID) (*types.ContentRequest, error) {
	if id == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "request id is required", nil)
	}
	req, err := s.reqs.GetByID(ctx, nil, id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return req, nil
}

func (s *workflowService) loadContent(ctx context.Context, op string, id uuid.UUID, withRevisions bool) (*types.Content, error) {
	if id == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "content id is required", nil)
	}
	c, err := s.cnts.GetByID(ctx, nil, id, withRevisions)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return c, nil
}

func (s *workflowService) afterRequest(ctx context.Context, req *types.ContentRequest, effects []workflow.NotifyEffect) Outcome {
	var out Outcome
	s.announce(ctx, req, realtime.SSEEventRequestUpdated, req)
	s.fanOut(ctx, &out, req, effects)
	return out
}

func (s *workflowService) fanOut(ctx context.Context, out *Outcome, req *types.ContentRequest, effects []workflow.NotifyEffect) {
	for _, e := range effects {
		ids, static := workflow.StaticRecipients(e.Audience, req)
		if !static {
			var err error
			ids, err = s.dir.ElevatedUserIDs(ctx)
			if err != nil {
				s.m.IncFanoutFailure(string(e.Type), "directory")
				s.log.Warn("notification recipients unavailable", "error", err, "event_key", e.EventKey)
				out.warn("notification %s not sent: recipients unavailable", e.Type)
				continue
			}
		}
		n, err := s.notif.Notify(ctx, e, ids)
		if err != nil {
			s.log.Warn("notification fan-out failed", "error", err, "event_key", e.EventKey, "recipients", len(ids))
			out.warn("notification %s not sent: %v", e.Type, err)
			continue
		}
		out.Notified += n
	}
}

func (s *workflowService) release(ctx context.Context, out *Outcome, files []contents.FileAttachment) {
	for _, f := range files {
		if err := s.files.Release(ctx, f.Path); err != nil {
			s.log.Warn("file release failed", "error", err, "path", f.Path)
			out.warn("file %s was not removed", f.Filename)
		}
	}
}

// announce pushes a state change to the requester and team. Delivery is best effort.
func (s *workflowService) announce(ctx context.Context, req *types.ContentRequest, event realtime.SSEEvent, data any) {
	if req == nil {
		return
	}
	for _, id := range workflow.Dedupe([]uuid.UUID{req.RequestedBy}, req.Assignment.Members()) {
		msg := realtime.SSEMessage{Channel: realtime.UserChannel(id), Event: event, Data: data}
		if err := s.emit.Emit(ctx, msg); err != nil {
			s.m.IncFanoutFailure(string(event), "realtime")
			s.log.Debug("realtime emit failed", "error", err, "user_id", id, "event", event)
		}
	}
}
