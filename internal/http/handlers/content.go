package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/contentflow-backend/internal/domain"
	"github.com/yungbote/contentflow-backend/internal/domain/contents"
	"github.com/yungbote/contentflow-backend/internal/http/response"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
	"github.com/yungbote/contentflow-backend/internal/services"
)

type ContentHandler struct {
	log      *logger.Logger
	workflow services.WorkflowService
}

func NewContentHandler(log *logger.Logger, workflow services.WorkflowService) *ContentHandler {
	return &ContentHandler{log: log.With("handler", "ContentHandler"), workflow: workflow}
}

type createContentBody struct {
	RequestID uuid.UUID `json:"request_id" binding:"required"`
	contents.Draft
}

// POST /api/contents
func (h *ContentHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var body createContentBody
	if !bindJSON(c, &body) {
		return
	}
	res, err := h.workflow.CreateContent(c.Request.Context(), actor, body.RequestID, body.Draft)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, res.Content, res.Warnings...)
}

// GET /api/contents/:id
func (h *ContentHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.workflow.GetContent(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, item)
}

// GET /api/contents/:id/versions
func (h *ContentHandler) Versions(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	history, err := h.workflow.VersionHistory(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, history)
}

// PUT /api/contents/:id
func (h *ContentHandler) Edit(c *gin.Context) {
	var edits contents.Edits
	h.command(c, &edits, func(c *gin.Context, actor types.User, id uuid.UUID) (services.ContentResult, error) {
		return h.workflow.EditContent(c.Request.Context(), actor, id, edits)
	})
}

type filesBody struct {
	Files []contents.FileAttachment `json:"files" binding:"required"`
}

// POST /api/contents/:id/files
func (h *ContentHandler) AttachFiles(c *gin.Context) {
	var body filesBody
	h.command(c, &body, func(c *gin.Context, actor types.User, id uuid.UUID) (services.ContentResult, error) {
		return h.workflow.AttachFiles(c.Request.Context(), actor, id, body.Files)
	})
}

// PATCH /api/contents/:id/review
func (h *ContentHandler) SubmitForReview(c *gin.Context) {
	h.command(c, nil, func(c *gin.Context, actor types.User, id uuid.UUID) (services.ContentResult, error) {
		return h.workflow.SubmitContentForReview(c.Request.Context(), actor, id)
	})
}

// PATCH /api/contents/:id/approve
func (h *ContentHandler) Approve(c *gin.Context) {
	var body notesBody
	h.command(c, &body, func(c *gin.Context, actor types.User, id uuid.UUID) (services.ContentResult, error) {
		return h.workflow.ApproveContent(c.Request.Context(), actor, id, body.Notes)
	})
}

// PATCH /api/contents/:id/reject
func (h *ContentHandler) Reject(c *gin.Context) {
	var body notesBody
	h.command(c, &body, func(c *gin.Context, actor types.User, id uuid.UUID) (services.ContentResult, error) {
		return h.workflow.RejectContent(c.Request.Context(), actor, id, body.Notes)
	})
}

// PATCH /api/contents/:id/revision
func (h *ContentHandler) RequestRevision(c *gin.Context) {
	var body notesBody
	h.command(c, &body, func(c *gin.Context, actor types.User, id uuid.UUID) (services.ContentResult, error) {
		return h.workflow.RequestContentRevision(c.Request.Context(), actor, id, body.Notes)
	})
}

// DELETE /api/contents/:id
func (h *ContentHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.workflow.DeleteContent(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted_contents": res.ContentIDs}, res.Warnings...)
}

func (h *ContentHandler) command(
	c *gin.Context,
	body any,
	run func(c *gin.Context, actor types.User, id uuid.UUID) (services.ContentResult, error),
) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if body != nil && c.Request.ContentLength != 0 && !bindJSON(c, body) {
		return
	}
	res, err := run(c, actor, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content": res.Content, "request": res.Request}, res.Warnings...)
}
