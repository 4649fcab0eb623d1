package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/contentflow-backend/internal/domain"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/http/response"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
	"github.com/yungbote/contentflow-backend/internal/services"
)

type RequestHandler struct {
	log      *logger.Logger
	workflow services.WorkflowService
}

func NewRequestHandler(log *logger.Logger, workflow services.WorkflowService) *RequestHandler {
	return &RequestHandler{log: log.With("handler", "RequestHandler"), workflow: workflow}
}

// POST /api/requests
func (h *RequestHandler) Submit(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var brief requests.Brief
	if !bindJSON(c, &brief) {
		return
	}
	res, err := h.workflow.SubmitRequest(c.Request.Context(), actor, brief)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, res.Request, res.Warnings...)
}

// GET /api/requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, err := h.workflow.GetRequest(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, req)
}

// GET /api/requests/ticket/:code
func (h *RequestHandler) GetByTicket(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	req, err := h.workflow.GetRequestByTicket(c.Request.Context(), actor, c.Param("code"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, req)
}

// GET /api/requests/stats/summary
func (h *RequestHandler) Stats(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	stats, err := h.workflow.RequestStats(c.Request.Context(), actor)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// PUT /api/requests/:id
func (h *RequestHandler) Update(c *gin.Context) {
	var patch requests.BriefPatch
	h.command(c, &patch, func(c *gin.Context, actor types.User, id uuid.UUID) (services.RequestResult, error) {
		return h.workflow.UpdateRequest(c.Request.Context(), actor, id, patch)
	})
}

// PATCH /api/requests/:id/validate
func (h *RequestHandler) Validate(c *gin.Context) {
	h.command(c, nil, func(c *gin.Context, actor types.User, id uuid.UUID) (services.RequestResult, error) {
		return h.workflow.ValidateRequest(c.Request.Context(), actor, id)
	})
}

// PATCH /api/requests/:id/assign
func (h *RequestHandler) Assign(c *gin.Context) {
	var team requests.Assignment
	h.command(c, &team, func(c *gin.Context, actor types.User, id uuid.UUID) (services.RequestResult, error) {
		return h.workflow.AssignRequest(c.Request.Context(), actor, id, team)
	})
}

type statusBody struct {
	Status requests.Status `json:"status" binding:"required"`
	Reason string          `json:"reason"`
}

// PATCH /api/requests/:id/status
func (h *RequestHandler) SetStatus(c *gin.Context) {
	var body statusBody
	h.command(c, &body, func(c *gin.Context, actor types.User, id uuid.UUID) (services.RequestResult, error) {
		return h.workflow.SetRequestStatus(c.Request.Context(), actor, id, body.Status)
	})
}

// PATCH /api/requests/:id/force-status
func (h *RequestHandler) ForceStatus(c *gin.Context) {
	var body statusBody
	h.command(c, &body, func(c *gin.Context, actor types.User, id uuid.UUID) (services.RequestResult, error) {
		return h.workflow.ForceRequestStatus(c.Request.Context(), actor, id, body.Status, body.Reason)
	})
}

// PATCH /api/requests/:id/schedule
func (h *RequestHandler) Schedule(c *gin.Context) {
	h.command(c, nil, func(c *gin.Context, actor types.User, id uuid.UUID) (services.RequestResult, error) {
		return h.workflow.ScheduleRequest(c.Request.Context(), actor, id)
	})
}

// PATCH /api/requests/:id/publish
func (h *RequestHandler) Publish(c *gin.Context) {
	h.command(c, nil, func(c *gin.Context, actor types.User, id uuid.UUID) (services.RequestResult, error) {
		return h.workflow.PublishRequest(c.Request.Context(), actor, id)
	})
}

// DELETE /api/requests/:id
func (h *RequestHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.workflow.DeleteRequest(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted_contents": res.ContentIDs}, res.Warnings...)
}

// GET /api/requests/:id/contents
func (h *RequestHandler) ListContents(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.workflow.ListContentsForRequest(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, list)
}

func (h *RequestHandler) command(
	c *gin.Context,
	body any,
	run func(c *gin.Context, actor types.User, id uuid.UUID) (services.RequestResult, error),
) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if body != nil && !bindJSON(c, body) {
		return
	}
	res, err := run(c, actor, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res.Request, res.Warnings...)
}
