package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/contentflow-backend/internal/domain"
	"github.com/yungbote/contentflow-backend/internal/http/middleware"
	"github.com/yungbote/contentflow-backend/internal/http/response"
)

var errNoActor = errors.New("not authenticated")

// actorFrom fetches the resolved caller, answering 401 when the actor
// middleware did not run.
func actorFrom(c *gin.Context) (types.User, bool) {
	actor, ok := middleware.Actor(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errNoActor)
		return types.User{}, false
	}
	return actor, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return false
	}
	return true
}

type notesBody struct {
	Notes string `json:"notes"`
}
