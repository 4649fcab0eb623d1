package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/contentflow-backend/internal/domain"
	"github.com/yungbote/contentflow-backend/internal/http/response"
	"github.com/yungbote/contentflow-backend/internal/platform/ctxutil"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
	"github.com/yungbote/contentflow-backend/internal/services"
)

const (
	headerUserID = "X-User-ID"
	actorKey     = "actor"
)

type ActorMiddleware struct {
	log       *logger.Logger
	directory services.UserDirectory
}

func NewActorMiddleware(log *logger.Logger, directory services.UserDirectory) *ActorMiddleware {
	return &ActorMiddleware{log: log.With("Middleware", "ActorMiddleware"), directory: directory}
}

// RequireActor resolves the caller from the header the auth gateway sets.
// Unknown or inactive users never reach a handler.
func (am *ActorMiddleware) RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(headerUserID))
		if raw == "" {
			raw = strings.TrimSpace(c.Query("user_id"))
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errMissingActor)
			return
		}
		actor, err := am.directory.Actor(c.Request.Context(), id)
		if err != nil {
			am.log.Debug("actor lookup failed", "user_id", id, "error", err)
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errUnknownActor)
			return
		}
		if !actor.IsActive {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errInactiveActor)
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			UserID: actor.ID,
			Role:   string(actor.Role),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set(actorKey, actor)
		c.Next()
	}
}

// Actor returns the user RequireActor attached to c.
func Actor(c *gin.Context) (types.User, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return types.User{}, false
	}
	u, ok := v.(types.User)
	return u, ok
}

type actorError string

func (e actorError) Error() string { return string(e) }

const (
	errMissingActor  actorError = "missing or malformed " + headerUserID + " header"
	errUnknownActor  actorError = "unknown user"
	errInactiveActor actorError = "user is inactive"
)
