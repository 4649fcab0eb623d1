package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/contentflow-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type Envelope struct {
	Data     any      `json:"data"`
	Warnings []string `json:"warnings"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr classifies err by its workflow code.
func RespondErr(c *gin.Context, err error) {
	e := apierr.From(err)
	RespondError(c, e.Status, e.Code, e)
}

func RespondOK(c *gin.Context, payload any, warnings ...string) {
	Respond(c, http.StatusOK, payload, warnings...)
}

func RespondCreated(c *gin.Context, payload any, warnings ...string) {
	Respond(c, http.StatusCreated, payload, warnings...)
}

func Respond(c *gin.Context, status int, payload any, warnings ...string) {
	if warnings == nil {
		warnings = []string{}
	}
	c.JSON(status, Envelope{Data: payload, Warnings: warnings})
}
