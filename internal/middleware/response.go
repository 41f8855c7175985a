package middleware

import (
	"log/slog"

	"votemate/internal/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// AbortWithError writes err as JSON and stops the handler chain. Internal causes
// are logged, never returned.
func AbortWithError(c *gin.Context, err error) {
	e := apperr.As(err)
	if e.Kind == apperr.KindInternal {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	c.AbortWithStatusJSON(e.HTTPStatus(), ErrorBody{
		Error:   e.Message,
		Message: e.Message,
		Details: e.Details,
	})
}
