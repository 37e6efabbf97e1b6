package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rush-skills/plane/pkg/errors"
)

const internalErrorMessage = "Something went wrong please try again later"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// statusByKind is the single mapping from error kind to HTTP status.
// NotFound answers 400 to keep the existing client contract.
var statusByKind = map[errors.Kind]int{
	errors.KindNotFound:     http.StatusBadRequest,
	errors.KindValidation:   http.StatusBadRequest,
	errors.KindUnauthorized: http.StatusUnauthorized,
	errors.KindInternal:     http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for an error kind
func StatusFor(kind errors.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NewErrorResponse builds the status and body for err. Internal causes are never exposed.
func NewErrorResponse(err error) (int, ErrorResponse) {
	appErr := errors.As(err)
	body := ErrorResponse{
		Error:  appErr.Message,
		Code:   appErr.Kind.String(),
		Fields: appErr.Fields,
	}
	if appErr.Kind == errors.KindInternal {
		body.Error = internalErrorMessage
		body.Fields = nil
	}
	return StatusFor(appErr.Kind), body
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondWithError sends an error response and aborts the handler chain
func RespondWithError(c *gin.Context, err error) {
	status, body := NewErrorResponse(err)
	if status >= http.StatusInternalServerError {
		requestLogger(c).Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// requestLogger prefers the request-scoped logger, which already carries the request id
func requestLogger(c *gin.Context) *zerolog.Logger {
	if l := zerolog.Ctx(c.Request.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	l := log.With().Str("request_id", c.GetString("request_id")).Logger()
	return &l
}
