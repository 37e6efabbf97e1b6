package httputil

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rush-skills/plane/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(errors.KindNotFound))
	assert.Equal(t, http.StatusBadRequest, StatusFor(errors.KindValidation))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(errors.KindUnauthorized))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.KindInternal))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.Kind(99)))
}

func TestNewErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   ErrorResponse
	}{
		{
			name:       "not found",
			err:        errors.NotFound("Notification does not exists", nil),
			wantStatus: http.StatusBadRequest,
			wantBody:   ErrorResponse{Error: "Notification does not exists", Code: "not_found"},
		},
		{
			name:       "validation",
			err:        errors.Validation(map[string][]string{"snoozed_till": {"bad"}}, nil),
			wantStatus: http.StatusBadRequest,
			wantBody: ErrorResponse{
				Error:  "invalid request",
				Code:   "validation_error",
				Fields: map[string][]string{"snoozed_till": {"bad"}},
			},
		},
		{
			name:       "internal hides cause",
			err:        errors.Internal(stderrors.New("pq: connection refused")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   ErrorResponse{Error: internalErrorMessage, Code: "internal_error"},
		},
		{
			name:       "plain error is internal",
			err:        stderrors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   ErrorResponse{Error: internalErrorMessage, Code: "internal_error"},
		},
		{
			name:       "unauthorized",
			err:        errors.Unauthorized(nil),
			wantStatus: http.StatusUnauthorized,
			wantBody:   ErrorResponse{Error: "unauthorized", Code: "unauthorized"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := NewErrorResponse(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithError(c, errors.NotFound("Notification does not exists", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, c.IsAborted())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Notification does not exists", body["error"])
	assert.Equal(t, "not_found", body["code"])
	assert.NotContains(t, body, "fields")
}

func TestRespondWithErrorLogsThroughRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	reqLogger := zerolog.New(&buf).With().Str("request_id", "rid-7").Logger()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/boom", nil)
	c.Request = c.Request.WithContext(reqLogger.WithContext(c.Request.Context()))

	RespondWithError(c, errors.Internal(stderrors.New("db gone")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), `"request_id":"rid-7"`)
	assert.Contains(t, buf.String(), `"path":"/boom"`)
	assert.Contains(t, buf.String(), "db gone")
	assert.NotContains(t, w.Body.String(), "db gone")
}
