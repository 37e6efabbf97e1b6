package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rush-skills/plane/internal/middleware"
	"github.com/rush-skills/plane/internal/model"
	apperrors "github.com/rush-skills/plane/pkg/errors"
)

type call struct {
	op          string
	slug        string
	id          string
	userID      uuid.UUID
	params      model.NotificationListParams
	snoozedTill *string
}

type fakeService struct {
	calls  []call
	result *model.Notification
	list   []*model.Notification
	err    error
}

func (s *fakeService) record(c call) (*model.Notification, error) {
	s.calls = append(s.calls, c)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *fakeService) List(_ context.Context, slug string, userID uuid.UUID, params model.NotificationListParams) ([]*model.Notification, error) {
	s.calls = append(s.calls, call{op: "list", slug: slug, userID: userID, params: params})
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func (s *fakeService) Get(_ context.Context, slug, id string, userID uuid.UUID) (*model.Notification, error) {
	return s.record(call{op: "get", slug: slug, id: id, userID: userID})
}

func (s *fakeService) PartialUpdateSnooze(_ context.Context, slug, id string, userID uuid.UUID, snoozedTill *string) (*model.Notification, error) {
	return s.record(call{op: "snooze", slug: slug, id: id, userID: userID, snoozedTill: snoozedTill})
}

func (s *fakeService) MarkRead(_ context.Context, slug, id string, userID uuid.UUID) (*model.Notification, error) {
	return s.record(call{op: "read", slug: slug, id: id, userID: userID})
}

func (s *fakeService) MarkUnread(_ context.Context, slug, id string, userID uuid.UUID) (*model.Notification, error) {
	return s.record(call{op: "unread", slug: slug, id: id, userID: userID})
}

func (s *fakeService) Archive(_ context.Context, slug, id string, userID uuid.UUID) (*model.Notification, error) {
	return s.record(call{op: "archive", slug: slug, id: id, userID: userID})
}

func (s *fakeService) Unarchive(_ context.Context, slug, id string, userID uuid.UUID) (*model.Notification, error) {
	return s.record(call{op: "unarchive", slug: slug, id: id, userID: userID})
}

// testAuthMiddleware trusts the X-User-ID header
func testAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("X-User-ID"); raw != "" {
			c.Set(middleware.ContextUserID, uuid.MustParse(raw))
		}
		c.Next()
	}
}

func setupRouter(t *testing.T, svc *fakeService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	r := gin.New()
	api := r.Group("/api/v1", testAuthMiddleware())
	NewHandler(svc).RegisterRoutes(api)
	return r
}

func doRequest(r *gin.Engine, method, path, body string, userID uuid.UUID) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != uuid.Nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestListNotificationsDefaults(t *testing.T) {
	svc := &fakeService{list: []*model.Notification{{ID: uuid.New(), Title: "hello"}}}
	r := setupRouter(t, svc)
	user := uuid.New()

	w := doRequest(r, http.MethodGet, "/api/v1/workspaces/acme/notifications", "", user)
	require.Equal(t, http.StatusOK, w.Code)

	var body []map[string]interface{}
	parseJSON(t, w, &body)
	require.Len(t, body, 1)
	assert.Equal(t, "hello", body[0]["title"])

	require.Len(t, svc.calls, 1)
	assert.Equal(t, "acme", svc.calls[0].slug)
	assert.Equal(t, user, svc.calls[0].userID)
	assert.Equal(t, model.DefaultNotificationListParams(), svc.calls[0].params)
}

func TestListNotificationsQueryParams(t *testing.T) {
	svc := &fakeService{list: []*model.Notification{}}
	r := setupRouter(t, svc)

	w := doRequest(r, http.MethodGet,
		"/api/v1/workspaces/acme/notifications?order_by=snoozed_till&snoozed=true&archived=&read=true&type=watching", "", uuid.New())
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	assert.Equal(t, model.NotificationListParams{
		OrderBy:  "snoozed_till",
		Snoozed:  "true",
		Archived: "",
		Read:     "true",
		Type:     "watching",
	}, svc.calls[0].params)
}

func TestRequiresCaller(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(t, svc)

	w := doRequest(r, http.MethodGet, "/api/v1/workspaces/acme/notifications", "", uuid.Nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, svc.calls)
}

func TestUpdateNotification(t *testing.T) {
	id := uuid.New()
	till := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		body     string
		wantTill *string
	}{
		{"sets snoozed_till", `{"snoozed_till":"2024-06-02T09:00:00Z"}`, strPtr("2024-06-02T09:00:00Z")},
		{"null clears", `{"snoozed_till":null}`, nil},
		{"other keys are ignored", `{"read_at":"2024-06-02T09:00:00Z","archived_at":"2024-06-02T09:00:00Z"}`, nil},
		{"empty body clears", ``, nil},
		{"timestamp is parsed by the service", `{"snoozed_till":"next week"}`, strPtr("next week")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{result: &model.Notification{ID: id, SnoozedTill: &till}}
			r := setupRouter(t, svc)

			w := doRequest(r, http.MethodPatch, "/api/v1/workspaces/acme/notifications/"+id.String(), tt.body, uuid.New())
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			require.Len(t, svc.calls, 1)
			assert.Equal(t, "snooze", svc.calls[0].op)
			assert.Equal(t, id.String(), svc.calls[0].id)
			assert.Equal(t, tt.wantTill, svc.calls[0].snoozedTill)

			var body map[string]interface{}
			parseJSON(t, w, &body)
			assert.Equal(t, id.String(), body["id"])
		})
	}
}

func TestUpdateNotificationValidation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"wrong type", `{"snoozed_till":42}`, "snoozed_till"},
		{"broken json", `{"snoozed_till":`, "non_field_errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			r := setupRouter(t, svc)

			w := doRequest(r, http.MethodPatch, "/api/v1/workspaces/acme/notifications/"+uuid.NewString(), tt.body, uuid.New())
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, svc.calls)

			var body struct {
				Error  string              `json:"error"`
				Code   string              `json:"code"`
				Fields map[string][]string `json:"fields"`
			}
			parseJSON(t, w, &body)
			assert.Equal(t, "validation_error", body.Code)
			assert.Contains(t, body.Fields, tt.wantField)
		})
	}
}

func TestTransitionRoutes(t *testing.T) {
	tests := []struct {
		method string
		suffix string
		op     string
	}{
		{http.MethodGet, "", "get"},
		{http.MethodPost, "/read", "read"},
		{http.MethodDelete, "/read", "unread"},
		{http.MethodPost, "/unread", "unread"},
		{http.MethodPost, "/archive", "archive"},
		{http.MethodDelete, "/archive", "unarchive"},
		{http.MethodPost, "/unarchive", "unarchive"},
	}

	for _, tt := range tests {
		t.Run(tt.method+tt.suffix, func(t *testing.T) {
			id := uuid.New()
			svc := &fakeService{result: &model.Notification{ID: id}}
			r := setupRouter(t, svc)
			user := uuid.New()

			w := doRequest(r, tt.method, "/api/v1/workspaces/acme/notifications/"+id.String()+tt.suffix, "", user)
			require.Equal(t, http.StatusOK, w.Code)
			require.Len(t, svc.calls, 1)
			assert.Equal(t, call{op: tt.op, slug: "acme", id: id.String(), userID: user}, svc.calls[0])
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "not found keeps 400",
			err:        apperrors.NotFound("Notification does not exists", nil),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Notification does not exists","code":"not_found"}`,
		},
		{
			name:       "internal hides the cause",
			err:        apperrors.Internal(errors.New("pq: relation does not exist")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Something went wrong please try again later","code":"internal_error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			r := setupRouter(t, svc)

			w := doRequest(r, http.MethodPost, "/api/v1/workspaces/acme/notifications/"+uuid.NewString()+"/read", "", uuid.New())
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func strPtr(s string) *string { return &s }
