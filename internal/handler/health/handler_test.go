package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupRouter(t *testing.T, extra ...Check) (*gin.Engine, *sqlx.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)

	r := gin.New()
	NewHandler(db, extra...).RegisterRoutes(r.Group("/api/v1"))
	return r, db
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLivenessCheck(t *testing.T) {
	r, db := setupRouter(t)
	defer db.Close()

	w := get(r, "/api/v1/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		broker     error
		closeDB    bool
		wantStatus int
		wantBody   string
	}{
		{
			name:       "all up",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"UP","components":{"database":"UP","broker":"UP"}}`,
		},
		{
			name:       "broker down",
			broker:     errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"DOWN","components":{"database":"UP","broker":"DOWN"}}`,
		},
		{
			name:       "database closed",
			closeDB:    true,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"DOWN","components":{"database":"DOWN","broker":"UP"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broker := Check{Name: "broker", Ping: func(context.Context) error { return tt.broker }}
			r, db := setupRouter(t, broker)
			defer db.Close()
			if tt.closeDB {
				require.NoError(t, db.Close())
			}

			w := get(r, "/api/v1/health/ready")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
