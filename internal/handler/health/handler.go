package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	statusUp   = "UP"
	statusDown = "DOWN"

	defaultCheckTimeout = 2 * time.Second
)

// Check is a dependency the service cannot serve traffic without
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Handler struct {
	checks  []Check
	timeout time.Duration
}

// NewHandler always checks the database; extra checks cover optional dependencies such as the event broker
func NewHandler(db *sqlx.DB, extra ...Check) *Handler {
	checks := append([]Check{{Name: "database", Ping: db.PingContext}}, extra...)
	return &Handler{
		checks:  checks,
		timeout: defaultCheckTimeout,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusUp})
}

// ReadinessCheck pings every dependency and reports each one.
// A single failure makes the whole service DOWN.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := statusUp
	components := make(gin.H, len(h.checks))
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("component", check.Name).Msg("Readiness check failed")
			components[check.Name] = statusDown
			status = statusDown
			continue
		}
		components[check.Name] = statusUp
	}

	code := http.StatusOK
	if status == statusDown {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "components": components})
}
