package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/rush-skills/plane/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// MetricsHandler serves /metrics and records per-route request metrics
type MetricsHandler interface {
	Middleware() gin.HandlerFunc
	Handler() gin.HandlerFunc
}

type Router struct {
	engine        *gin.Engine
	auth          gin.HandlerFunc
	healthH       Handler
	notificationH Handler
	metricsH      MetricsHandler
}

type RouterConfig struct {
	Mode           string
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	CORSConfig     middleware.CORSConfig
	Auth           middleware.AuthConfig
}

func NewRouter(
	healthH Handler,
	notificationH Handler,
	metricsH MetricsHandler,
	config RouterConfig,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()

	security := middleware.DefaultSecurityConfig()
	// plain-http local runs must not pin browsers to https
	security.HSTS = gin.Mode() == gin.ReleaseMode

	r := &Router{
		engine:        engine,
		auth:          middleware.Authenticate(config.Auth),
		healthH:       healthH,
		notificationH: notificationH,
		metricsH:      metricsH,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		metricsH.Middleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
		middleware.SecurityHeaders(security),
		middleware.CORS(config.CORSConfig),
	)

	if config.MaxBodyBytes > 0 {
		sizeLimit := middleware.DefaultSizeLimitConfig()
		sizeLimit.MaxBodySize = config.MaxBodyBytes
		engine.Use(middleware.SizeLimit(sizeLimit))
	}

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.metricsH.Handler())

	api := r.engine.Group("/api/v1")
	r.healthH.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth)
	r.notificationH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
