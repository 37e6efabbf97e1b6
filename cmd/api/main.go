package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/rush-skills/plane/internal/config"
	"github.com/rush-skills/plane/internal/handler/health"
	notificationHandler "github.com/rush-skills/plane/internal/handler/notification"
	prometheusHandler "github.com/rush-skills/plane/internal/handler/prometheus"
	"github.com/rush-skills/plane/internal/middleware"
	"github.com/rush-skills/plane/internal/model"
	"github.com/rush-skills/plane/internal/repository/sqldb"
	"github.com/rush-skills/plane/internal/router"
	notificationService "github.com/rush-skills/plane/internal/service/notification"
	workspaceService "github.com/rush-skills/plane/internal/service/workspace"
	"github.com/rush-skills/plane/pkg/logger"
	"github.com/rush-skills/plane/pkg/messaging"
	"github.com/rush-skills/plane/pkg/messaging/redis"
	"github.com/rush-skills/plane/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	appLogger.SetGlobal()

	// Initialize database
	db, err := sqldb.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := sqldb.EnsureSchema(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("failed to apply schema")
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(cfg.Monitoring.Namespace, registry)

	// Initialize repositories
	base := sqldb.NewBaseRepository(db)
	notificationRepo := sqldb.NewNotificationRepository(base)
	membershipRepo := sqldb.NewMembershipRepository(base)
	workspaceRepo := sqldb.NewWorkspaceRepository(base)

	// Event publishing is optional; without Redis transitions are not broadcast
	var publisher messaging.Publisher = messaging.NoopPublisher{}
	var readiness []health.Check
	if cfg.Redis.URL != "" {
		broker, err := redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
		publisher = messaging.NewChannelPublisher(broker, cfg.Redis.Channel)
		readiness = append(readiness, health.Check{Name: "redis", Ping: broker.Ping})
	}

	// Initialize services
	snoozePolicy := model.SnoozeLenient
	if cfg.Notifications.StrictSnoozedFilter {
		snoozePolicy = model.SnoozeStrict
	}
	workspaceSvc := workspaceService.NewService(workspaceRepo, cfg.Notifications.WorkspaceCacheTTL, m)
	notificationSvc := notificationService.NewService(
		notificationRepo,
		membershipRepo,
		workspaceSvc,
		publisher,
		m,
		appLogger,
		notificationService.WithSnoozePolicy(snoozePolicy),
	)

	if err := middleware.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins

	routerConfig := router.RouterConfig{
		Mode:           cfg.Server.Mode,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		CORSConfig:     corsConfig,
		Auth: middleware.AuthConfig{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
		},
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}

	// Setup router
	r := router.NewRouter(
		health.NewHandler(db, readiness...),
		notificationHandler.NewHandler(notificationSvc),
		prometheusHandler.New(registry, m),
		routerConfig,
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
