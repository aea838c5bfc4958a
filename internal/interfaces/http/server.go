// internal/interfaces/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/infrastructure/metrics"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/middleware"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/routes"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxRequestBody = 10 << 20

// HealthChecker is a dependency probed by /health
type HealthChecker interface {
	Health() error
}

// Dependencies are the collaborators the server mounts
type Dependencies struct {
	Redis         *redis.Client
	Metrics       *metrics.Registry
	Checks        map[string]HealthChecker
	Handlers      routes.Handlers
	Authenticator middleware.Authenticator
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	logger     logrus.FieldLogger
	deps       Dependencies
	gin        *gin.Engine
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer creates a new HTTP server instance with middleware and routes mounted
func NewServer(cfg *config.Config, logger logrus.FieldLogger, deps Dependencies) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		logger:    logger,
		deps:      deps,
		gin:       gin.New(),
		startedAt: time.Now(),
	}
	if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		logger.WithError(err).Warn("Ignoring invalid trusted proxies")
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      otelhttp.NewHandler(s.gin, cfg.App.Name),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// Handler returns the root handler, tracing included
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Infof("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	s.logger.Infof("🌐 API Base URL: http://localhost:%s/api", s.config.Server.Port)
	s.logger.Infof("📊 Health Check: http://localhost:%s/health", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("🛑 Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("✅ HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures the middleware shared by every route
func (s *Server) setupMiddleware() {
	var observer middleware.RequestObserver
	if s.deps.Metrics != nil {
		observer = s.deps.Metrics
	}

	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger, observer))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders(s.config.App.Name))
	s.gin.Use(middleware.RateLimit(s.deps.Redis, s.config.Security.RateLimitPerMinute, s.logger))
	s.gin.Use(middleware.RequestSizeLimit(maxRequestBody))
}

// setupRoutes mounts probes, metrics and the API
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)
	if s.deps.Metrics != nil {
		s.gin.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	// websocket upgrades must not inherit the request deadline
	api := s.gin.Group("/api")
	api.Use(middleware.Timeout(30 * time.Second))

	routes.SetupRoutes(&s.gin.RouterGroup, api, s.deps.Handlers, routes.Deps{
		Config:        s.config,
		Authenticator: s.deps.Authenticator,
	})

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     s.config.App.Name,
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"catalog":   "/api/restaurants",
					"cart":      "/api/cart",
					"checkout":  "/api/checkout",
					"orders":    "/api/orders",
					"settings":  "/api/campus-settings",
					"analytics": "/api/analytics/dashboard",
					"admin":     "/api/admin",
					"realtime":  "/ws/orders",
				},
			})
		})
	}
}

// healthCheck probes every registered dependency
func (s *Server) healthCheck(c *gin.Context) {
	names := make([]string, 0, len(s.deps.Checks))
	for name := range s.deps.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := gin.H{}
	healthy := true
	for _, name := range names {
		if err := s.deps.Checks[name].Health(); err != nil {
			s.logger.WithError(err).WithField("dependency", name).Warn("Health check failed")
			checks[name] = "unhealthy"
			healthy = false
			continue
		}
		checks[name] = "healthy"
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":      status,
		"checks":      checks,
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
