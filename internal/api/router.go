package api

import (
	"github.com/gin-gonic/gin"

	"github.com/wonny/stockspider/internal/api/handlers"
	"github.com/wonny/stockspider/internal/api/middleware"
	"github.com/wonny/stockspider/internal/infra/database/postgres"
	"github.com/wonny/stockspider/internal/pkg/config"
	"github.com/wonny/stockspider/internal/pkg/logger"
)

// Router holds all dependencies for API routing
type Router struct {
	engine        *gin.Engine
	config        *config.Config
	healthHandler *handlers.HealthHandler
	spiderHandler *handlers.SpiderHandler
}

// NewRouter creates a new API router with all dependencies.
// dbPool may be nil when the fetch log is disabled.
func NewRouter(cfg *config.Config, dbPool *postgres.Pool, svc handlers.SpiderService, version string) *Router {
	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	router := &Router{
		engine:        gin.New(),
		config:        cfg,
		healthHandler: handlers.NewHealthHandler(dbPool, version),
		spiderHandler: handlers.NewSpiderHandler(svc),
	}

	// Setup middlewares and routes
	router.setupMiddlewares()
	router.setupRoutes()

	return router
}

// setupMiddlewares configures all global middlewares
func (r *Router) setupMiddlewares() {
	// Recovery middleware (must be first)
	r.engine.Use(middleware.Recovery())

	// Request ID middleware
	r.engine.Use(middleware.RequestID())

	// Logging middleware
	loggingCfg := middleware.LoggingConfig{
		SkipPaths: []string{"/health", "/health/ready"},
	}
	if r.config.Logging.FileEnabled {
		accessLogger := logger.NewAccessLogger(
			r.config.Logging.FilePath,
			r.config.Logging.RotationSize,
			r.config.Logging.RetentionDays,
		)
		loggingCfg.AccessLogger = &accessLogger
	}
	r.engine.Use(middleware.Logging(loggingCfg))

	// CORS middleware
	if r.config.Server.Mode == gin.DebugMode {
		r.engine.Use(middleware.CORS(middleware.DevelopmentCORSConfig()))
	} else {
		r.engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Health checks (no /api prefix)
	r.engine.GET("/health", r.healthHandler.Health)
	r.engine.GET("/health/ready", r.healthHandler.Ready)

	api := r.engine.Group("/api")
	{
		api.GET("/health/detailed", r.healthHandler.Detailed)

		v1 := api.Group("/v1")
		{
			stocks := v1.Group("/stocks/:code")
			{
				stocks.GET("/report", r.spiderHandler.GetReport)
				stocks.GET("/positions", r.spiderHandler.GetPositions)
				stocks.GET("/free-shares", r.spiderHandler.GetFreeShares)
				stocks.GET("/company", r.spiderHandler.GetCompany)
				stocks.GET("/snapshot", r.spiderHandler.GetSnapshot)
				stocks.GET("/fetch-logs", r.spiderHandler.ListFetchLogsByCode)
			}

			v1.GET("/fetch-logs", r.spiderHandler.ListFetchLogs)
		}
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
