package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/steemgate/core/internal/config"
	"github.com/steemgate/core/internal/middleware"
	pkgredis "github.com/steemgate/core/internal/pkg/redis"
	"github.com/steemgate/core/internal/pkg/steem"
)

// App holds all application dependencies.
type App struct {
	cfg         *config.AppConfig
	router      *gin.Engine
	broadcaster steem.Broadcaster
	logger      *zap.Logger
}

// New initializes the application: config → chain client → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	var broadcaster steem.Broadcaster
	if cfg.KeyConfigured() {
		client, err := steem.New(cfg.Nodes, cfg.PostingKey, logger)
		if err != nil {
			return nil, fmt.Errorf("steem client: %w", err)
		}
		broadcaster = client
	} else {
		logger.Warn("posting key not configured, post submission disabled")
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.APIKeyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			return originAllowed(patterns, origin)
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	if cfg.RedisURL != "" {
		rc, err := pkgredis.Connect(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		router.Use(middleware.RateLimit(rc.Raw()))
	}

	app := &App{cfg: cfg, router: router, broadcaster: broadcaster, logger: logger}
	app.registerRoutes()

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }
