package app

import (
	"github.com/gin-gonic/gin"

	"github.com/steemgate/core/internal/middleware"
	"github.com/steemgate/core/internal/modules/publish"
	"github.com/steemgate/core/internal/modules/system/health"
	"github.com/steemgate/core/internal/pkg/response"
)

func (a *App) registerRoutes() {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	authMW := middleware.APIKey(a.cfg.PostingKey, a.logger)

	root := r.Group("")
	health.RegisterRoutes(root, a.cfg)
	publish.NewHandler(a.cfg, a.broadcaster, a.logger).RegisterRoutes(root, authMW)
}
