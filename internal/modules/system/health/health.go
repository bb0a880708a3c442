// Package health exposes the unauthenticated liveness probe.
package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steemgate/core/internal/config"
)

func RegisterRoutes(rg *gin.RouterGroup, cfg *config.AppConfig) {
	rg.GET("/health", func(c *gin.Context) {
		author := cfg.Author
		if author == "" {
			author = "NOT SET"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"author":         author,
			"key_configured": cfg.KeyConfigured(),
		})
	})
}
