// Package router wires the HTTP routes.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kart-io/docqa/internal/docqa/handler"
)

// Register registers the service routes on the engine.
func Register(engine *gin.Engine, h *handler.Handler) {
	engine.GET("/", h.Root)
	engine.GET("/healthz", h.Health)

	v1 := engine.Group("/v1")
	{
		pdf := v1.Group("/pdf")
		{
			pdf.POST("/upload", h.Upload)
			pdf.POST("/query", h.Query)
			pdf.GET("/list", h.List)
			pdf.DELETE("/:id", h.Delete)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.POST("/:id/reset", h.ResetSession)
		}

		v1.GET("/stats", h.Stats)
	}

	zap.S().Infow("http routes registered")
}
