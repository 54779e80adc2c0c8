package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modelseq/go-modelseq/internal/metrics"
)

// NewRouter wires the endpoints onto a gin engine.
func NewRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	api := engine.Group("/api")
	api.GET("/health", handler.Health)
	api.GET("/sequence", handler.SequenceInfo)
	api.GET("/sequence/diagram", handler.Diagram)
	api.POST("/infer", handler.Infer)
	api.POST("/infer-single", handler.InferSingle)
	api.POST("/prepare-next", handler.PrepareNext)
	api.POST("/infer-batch", handler.InferBatch)

	sessions := api.Group("/sessions")
	{
		sessions.POST("", handler.CreateSession)
		sessions.GET("/:id", handler.GetSession)
		sessions.POST("/:id/run", handler.RunSession)
		sessions.POST("/:id/advance", handler.AdvanceSession)
		sessions.POST("/:id/jump", handler.JumpSession)
		sessions.POST("/:id/reset", handler.ResetSession)
		sessions.DELETE("/:id", handler.DeleteSession)
	}

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.DefaultRegistry, promhttp.HandlerOpts{})))

	return engine
}
