package router

import (
	"github.com/ashwinyue/ml-pipeline/internal/handler"
	"github.com/ashwinyue/ml-pipeline/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware(log))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(log))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// Run 流水线运行
		runs := v1.Group("/runs")
		{
			runs.POST("", h.Run.CreateRun)
			runs.GET("", h.Run.ListRuns)
			runs.GET("/:id", h.Run.GetRun)
		}

		// Artifact 产物
		artifacts := v1.Group("/artifacts")
		{
			artifacts.GET("/:name/profile", h.Run.ProfileArtifact)
		}
	}

	return r
}
