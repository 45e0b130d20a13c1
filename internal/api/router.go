// internal/api/router.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Corphon/InterviewScribe/internal/utils"
)

// SetupRouter 配置HTTP路由
func SetupRouter(handler *Handler, logger *utils.Logger) *gin.Engine {
	if logger == nil {
		logger = utils.NopLogger()
	}

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(logger))
	r.Use(RequestLoggerMiddleware(logger, handler.Metrics))
	r.Use(corsMiddleware())

	r.NoRoute(func(c *gin.Context) {
		handler.Response.NotFound(c, "")
	})

	// WebSocket 事件推送
	if handler.Hub != nil {
		r.GET("/ws/events", handler.Hub.ServeWS)
	}

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	{
		api.GET("/health", handler.GetHealth)
		api.GET("/metrics", handler.GetMetrics)

		interviewGroup := api.Group("/interview")
		{
			interviewGroup.POST("/generate-questions", handler.GenerateQuestions)
			interviewGroup.GET("/session/:id", handler.GetSession)
			interviewGroup.GET("/sessions", handler.ListSessions)
		}

		api.POST("/transcription/transcribe", handler.Transcribe)

		articleGroup := api.Group("/article")
		{
			articleGroup.POST("/generate", handler.GenerateArticle)
			articleGroup.GET("", handler.ListArticles)
			articleGroup.GET("/:id", handler.GetArticle)
			articleGroup.GET("/:id/export", handler.ExportArticle)
		}
	}

	return r
}
