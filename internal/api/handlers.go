// internal/api/handlers.go
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/InterviewScribe/internal/config"
	"github.com/Corphon/InterviewScribe/internal/models"
	"github.com/Corphon/InterviewScribe/internal/services"
	"github.com/Corphon/InterviewScribe/internal/utils"
)

// Handler 处理API请求
type Handler struct {
	Interviews     *services.InterviewService     // 问题生成与会话
	Transcriptions *services.TranscriptionService // 语音转写
	Articles       *services.ArticleService       // 文章生成
	Exports        *services.ExportService        // 文章导出
	Metrics        *utils.APIMetrics
	Hub            *EventHub
	Mode           config.Mode
	ProviderName   string
	Response       *ResponseHelper // 响应助手
	startedAt      time.Time
}

// HandlerDeps 构造 Handler 所需的服务
type HandlerDeps struct {
	Interviews     *services.InterviewService
	Transcriptions *services.TranscriptionService
	Articles       *services.ArticleService
	Exports        *services.ExportService
	Metrics        *utils.APIMetrics
	Hub            *EventHub
	Mode           config.Mode
	ProviderName   string
}

// NewHandler 创建API处理器
func NewHandler(deps HandlerDeps) *Handler {
	if deps.Metrics == nil {
		deps.Metrics = utils.NewAPIMetrics(nil, nil)
	}
	if deps.Exports == nil && deps.Articles != nil {
		deps.Exports = services.NewExportService(deps.Articles)
	}
	return &Handler{
		Interviews:     deps.Interviews,
		Transcriptions: deps.Transcriptions,
		Articles:       deps.Articles,
		Exports:        deps.Exports,
		Metrics:        deps.Metrics,
		Hub:            deps.Hub,
		Mode:           deps.Mode,
		ProviderName:   deps.ProviderName,
		Response:       NewResponseHelper(),
		startedAt:      time.Now(),
	}
}

// GenerateQuestionsRequest 生成问题的请求结构
type GenerateQuestionsRequest struct {
	Topic string `json:"topic" binding:"required"`
	Count int    `json:"count" binding:"omitempty,min=1,max=10"`
}

// SessionResponse 会话响应结构
type SessionResponse struct {
	SessionID string                     `json:"sessionId"`
	Topic     string                     `json:"topic"`
	Questions []models.InterviewQuestion `json:"questions"`
	CreatedAt time.Time                  `json:"createdAt"`
}

// NewSessionResponse 把会话转换为对外的响应结构，HTTP 与 MCP 共用
func NewSessionResponse(session models.InterviewSession) SessionResponse {
	return SessionResponse{
		SessionID: session.ID,
		Topic:     session.Topic,
		Questions: session.Questions,
		CreatedAt: session.CreatedAt,
	}
}

// TranscribeRequest 语音转写的请求结构
type TranscribeRequest struct {
	AudioData string `json:"audioData" binding:"required"` // base64
	Format    string `json:"format"`
	SessionID string `json:"sessionId"` // 仅用于事件推送
}

// GenerateArticleRequest 生成文章的请求结构
type GenerateArticleRequest struct {
	Topic           string                  `json:"topic" binding:"required"`
	Transcript      []models.TranscriptLine `json:"transcript"`
	TargetWordCount int                     `json:"targetWordCount" binding:"omitempty,min=200,max=1000"`
	SessionID       string                  `json:"sessionId"`
}

// ========================================
// 访谈相关处理器
// ========================================

// GenerateQuestions 根据主题生成问题并创建会话
func (h *Handler) GenerateQuestions(c *gin.Context) {
	var req GenerateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request: topic is required and count must be between 1 and 10")
		return
	}
	if err := services.ValidateTopic(req.Topic); err != nil {
		h.Response.AppError(c, err)
		return
	}

	session, err := h.Interviews.GenerateQuestions(c.Request.Context(), req.Topic, req.Count)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, NewSessionResponse(session))
}

// GetSession 获取会话
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.Interviews.GetSession(c.Param("id"))
	if err != nil {
		h.Response.NotFound(c, "session")
		return
	}
	h.Response.Success(c, NewSessionResponse(session))
}

// ListSessions 按创建顺序列出会话
func (h *Handler) ListSessions(c *gin.Context) {
	sessions := h.Interviews.ListSessions()
	out := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, NewSessionResponse(session))
	}
	h.Response.Success(c, out)
}

// ========================================
// 转写相关处理器
// ========================================

// Transcribe 转写 base64 音频
func (h *Handler) Transcribe(c *gin.Context) {
	var req TranscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request: audioData is required")
		return
	}

	result, err := h.Transcriptions.TranscribeBase64(c.Request.Context(), req.AudioData, req.Format, req.SessionID)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}
	h.Response.Success(c, result)
}

// ========================================
// 文章相关处理器
// ========================================

// GenerateArticle 根据访谈记录生成文章
func (h *Handler) GenerateArticle(c *gin.Context) {
	var req GenerateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "Invalid request: topic is required and targetWordCount must be between 200 and 1000")
		return
	}

	articleReq := models.ArticleRequest{
		Topic:           req.Topic,
		Transcript:      req.Transcript,
		TargetWordCount: req.TargetWordCount,
	}
	if err := services.ValidateArticleRequest(articleReq); err != nil {
		h.Response.AppError(c, err)
		return
	}

	article, err := h.Articles.GenerateArticle(c.Request.Context(), articleReq, req.SessionID)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}
	h.Response.Success(c, article)
}

// GetArticle 获取文章
func (h *Handler) GetArticle(c *gin.Context) {
	article, err := h.Articles.GetArticle(c.Param("id"))
	if err != nil {
		h.Response.NotFound(c, "article")
		return
	}
	h.Response.Success(c, article)
}

// ListArticles 按创建顺序列出文章
func (h *Handler) ListArticles(c *gin.Context) {
	h.Response.Success(c, h.Articles.ListArticles())
}

// ExportArticle 以附件形式下载文章
func (h *Handler) ExportArticle(c *gin.Context) {
	format, err := services.ParseExportFormat(c.DefaultQuery("format", string(models.ExportFormatMarkdown)))
	if err != nil {
		h.Response.Error(c, statusForError(err), ErrorExportFormatInvalid, err.Error())
		return
	}

	result, err := h.Exports.ExportArticle(c.Param("id"), format)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}
	h.Response.FileResponse(c, result)
}

// ========================================
// 运行状态
// ========================================

// GetHealth 返回运行模式、提供者和存储规模
func (h *Handler) GetHealth(c *gin.Context) {
	subscribers := 0
	if h.Hub != nil {
		subscribers = h.Hub.ClientCount()
	}
	h.Response.Success(c, gin.H{
		"status":      "ok",
		"mode":        h.Mode.String(),
		"provider":    h.ProviderName,
		"sessions":    h.Interviews.SessionCount(),
		"articles":    h.Articles.ArticleCount(),
		"subscribers": subscribers,
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// GetMetrics 返回计数器与直方图快照
func (h *Handler) GetMetrics(c *gin.Context) {
	h.Response.Success(c, h.Metrics.Collector().GetMetrics())
}
