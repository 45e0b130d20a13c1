// Package mcpserver exposes the interview services as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Corphon/InterviewScribe/internal/api"
	"github.com/Corphon/InterviewScribe/internal/app"
	"github.com/Corphon/InterviewScribe/internal/models"
	"github.com/Corphon/InterviewScribe/internal/services"
	"github.com/Corphon/InterviewScribe/internal/utils"
)

const serverName = "interview-scribe"

// Server wires the tool handlers to the application services.
type Server struct {
	interviews     *services.InterviewService
	transcriptions *services.TranscriptionService
	articles       *services.ArticleService
	logger         *utils.Logger
	mcp            *server.MCPServer
}

// New registers every tool against a.
func New(a *app.App, version string) *Server {
	s := &Server{
		interviews:     a.Interviews,
		transcriptions: a.Transcriptions,
		articles:       a.Articles,
		logger:         a.Logger,
	}
	s.mcp = server.NewMCPServer(serverName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio blocks serving requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("generate_questions",
		mcp.WithDescription("Generate interview questions for a topic and open a new session"),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Interview topic, 3-200 characters")),
		mcp.WithNumber("count", mcp.Description("Number of questions, 1-10")),
	), s.generateQuestions)

	s.mcp.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Fetch an interview session by id"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Session id")),
	), s.getSession)

	s.mcp.AddTool(mcp.NewTool("transcribe_audio",
		mcp.WithDescription("Transcribe a base64 encoded audio answer"),
		mcp.WithString("audio_data", mcp.Required(), mcp.Description("Base64 audio, optionally as a data URL")),
		mcp.WithString("format", mcp.Description("Container format such as webm or wav")),
		mcp.WithString("session_id", mcp.Description("Session the answer belongs to")),
	), s.transcribeAudio)

	s.mcp.AddTool(mcp.NewTool("generate_article",
		mcp.WithDescription("Write an article from an interview transcript"),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Article topic")),
		mcp.WithString("transcript_json", mcp.Required(),
			mcp.Description(`JSON array of {"question": "...", "answer": "..."} entries`)),
		mcp.WithNumber("target_word_count", mcp.Description("Target length, 200-1000 words")),
		mcp.WithString("session_id", mcp.Description("Session the transcript came from")),
	), s.generateArticle)

	s.mcp.AddTool(mcp.NewTool("get_article",
		mcp.WithDescription("Fetch a generated article by id"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Article id")),
	), s.getArticle)

	s.mcp.AddTool(mcp.NewTool("list_articles",
		mcp.WithDescription("List generated articles in creation order"),
	), s.listArticles)
}

func (s *Server) generateQuestions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	session, err := s.interviews.GenerateQuestions(ctx, topic, req.GetInt("count", 0))
	if err != nil {
		return s.toolError("generate_questions", err), nil
	}
	return jsonResult(api.NewSessionResponse(session))
}

func (s *Server) getSession(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	session, err := s.interviews.GetSession(id)
	if err != nil {
		return s.toolError("get_session", err), nil
	}
	return jsonResult(api.NewSessionResponse(session))
}

func (s *Server) transcribeAudio(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	audio, err := req.RequireString("audio_data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.transcriptions.TranscribeBase64(ctx, audio,
		req.GetString("format", models.DefaultAudioFormat), req.GetString("session_id", ""))
	if err != nil {
		return s.toolError("transcribe_audio", err), nil
	}
	return jsonResult(result)
}

func (s *Server) generateArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("transcript_json")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var transcript []models.TranscriptLine
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &transcript); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("transcript_json is not a valid transcript: %v", err)), nil
		}
	}

	article, err := s.articles.GenerateArticle(ctx, models.ArticleRequest{
		Topic:           topic,
		Transcript:      transcript,
		TargetWordCount: req.GetInt("target_word_count", 0),
	}, req.GetString("session_id", ""))
	if err != nil {
		return s.toolError("generate_article", err), nil
	}
	return jsonResult(article)
}

func (s *Server) getArticle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	article, err := s.articles.GetArticle(id)
	if err != nil {
		return s.toolError("get_article", err), nil
	}
	return jsonResult(article)
}

func (s *Server) listArticles(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.articles.ListArticles())
}

// toolError logs err and returns it as an error result.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	s.logger.Warn("MCP tool failed", map[string]interface{}{
		"tool":  tool,
		"error": err.Error(),
	})
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
