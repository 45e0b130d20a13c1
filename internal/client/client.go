// Package client talks to the interview HTTP API and implements workflow.API.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Corphon/InterviewScribe/internal/models"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:4000/api"

// APIError is a failed response envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type sessionData struct {
	SessionID string                     `json:"sessionId"`
	Topic     string                     `json:"topic"`
	Questions []models.InterviewQuestion `json:"questions"`
	CreatedAt time.Time                  `json:"createdAt"`
}

// Client is a JSON-over-HTTP client for the interview API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for baseURL, e.g. http://localhost:4000/api.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GenerateQuestions creates a session for topic.
func (c *Client) GenerateQuestions(ctx context.Context, topic string) (models.InterviewSession, error) {
	var data sessionData
	if err := c.do(ctx, http.MethodPost, "/interview/generate-questions", map[string]string{"topic": topic}, &data); err != nil {
		return models.InterviewSession{}, err
	}
	return data.session(), nil
}

// GetSession fetches a stored session.
func (c *Client) GetSession(ctx context.Context, id string) (models.InterviewSession, error) {
	var data sessionData
	if err := c.do(ctx, http.MethodGet, "/interview/session/"+id, nil, &data); err != nil {
		return models.InterviewSession{}, err
	}
	return data.session(), nil
}

// Transcribe uploads audio as base64 and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, audio []byte, format string) (models.TranscriptionResult, error) {
	body := map[string]string{
		"audioData": base64.StdEncoding.EncodeToString(audio),
		"format":    format,
	}
	var result models.TranscriptionResult
	if err := c.do(ctx, http.MethodPost, "/transcription/transcribe", body, &result); err != nil {
		return models.TranscriptionResult{}, err
	}
	return result, nil
}

// GenerateArticle composes an article from the transcript.
func (c *Client) GenerateArticle(ctx context.Context, req models.ArticleRequest) (models.GeneratedArticle, error) {
	var article models.GeneratedArticle
	if err := c.do(ctx, http.MethodPost, "/article/generate", req, &article); err != nil {
		return models.GeneratedArticle{}, err
	}
	return article, nil
}

// GetArticle fetches a stored article.
func (c *Client) GetArticle(ctx context.Context, id string) (models.GeneratedArticle, error) {
	var article models.GeneratedArticle
	if err := c.do(ctx, http.MethodGet, "/article/"+id, nil, &article); err != nil {
		return models.GeneratedArticle{}, err
	}
	return article, nil
}

func (d sessionData) session() models.InterviewSession {
	return models.InterviewSession{
		ID:        d.SessionID,
		Topic:     d.Topic,
		Questions: d.Questions,
		CreatedAt: d.CreatedAt,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	return nil
}
