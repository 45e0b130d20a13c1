package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Corphon/InterviewScribe/internal/models"
	"github.com/Corphon/InterviewScribe/internal/workflow"
)

var _ workflow.API = (*Client)(nil)

func writeEnvelope(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestGenerateQuestionsDecodesSession(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/interview/generate-questions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"sessionId": "session-abc",
				"topic":     "Gardening",
				"questions": []map[string]interface{}{
					{"id": "q-1", "question": "Why gardening?", "order": 1},
					{"id": "q-2", "question": "What grows best?", "order": 2},
				},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", time.Second)
	session, err := c.GenerateQuestions(context.Background(), "Gardening")
	require.NoError(t, err)
	require.Equal(t, "Gardening", gotBody["topic"])
	require.Equal(t, "session-abc", session.ID)
	require.Len(t, session.Questions, 2)
	require.Equal(t, 2, session.Questions[1].Order)
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"error":   "Failed to parse AI response",
			"code":    "GENERATION_PARSE_ERROR",
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).GenerateQuestions(context.Background(), "Gardening")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.Status)
	require.Equal(t, "GENERATION_PARSE_ERROR", apiErr.Code)
	require.Equal(t, "Failed to parse AI response", err.Error())
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).GetArticle(context.Background(), "article-1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "bad gateway", apiErr.Message)
}

func TestTranscribeSendsBase64(t *testing.T) {
	audio := []byte{0x1a, 0x45, 0xdf, 0xa3}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]string
		require.NoError(t, json.Unmarshal(raw, &body))

		decoded, err := base64.StdEncoding.DecodeString(body["audioData"])
		require.NoError(t, err)
		require.Equal(t, audio, decoded)
		require.Equal(t, "webm", body["format"])

		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"text": "hello", "confidence": 0.9, "duration": 3.5},
		})
	}))
	defer srv.Close()

	result, err := New(srv.URL, time.Second).Transcribe(context.Background(), audio, "webm")
	require.NoError(t, err)
	require.Equal(t, "hello", result.Text)
	require.Equal(t, 3.5, result.Duration)
}

func TestGenerateArticlePostsTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/article/generate", r.URL.Path)
		var req models.ArticleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Transcript, 1)

		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"id": "article-1", "title": "Insights on Go", "content": "a b c", "wordCount": 3, "topic": req.Topic,
			},
		})
	}))
	defer srv.Close()

	article, err := New(srv.URL, time.Second).GenerateArticle(context.Background(), models.ArticleRequest{
		Topic:      "Go",
		Transcript: []models.TranscriptLine{{Question: "Why?", Answer: "Because."}},
	})
	require.NoError(t, err)
	require.Equal(t, "article-1", article.ID)
	require.Equal(t, 3, article.WordCount)
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := New(srv.URL, time.Second).GetSession(ctx, "session-1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
