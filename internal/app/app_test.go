package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Corphon/InterviewScribe/internal/config"
	apperrors "github.com/Corphon/InterviewScribe/internal/errors"
	"github.com/Corphon/InterviewScribe/internal/models"
)

func TestNewOfflineApp(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultQuestionCount = 3

	a, err := New(cfg, nil, nil)
	require.NoError(t, err)
	require.Equal(t, config.ModeOffline, a.Mode())
	require.Equal(t, "offline", a.ProviderName())
	require.Nil(t, a.LLM)

	session, err := a.Interviews.GenerateQuestions(context.Background(), "Urban beekeeping", 0)
	require.NoError(t, err)
	require.Len(t, session.Questions, 3)

	article, err := a.Articles.GenerateArticle(context.Background(), models.ArticleRequest{
		Topic: "Urban beekeeping",
		Transcript: []models.TranscriptLine{
			{Question: session.Questions[0].Question, Answer: "Bees are calmer than people think."},
		},
	}, session.ID)
	require.NoError(t, err)

	result, err := a.Exports.ExportArticle(article.ID, models.ExportFormatMarkdown)
	require.NoError(t, err)
	require.Contains(t, string(result.Content), article.Title)
}

func TestNewAIApp(t *testing.T) {
	cfg := config.Default()
	cfg.APIKey = "test-key"
	cfg.LLMProvider = config.ProviderOpenAI

	a, err := New(cfg, nil, nil)
	require.NoError(t, err)
	require.Equal(t, config.ModeAI, a.Mode())
	require.Equal(t, "openai", a.ProviderName())
	require.True(t, a.LLM.SupportsTranscription())
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.APIKey = "test-key"
	cfg.LLMProvider = "carrier-pigeon"

	_, err := New(cfg, nil, nil)
	require.Error(t, err)
	require.True(t, apperrors.IsConfigurationError(err))
}
