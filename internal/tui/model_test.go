package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/InterviewScribe/internal/models"
	"github.com/Corphon/InterviewScribe/internal/workflow"
)

type stubAPI struct {
	questions  int
	articleErr error
	lastFormat string
}

func (s *stubAPI) GenerateQuestions(_ context.Context, topic string) (models.InterviewSession, error) {
	session := models.InterviewSession{ID: "session-1", Topic: topic, CreatedAt: time.Now()}
	for i := 1; i <= s.questions; i++ {
		session.Questions = append(session.Questions, models.InterviewQuestion{
			ID:       fmt.Sprintf("q-%d", i),
			Question: fmt.Sprintf("Question %d?", i),
			Order:    i,
		})
	}
	return session, nil
}

func (s *stubAPI) Transcribe(_ context.Context, _ []byte, format string) (models.TranscriptionResult, error) {
	s.lastFormat = format
	return models.TranscriptionResult{Text: "spoken answer", Confidence: 0.9}, nil
}

func (s *stubAPI) GenerateArticle(_ context.Context, req models.ArticleRequest) (models.GeneratedArticle, error) {
	if s.articleErr != nil {
		return models.GeneratedArticle{}, s.articleErr
	}
	return models.GeneratedArticle{
		ID:        "article-1",
		Title:     "Insights on " + req.Topic,
		Content:   "A short article body.",
		WordCount: 4,
		Topic:     req.Topic,
	}, nil
}

func newTestModel(api *stubAPI) Model {
	return New(context.Background(), workflow.NewController(api, nil))
}

func applyUpdate(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	return applyUpdate(m, cmd())
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		if r == ' ' {
			m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func enter(m Model) (Model, tea.Cmd) {
	return applyUpdate(m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestTypingAndBackspace(t *testing.T) {
	m := newTestModel(&stubAPI{questions: 2})
	m = typeText(m, "Go tooling")
	require.Equal(t, "Go tooling", m.input)

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyBackspace})
	require.Equal(t, "Go toolin", m.input)
	require.Contains(t, m.View(), "Go toolin")
}

func TestEmptyTopicShowsNotice(t *testing.T) {
	m := newTestModel(&stubAPI{questions: 2})
	m, cmd := enter(m)
	require.Nil(t, cmd)
	require.Equal(t, workflow.ErrEmptyTopic.Error(), m.notice)
	require.Contains(t, m.View(), "please enter a topic")
}

func TestFullTextInterview(t *testing.T) {
	api := &stubAPI{questions: 2}
	m := newTestModel(api)

	m = typeText(m, "Go")
	m, cmd := enter(m)
	m, _ = run(t, m, cmd)
	require.Equal(t, workflow.StepQuestionLoop, m.controller.Snapshot().Step)
	require.Empty(t, m.input)
	require.Contains(t, m.View(), "1. Question 1?")

	m = typeText(m, "first answer")
	m, cmd = enter(m)
	require.Nil(t, cmd)
	require.Contains(t, m.View(), "A: first answer")
	require.Contains(t, m.View(), "1/2")

	m = typeText(m, "second answer")
	m, cmd = enter(m)
	require.Equal(t, workflow.StepGenerating, m.controller.Snapshot().Step)
	require.Contains(t, m.View(), "Writing your article")

	m, _ = run(t, m, cmd)
	state := m.controller.Snapshot()
	require.Equal(t, workflow.StepArticleDisplay, state.Step)
	view := m.View()
	require.Contains(t, view, "Insights on Go")
	require.Contains(t, view, "4 words")
}

func TestBlankAnswerIsRejected(t *testing.T) {
	m := newTestModel(&stubAPI{questions: 2})
	m = typeText(m, "Go")
	m, cmd := enter(m)
	m, _ = run(t, m, cmd)

	m = typeText(m, "   ")
	m, cmd = enter(m)
	require.Nil(t, cmd)
	require.Equal(t, workflow.ErrEmptyAnswer.Error(), m.notice)
	require.Empty(t, m.controller.Snapshot().Transcript)
}

func TestTabTogglesInputMode(t *testing.T) {
	m := newTestModel(&stubAPI{questions: 2})

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, models.InputModeText, m.controller.Snapshot().InputMode, "tab is ignored before the loop")

	m = typeText(m, "Go")
	m, cmd := enter(m)
	m, _ = run(t, m, cmd)

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, models.InputModeVoice, m.controller.Snapshot().InputMode)
	require.Contains(t, m.View(), "VOICE")

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, models.InputModeText, m.controller.Snapshot().InputMode)
}

func TestVoiceAnswerFromFile(t *testing.T) {
	api := &stubAPI{questions: 1}
	m := newTestModel(api)
	m = typeText(m, "Go")
	m, cmd := enter(m)
	m, _ = run(t, m, cmd)
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyTab})

	path := filepath.Join(t.TempDir(), "answer.ogg")
	require.NoError(t, os.WriteFile(path, []byte("audio-bytes"), 0o600))

	m = typeText(m, path)
	m, cmd = enter(m)
	m, cmd = run(t, m, cmd)
	require.Equal(t, "ogg", api.lastFormat)

	transcript := m.controller.Snapshot().Transcript
	require.Len(t, transcript, 1)
	require.Equal(t, "spoken answer", transcript[0].Answer)
	require.Equal(t, models.InputModeVoice, transcript[0].Mode)

	// last answer starts the article
	m, _ = run(t, m, cmd)
	require.Equal(t, workflow.StepArticleDisplay, m.controller.Snapshot().Step)
}

func TestVoiceAnswerMissingFile(t *testing.T) {
	m := newTestModel(&stubAPI{questions: 1})
	m = typeText(m, "Go")
	m, cmd := enter(m)
	m, _ = run(t, m, cmd)
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyTab})

	m = typeText(m, filepath.Join(t.TempDir(), "missing.webm"))
	m, cmd = enter(m)
	m, _ = run(t, m, cmd)
	require.True(t, strings.HasPrefix(m.notice, "read audio file"))
	require.Empty(t, m.controller.Snapshot().Transcript)
}

func TestArticleFailureThenRetry(t *testing.T) {
	api := &stubAPI{questions: 1, articleErr: errors.New("model overloaded")}
	m := newTestModel(api)
	m = typeText(m, "Go")
	m, cmd := enter(m)
	m, _ = run(t, m, cmd)

	m = typeText(m, "only answer")
	m, cmd = enter(m)
	m, _ = run(t, m, cmd)
	require.Equal(t, workflow.StepQuestionLoop, m.controller.Snapshot().Step)
	require.Contains(t, m.View(), "model overloaded")
	require.Contains(t, m.View(), "Press Enter to write the article")

	api.articleErr = nil
	m, cmd = enter(m)
	m, _ = run(t, m, cmd)
	require.Equal(t, workflow.StepArticleDisplay, m.controller.Snapshot().Step)
	require.Empty(t, m.notice)
}

func TestArticleScreenKeys(t *testing.T) {
	m := newTestModel(&stubAPI{questions: 1})
	m = typeText(m, "Go")
	m, cmd := enter(m)
	m, _ = run(t, m, cmd)
	m = typeText(m, "answer")
	m, cmd = enter(m)
	m, _ = run(t, m, cmd)
	require.Equal(t, workflow.StepArticleDisplay, m.controller.Snapshot().Step)

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	require.Equal(t, workflow.StepTopicEntry, m.controller.Snapshot().Step)
	require.Empty(t, m.controller.Snapshot().Transcript)
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(&stubAPI{questions: 1})
	_, cmd := applyUpdate(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	require.True(t, ok)

	// q is ordinary text while typing a topic
	m, cmd = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.Nil(t, cmd)
	require.Equal(t, "q", m.input)
}

func TestResetClearsEverything(t *testing.T) {
	m := newTestModel(&stubAPI{questions: 2})
	m = typeText(m, "Go")
	m, cmd := enter(m)
	m, _ = run(t, m, cmd)
	m = typeText(m, "partial")

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.Empty(t, m.input)
	state := m.controller.Snapshot()
	require.Equal(t, workflow.StepTopicEntry, state.Step)
	require.Empty(t, state.Topic)
}

func TestDiscardedResultIsSilent(t *testing.T) {
	m := newTestModel(&stubAPI{questions: 2})
	m, _ = applyUpdate(m, QuestionsReadyMsg{Err: workflow.ErrDiscarded})
	require.Empty(t, m.notice)
}

func TestSpinnerAndResize(t *testing.T) {
	m := newTestModel(&stubAPI{questions: 2})
	m, cmd := applyUpdate(m, SpinnerTickMsg{})
	require.NotNil(t, cmd)
	require.Equal(t, 1, m.spinner)

	m, _ = applyUpdate(m, tea.WindowSizeMsg{Width: 40, Height: 20})
	require.Equal(t, 40, m.width)
	require.Contains(t, m.View(), strings.Repeat("─", 40))
}

func TestAudioFormat(t *testing.T) {
	require.Equal(t, "wav", audioFormat("/tmp/answer.WAV"))
	require.Equal(t, models.DefaultAudioFormat, audioFormat("/tmp/answer"))
}
