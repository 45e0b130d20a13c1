package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Corphon/InterviewScribe/internal/models"
)

type fakeAPI struct {
	questions     int
	questionsErr  error
	transcript    string
	transcribeErr error
	articleErr    error
	// reversed returns the questions last-to-first
	reversed bool

	// gate, when set, blocks calls until closed.
	gate chan struct{}

	questionCalls atomic.Int32
	articleCalls  atomic.Int32

	mu         sync.Mutex
	lastReq    models.ArticleRequest
	lastFormat string
}

func (f *fakeAPI) wait(ctx context.Context) error {
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAPI) GenerateQuestions(ctx context.Context, topic string) (models.InterviewSession, error) {
	f.questionCalls.Add(1)
	if err := f.wait(ctx); err != nil {
		return models.InterviewSession{}, err
	}
	if f.questionsErr != nil {
		return models.InterviewSession{}, f.questionsErr
	}
	session := models.InterviewSession{ID: "session-1", Topic: topic, CreatedAt: time.Now()}
	for i := 1; i <= f.questions; i++ {
		session.Questions = append(session.Questions, models.InterviewQuestion{
			ID:       fmt.Sprintf("q-%d", i),
			Question: fmt.Sprintf("Question %d about %s?", i, topic),
			Order:    i,
		})
	}
	if f.reversed {
		for i, j := 0, len(session.Questions)-1; i < j; i, j = i+1, j-1 {
			session.Questions[i], session.Questions[j] = session.Questions[j], session.Questions[i]
		}
	}
	return session, nil
}

func (f *fakeAPI) Transcribe(ctx context.Context, audio []byte, format string) (models.TranscriptionResult, error) {
	if err := f.wait(ctx); err != nil {
		return models.TranscriptionResult{}, err
	}
	f.mu.Lock()
	f.lastFormat = format
	f.mu.Unlock()
	if f.transcribeErr != nil {
		return models.TranscriptionResult{}, f.transcribeErr
	}
	return models.TranscriptionResult{Text: f.transcript, Confidence: 0.9, Duration: 4}, nil
}

func (f *fakeAPI) GenerateArticle(ctx context.Context, req models.ArticleRequest) (models.GeneratedArticle, error) {
	f.articleCalls.Add(1)
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return models.GeneratedArticle{}, err
	}
	if f.articleErr != nil {
		return models.GeneratedArticle{}, f.articleErr
	}
	return models.GeneratedArticle{ID: "article-1", Title: "Insights on " + req.Topic, Content: "one two three", WordCount: 3, Topic: req.Topic}, nil
}

func answerAll(t *testing.T, c *Controller, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		complete, err := c.SubmitAnswer(fmt.Sprintf("answer %d", i+1))
		require.NoError(t, err)
		require.Equal(t, i == n-1, complete)
	}
}

func TestControllerHappyPath(t *testing.T) {
	api := &fakeAPI{questions: 3}
	c := NewController(api, nil)

	require.NoError(t, c.SubmitTopic(context.Background(), "Gardening"))
	state := c.Snapshot()
	require.Equal(t, StepQuestionLoop, state.Step)
	require.Equal(t, 0, state.CurrentQuestionIndex)
	require.False(t, state.IsLoading)

	q, ok := c.CurrentQuestion()
	require.True(t, ok)
	require.Equal(t, "q-1", q.ID)

	complete, err := c.SubmitAnswer("I grow tomatoes.")
	require.NoError(t, err)
	require.False(t, complete)
	require.InDelta(t, 33.33, c.Progress(), 0.01)

	complete, err = c.SubmitAnswer("Mostly in spring.")
	require.NoError(t, err)
	require.False(t, complete)
	complete, err = c.SubmitAnswer("Compost helps.")
	require.NoError(t, err)
	require.True(t, complete)

	require.True(t, c.IsComplete())
	require.Equal(t, float64(100), c.Progress())
	require.Equal(t, StepGenerating, c.Snapshot().Step)

	require.NoError(t, c.GenerateArticle(context.Background()))
	state = c.Snapshot()
	require.Equal(t, StepArticleDisplay, state.Step)
	require.NotNil(t, state.Article)
	require.Equal(t, "Insights on Gardening", state.Article.Title)

	require.Equal(t, "Gardening", api.lastReq.Topic)
	require.Len(t, api.lastReq.Transcript, 3)
	require.Equal(t, "Question 2 about Gardening?", api.lastReq.Transcript[1].Question)
	require.Equal(t, "Mostly in spring.", api.lastReq.Transcript[1].Answer)

	c.Reset()
	state = c.Snapshot()
	require.Equal(t, StepTopicEntry, state.Step)
	require.Nil(t, state.Session)
	require.Empty(t, state.Transcript)
	require.Nil(t, state.Article)
}

func TestBlankTopicSendsNoRequest(t *testing.T) {
	api := &fakeAPI{questions: 3}
	c := NewController(api, nil)

	require.ErrorIs(t, c.SubmitTopic(context.Background(), "   "), ErrEmptyTopic)
	require.Equal(t, int32(0), api.questionCalls.Load())
	require.Equal(t, StepTopicEntry, c.Snapshot().Step)
}

func TestQuestionFailureStaysOnTopicEntry(t *testing.T) {
	api := &fakeAPI{questionsErr: errors.New("Failed to parse AI response")}
	c := NewController(api, nil)

	err := c.SubmitTopic(context.Background(), "Gardening")
	require.Error(t, err)

	state := c.Snapshot()
	require.Equal(t, StepTopicEntry, state.Step)
	require.Equal(t, "Failed to parse AI response", state.Error)
	require.False(t, state.IsLoading)

	api.questionsErr = nil
	api.questions = 2
	require.NoError(t, c.SubmitTopic(context.Background(), "Gardening"))
	state = c.Snapshot()
	require.Equal(t, StepQuestionLoop, state.Step)
	require.Empty(t, state.Error)
}

func TestBlankAnswerDoesNotMutate(t *testing.T) {
	c := NewController(&fakeAPI{questions: 2}, nil)
	require.NoError(t, c.SubmitTopic(context.Background(), "Gardening"))
	before := c.Snapshot()

	complete, err := c.SubmitAnswer(" \t\n")
	require.ErrorIs(t, err, ErrEmptyAnswer)
	require.False(t, complete)
	require.Equal(t, before, c.Snapshot())
}

func TestAnswersRecordInputMode(t *testing.T) {
	api := &fakeAPI{questions: 3, transcript: "Spoken answer."}
	c := NewController(api, nil)
	require.NoError(t, c.SubmitTopic(context.Background(), "Gardening"))

	_, err := c.SubmitAnswer("typed")
	require.NoError(t, err)

	require.Error(t, c.SetInputMode(models.InputMode("telepathy")))
	require.NoError(t, c.SetInputMode(models.InputModeVoice))
	_, err = c.SubmitAnswer("typed while in voice mode")
	require.NoError(t, err)

	require.NoError(t, c.SetInputMode(models.InputModeText))
	complete, err := c.AnswerByVoice(context.Background(), []byte("audio"), "webm")
	require.NoError(t, err)
	require.True(t, complete)
	require.Equal(t, "webm", api.lastFormat)

	state := c.Snapshot()
	require.Equal(t, models.InputModeText, state.Transcript[0].Mode)
	require.Equal(t, models.InputModeVoice, state.Transcript[1].Mode)
	require.Equal(t, models.InputModeVoice, state.Transcript[2].Mode)
	require.Equal(t, "Spoken answer.", state.Transcript[2].Answer)
	require.Equal(t, models.InputModeText, state.InputMode)
}

func TestTranscribeGuards(t *testing.T) {
	api := &fakeAPI{questions: 1, transcript: "   "}
	c := NewController(api, nil)

	_, err := c.Transcribe(context.Background(), []byte("audio"), "webm")
	require.ErrorIs(t, err, ErrWrongStep)

	require.NoError(t, c.SubmitTopic(context.Background(), "Gardening"))
	_, err = c.Transcribe(context.Background(), nil, "webm")
	require.ErrorIs(t, err, ErrEmptyAudio)

	_, err = c.AnswerByVoice(context.Background(), []byte("audio"), "webm")
	require.ErrorIs(t, err, ErrEmptyAnswer)
	require.Empty(t, c.Snapshot().Transcript)

	api.transcribeErr = errors.New("transcription unavailable")
	_, err = c.Transcribe(context.Background(), []byte("audio"), "webm")
	require.Error(t, err)
	state := c.Snapshot()
	require.Equal(t, "transcription unavailable", state.Error)
	require.False(t, state.IsLoading)
}

func TestSubmitAnswerRejectedOnceComplete(t *testing.T) {
	c := NewController(&fakeAPI{questions: 2}, nil)
	require.NoError(t, c.SubmitTopic(context.Background(), "Gardening"))
	answerAll(t, c, 2)

	_, err := c.SubmitAnswer("one more")
	require.ErrorIs(t, err, ErrWrongStep)
	require.Len(t, c.Snapshot().Transcript, 2)
}

func TestArticleFailureReturnsToLoopAndRetries(t *testing.T) {
	api := &fakeAPI{questions: 2, articleErr: errors.New("upstream timeout")}
	c := NewController(api, nil)
	require.NoError(t, c.SubmitTopic(context.Background(), "Gardening"))
	answerAll(t, c, 2)

	require.Error(t, c.GenerateArticle(context.Background()))
	state := c.Snapshot()
	require.Equal(t, StepQuestionLoop, state.Step)
	require.Equal(t, "upstream timeout", state.Error)
	require.Len(t, state.Transcript, 2)
	require.False(t, state.IsLoading)

	_, err := c.SubmitAnswer("extra")
	require.ErrorIs(t, err, ErrInterviewDone)

	api.articleErr = nil
	require.NoError(t, c.GenerateArticle(context.Background()))
	state = c.Snapshot()
	require.Equal(t, StepArticleDisplay, state.Step)
	require.Empty(t, state.Error)
	require.Equal(t, int32(2), api.articleCalls.Load())
}

func TestGenerateArticleRequiresCompleteInterview(t *testing.T) {
	api := &fakeAPI{questions: 2}
	c := NewController(api, nil)

	require.ErrorIs(t, c.GenerateArticle(context.Background()), ErrWrongStep)

	require.NoError(t, c.SubmitTopic(context.Background(), "Gardening"))
	require.ErrorIs(t, c.GenerateArticle(context.Background()), ErrNoTranscript)

	_, err := c.SubmitAnswer("first")
	require.NoError(t, err)
	require.ErrorIs(t, c.GenerateArticle(context.Background()), ErrWrongStep)
	require.Equal(t, int32(0), api.articleCalls.Load())
}

func TestConcurrentSubmitIsBusy(t *testing.T) {
	api := &fakeAPI{questions: 2, gate: make(chan struct{})}
	c := NewController(api, nil)

	done := make(chan error, 1)
	go func() { done <- c.SubmitTopic(context.Background(), "Gardening") }()

	require.Eventually(t, func() bool { return c.Snapshot().IsLoading }, time.Second, 5*time.Millisecond)
	require.ErrorIs(t, c.SubmitTopic(context.Background(), "Gardening"), ErrBusy)

	close(api.gate)
	require.NoError(t, <-done)
	require.Equal(t, int32(1), api.questionCalls.Load())
	require.False(t, c.Snapshot().IsLoading)
}

func TestResetDropsLateResults(t *testing.T) {
	api := &fakeAPI{questions: 2, gate: make(chan struct{})}
	c := NewController(api, nil)

	done := make(chan error, 1)
	go func() { done <- c.SubmitTopic(context.Background(), "Gardening") }()
	require.Eventually(t, func() bool { return c.Snapshot().IsLoading }, time.Second, 5*time.Millisecond)

	c.Reset()
	close(api.gate)
	require.ErrorIs(t, <-done, ErrDiscarded)

	state := c.Snapshot()
	require.Equal(t, StepTopicEntry, state.Step)
	require.Nil(t, state.Session)
	require.False(t, state.IsLoading)
	require.Empty(t, state.Topic)
}

func TestSnapshotIsACopy(t *testing.T) {
	c := NewController(&fakeAPI{questions: 2}, nil)
	require.NoError(t, c.SubmitTopic(context.Background(), "Gardening"))
	_, err := c.SubmitAnswer("first")
	require.NoError(t, err)

	snap := c.Snapshot()
	snap.Transcript[0].Answer = "mutated"
	snap.Session.Questions[0].Question = "mutated"

	fresh := c.Snapshot()
	require.Equal(t, "first", fresh.Transcript[0].Answer)
	require.NotEqual(t, "mutated", fresh.Session.Questions[0].Question)
}

func TestQuestionsFollowOrderNotPosition(t *testing.T) {
	api := &fakeAPI{questions: 3, reversed: true}
	c := NewController(api, nil)
	require.NoError(t, c.SubmitTopic(context.Background(), "Gardening"))

	q, ok := c.CurrentQuestion()
	require.True(t, ok)
	require.Equal(t, 1, q.Order)
	require.Equal(t, "q-1", q.ID)

	answerAll(t, c, 3)
	transcript := c.Snapshot().Transcript
	for i, entry := range transcript {
		require.Equal(t, fmt.Sprintf("q-%d", i+1), entry.QuestionID)
	}
}

func TestTypedAnswerRejectedWhileTranscribing(t *testing.T) {
	api := &fakeAPI{questions: 2, transcript: "spoken"}
	c := NewController(api, nil)
	require.NoError(t, c.SubmitTopic(context.Background(), "Gardening"))

	api.gate = make(chan struct{})
	type voiceResult struct {
		complete bool
		err      error
	}
	done := make(chan voiceResult, 1)
	go func() {
		complete, err := c.AnswerByVoice(context.Background(), []byte("audio"), "webm")
		done <- voiceResult{complete, err}
	}()
	require.Eventually(t, func() bool { return c.Snapshot().IsLoading }, time.Second, 5*time.Millisecond)

	complete, err := c.SubmitAnswer("typed")
	require.ErrorIs(t, err, ErrBusy)
	require.False(t, complete)
	require.Empty(t, c.Snapshot().Transcript)

	close(api.gate)
	res := <-done
	require.NoError(t, res.err)
	require.False(t, res.complete)

	transcript := c.Snapshot().Transcript
	require.Len(t, transcript, 1)
	require.Equal(t, "q-1", transcript[0].QuestionID)
	require.Equal(t, models.InputModeVoice, transcript[0].Mode)
	require.Equal(t, "spoken", transcript[0].Answer)

	_, err = c.SubmitAnswer("typed")
	require.NoError(t, err)
}
