// Package workflow sequences one interview from topic entry to the finished article.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Corphon/InterviewScribe/internal/models"
	"github.com/Corphon/InterviewScribe/internal/utils"
)

var (
	// ErrBusy is returned when the same kind of call is already in flight.
	ErrBusy = errors.New("a request for this step is already in progress")
	// ErrDiscarded is returned when Reset ran while the call was outstanding.
	ErrDiscarded = errors.New("workflow was reset, result discarded")

	ErrWrongStep     = errors.New("action not allowed in the current step")
	ErrEmptyTopic    = errors.New("please enter a topic")
	ErrEmptyAnswer   = errors.New("please provide an answer")
	ErrEmptyAudio    = errors.New("no audio recorded")
	ErrInterviewDone = errors.New("all questions have been answered")
	ErrNoTranscript  = errors.New("no answers to write about")
)

// API is the transport boundary the controller drives.
type API interface {
	GenerateQuestions(ctx context.Context, topic string) (models.InterviewSession, error)
	Transcribe(ctx context.Context, audio []byte, format string) (models.TranscriptionResult, error)
	GenerateArticle(ctx context.Context, req models.ArticleRequest) (models.GeneratedArticle, error)
}

// State is a snapshot of the workflow.
type State struct {
	Step                 Step
	Topic                string
	Session              *models.InterviewSession
	CurrentQuestionIndex int
	Transcript           []models.TranscriptEntry
	Article              *models.GeneratedArticle
	InputMode            models.InputMode
	IsLoading            bool
	Error                string
}

func initialState() State {
	return State{Step: StepTopicEntry, InputMode: models.InputModeText}
}

func (s State) clone() State {
	out := s
	if s.Session != nil {
		session := s.Session.Clone()
		out.Session = &session
	}
	if s.Article != nil {
		article := *s.Article
		out.Article = &article
	}
	out.Transcript = append([]models.TranscriptEntry(nil), s.Transcript...)
	return out
}

func (s State) complete() bool {
	return s.Session != nil && len(s.Transcript) >= len(s.Session.Questions)
}

type operation string

const (
	opQuestions  operation = "questions"
	opTranscribe operation = "transcribe"
	opArticle    operation = "article"
)

// Controller owns one interview's client-side state. Network calls run
// without holding mu; results are applied only if no Reset happened meanwhile.
type Controller struct {
	api    API
	logger *utils.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    State
	epoch    uint64
	inflight map[operation]bool
}

// NewController constructs a controller in the topic-entry step.
func NewController(api API, logger *utils.Logger) *Controller {
	if logger == nil {
		logger = utils.NopLogger()
	}
	return &Controller{
		api:      api,
		logger:   logger,
		now:      time.Now,
		state:    initialState(),
		inflight: make(map[operation]bool),
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// begin marks op as in flight after guard accepts the current state.
func (c *Controller) begin(op operation, guard func(s *State) error) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight[op] {
		return 0, ErrBusy
	}
	if guard != nil {
		if err := guard(&c.state); err != nil {
			return 0, err
		}
	}
	c.inflight[op] = true
	c.state.IsLoading = true
	c.state.Error = ""
	return c.epoch, nil
}

// finish clears the loading flag and applies the result unless the epoch moved.
func (c *Controller) finish(op operation, epoch uint64, apply func(s *State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		return ErrDiscarded
	}
	delete(c.inflight, op)
	c.state.IsLoading = len(c.inflight) > 0
	return apply(&c.state)
}

func (c *Controller) transition(s *State, event Event) error {
	next, err := Transition(s.Step, event)
	if err != nil {
		return err
	}
	c.logger.Debug("Workflow transition", map[string]interface{}{
		"from":  string(s.Step),
		"event": string(event),
		"to":    string(next),
	})
	s.Step = next
	return nil
}

func requireStep(s *State, steps ...Step) error {
	for _, step := range steps {
		if s.Step == step {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrWrongStep, s.Step)
}

func errorMessage(err error, fallback string) string {
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return fallback
	}
	return err.Error()
}

// SubmitTopic requests questions for topic and enters the question loop.
func (c *Controller) SubmitTopic(ctx context.Context, topic string) error {
	if strings.TrimSpace(topic) == "" {
		return ErrEmptyTopic
	}

	epoch, err := c.begin(opQuestions, func(s *State) error {
		if err := requireStep(s, StepTopicEntry); err != nil {
			return err
		}
		s.Topic = topic
		return nil
	})
	if err != nil {
		return err
	}

	session, callErr := c.api.GenerateQuestions(ctx, topic)
	if callErr == nil && len(session.Questions) == 0 {
		callErr = errors.New("no questions were generated")
	}

	return c.finish(opQuestions, epoch, func(s *State) error {
		if callErr != nil {
			s.Error = errorMessage(callErr, "Failed to generate questions")
			c.logger.Warn("Question generation failed", map[string]interface{}{"error": s.Error})
			if err := c.transition(s, EventQuestionsFailed); err != nil {
				return err
			}
			return callErr
		}
		if err := c.transition(s, EventQuestionsReady); err != nil {
			return err
		}
		// questions are asked by Order, not by list position
		sort.SliceStable(session.Questions, func(i, j int) bool {
			return session.Questions[i].Order < session.Questions[j].Order
		})
		s.Session = &session
		s.CurrentQuestionIndex = 0
		s.Transcript = nil
		s.Article = nil
		return nil
	})
}

// SetInputMode selects how the next answers are captured.
func (c *Controller) SetInputMode(mode models.InputMode) error {
	if !mode.Valid() {
		return fmt.Errorf("unsupported input mode %q", mode)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.InputMode = mode
	return nil
}

// Transcribe converts recorded audio to text for the current answer.
func (c *Controller) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}

	epoch, err := c.begin(opTranscribe, func(s *State) error {
		if err := requireStep(s, StepQuestionLoop); err != nil {
			return err
		}
		if s.complete() {
			return ErrInterviewDone
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	result, callErr := c.api.Transcribe(ctx, audio, format)

	err = c.finish(opTranscribe, epoch, func(s *State) error {
		if callErr != nil {
			s.Error = errorMessage(callErr, "Failed to transcribe audio")
			return callErr
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// SubmitAnswer records an answer in the current input mode. complete reports
// whether it was the last question. It is rejected with ErrBusy while a
// transcription for the current question is outstanding.
func (c *Controller) SubmitAnswer(answer string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[opTranscribe] {
		return false, ErrBusy
	}
	return c.submitLocked(answer, c.state.InputMode)
}

func (c *Controller) submitLocked(answer string, mode models.InputMode) (bool, error) {
	s := &c.state
	if strings.TrimSpace(answer) == "" {
		return false, ErrEmptyAnswer
	}
	if err := requireStep(s, StepQuestionLoop); err != nil {
		return false, err
	}
	if s.complete() {
		return true, ErrInterviewDone
	}

	question := s.Session.Questions[s.CurrentQuestionIndex]
	s.Transcript = append(s.Transcript, models.TranscriptEntry{
		QuestionID: question.ID,
		Question:   question.Question,
		Answer:     answer,
		Mode:       mode,
		Timestamp:  c.now(),
	})

	if !s.complete() {
		s.CurrentQuestionIndex++
		return false, nil
	}
	if err := c.transition(s, EventInterviewComplete); err != nil {
		return true, err
	}
	return true, nil
}

// AnswerByVoice transcribes audio and submits the text as a voice answer.
func (c *Controller) AnswerByVoice(ctx context.Context, audio []byte, format string) (bool, error) {
	text, err := c.Transcribe(ctx, audio, format)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitLocked(text, models.InputModeVoice)
}

// GenerateArticle requests the article for the collected transcript. It is
// also the retry path after a failed attempt returned to the question loop.
func (c *Controller) GenerateArticle(ctx context.Context) error {
	var req models.ArticleRequest

	epoch, err := c.begin(opArticle, func(s *State) error {
		if err := requireStep(s, StepGenerating, StepQuestionLoop); err != nil {
			return err
		}
		if len(s.Transcript) == 0 {
			return ErrNoTranscript
		}
		if s.Step == StepQuestionLoop {
			if !s.complete() {
				return fmt.Errorf("%w: interview not complete", ErrWrongStep)
			}
			if err := c.transition(s, EventInterviewComplete); err != nil {
				return err
			}
		}

		req.Topic = s.Topic
		req.Transcript = make([]models.TranscriptLine, 0, len(s.Transcript))
		for _, entry := range s.Transcript {
			req.Transcript = append(req.Transcript, entry.Line())
		}
		return nil
	})
	if err != nil {
		return err
	}

	article, callErr := c.api.GenerateArticle(ctx, req)

	return c.finish(opArticle, epoch, func(s *State) error {
		if callErr != nil {
			s.Error = errorMessage(callErr, "Failed to generate article")
			c.logger.Warn("Article generation failed", map[string]interface{}{"error": s.Error})
			if err := c.transition(s, EventArticleFailed); err != nil {
				return err
			}
			return callErr
		}
		if err := c.transition(s, EventArticleReady); err != nil {
			return err
		}
		s.Article = &article
		return nil
	})
}

// Reset discards all state. Outstanding calls finish and their results are dropped.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.inflight = make(map[operation]bool)
	c.state = initialState()
}

// CurrentQuestion returns the question being answered.
func (c *Controller) CurrentQuestion() (models.InterviewQuestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.Session == nil || s.CurrentQuestionIndex >= len(s.Session.Questions) {
		return models.InterviewQuestion{}, false
	}
	return s.Session.Questions[s.CurrentQuestionIndex], true
}

// Progress is the percentage of questions answered.
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Session == nil || len(c.state.Session.Questions) == 0 {
		return 0
	}
	return float64(len(c.state.Transcript)) / float64(len(c.state.Session.Questions)) * 100
}

// IsComplete reports whether every question has an answer.
func (c *Controller) IsComplete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.complete()
}
