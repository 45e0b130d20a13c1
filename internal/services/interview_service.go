// internal/services/interview_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/Corphon/InterviewScribe/internal/errors"
	"github.com/Corphon/InterviewScribe/internal/models"
	"github.com/Corphon/InterviewScribe/internal/storage"
	"github.com/Corphon/InterviewScribe/internal/utils"
)

// 主题与问题数量的校验范围
const (
	MinTopicLength   = 3
	MaxTopicLength   = 200
	MinQuestionCount = 1
	MaxQuestionCount = 10
)

// SessionStore 会话存储
type SessionStore = storage.MemoryStore[models.InterviewSession]

// Deps 生成服务共享的依赖
type Deps struct {
	Selector     *StrategySelector
	Logger       *utils.Logger
	Metrics      *utils.APIMetrics
	Events       EventPublisher
	Timeout      time.Duration // 每次生成调用的上限
	DefaultCount int
	DefaultWords int // 请求未指定目标字数时使用
}

func (d Deps) normalize() Deps {
	if d.Logger == nil {
		d.Logger = utils.NopLogger()
	}
	if d.Metrics == nil {
		d.Metrics = utils.NewAPIMetrics(nil, d.Logger)
	}
	d.Events = publisherOrNop(d.Events)
	if d.DefaultCount <= 0 {
		d.DefaultCount = MaxTemplateQuestions
	}
	if d.DefaultWords <= 0 {
		d.DefaultWords = models.DefaultTargetWordCount
	}
	return d
}

// withTimeout 为生成调用设置超时
func (d Deps) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.Timeout)
}

// record 记录一次生成任务的指标，并将超时统一转换为超时错误
func (d Deps) record(task Task, start time.Time, err error) error {
	if err != nil {
		err = apperrors.WrapError(err, task.String()+" generation failed", apperrors.ErrorTypeError)
	}
	d.Metrics.RecordGeneration(task.String(), d.Selector.Mode().String(), err, time.Since(start))
	return err
}

// InterviewService 生成问题并保存会话
type InterviewService struct {
	deps     Deps
	sessions *SessionStore
}

// NewInterviewService 创建访谈服务
func NewInterviewService(deps Deps, sessions *SessionStore) *InterviewService {
	if sessions == nil {
		sessions = storage.NewSessionStore[models.InterviewSession]()
	}
	return &InterviewService{
		deps:     deps.normalize(),
		sessions: sessions,
	}
}

// ValidateTopic 主题不能为空白，去掉首尾空白后长度 3-200
func ValidateTopic(topic string) error {
	trimmed := strings.TrimSpace(topic)
	if trimmed == "" {
		return apperrors.NewValidationError("topic is required", nil)
	}
	length := utf8.RuneCountInString(trimmed)
	if length < MinTopicLength || length > MaxTopicLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("topic must be between %d and %d characters", MinTopicLength, MaxTopicLength), nil)
	}
	return nil
}

// GenerateQuestions 生成问题并创建会话；count 为0时使用默认值
func (s *InterviewService) GenerateQuestions(ctx context.Context, topic string, count int) (models.InterviewSession, error) {
	if err := ValidateTopic(topic); err != nil {
		return models.InterviewSession{}, err
	}
	topic = strings.TrimSpace(topic)
	if count == 0 {
		count = s.deps.DefaultCount
	}
	if count < MinQuestionCount || count > MaxQuestionCount {
		return models.InterviewSession{}, apperrors.NewValidationError(
			fmt.Sprintf("count must be between %d and %d", MinQuestionCount, MaxQuestionCount), nil)
	}

	callCtx, cancel := s.deps.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	questions, err := s.deps.Selector.QuestionGenerator().Generate(callCtx, topic, count)
	if err == nil && len(questions) == 0 {
		err = apperrors.NewProcessingError("no questions generated", nil)
	}
	if err = s.deps.record(TaskQuestions, start, err); err != nil {
		return models.InterviewSession{}, err
	}

	session := s.sessions.Create(func(id string) models.InterviewSession {
		return models.InterviewSession{
			ID:        id,
			Topic:     topic,
			Questions: questions,
			CreatedAt: time.Now(),
		}
	})

	s.deps.Logger.Info("Interview session created", map[string]interface{}{
		"session_id": session.ID,
		"topic":      topic,
		"questions":  session.QuestionCount(),
	})
	s.deps.Events.Publish(newEvent(models.EventSessionCreated, session.ID, session.ID, topic))

	return session, nil
}

// GetSession 按ID查询会话
func (s *InterviewService) GetSession(id string) (models.InterviewSession, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return models.InterviewSession{}, apperrors.NewNotFoundError("Session not found", nil)
	}
	return session, nil
}

// ListSessions 按创建顺序列出全部会话
func (s *InterviewService) ListSessions() []models.InterviewSession {
	return s.sessions.List()
}

// SessionCount 会话数量
func (s *InterviewService) SessionCount() int {
	return s.sessions.Len()
}
