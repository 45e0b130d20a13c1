// internal/services/strategy.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Corphon/InterviewScribe/internal/config"
	"github.com/Corphon/InterviewScribe/internal/models"
)

// QuestionGenerator 主题 -> 有序问题列表
type QuestionGenerator interface {
	Generate(ctx context.Context, topic string, count int) ([]models.InterviewQuestion, error)
}

// TranscriptionProvider 音频 -> 文本、置信度、时长
type TranscriptionProvider interface {
	Transcribe(ctx context.Context, audio models.AudioPayload) (*models.TranscriptionResult, error)
}

// ArticleComposer 主题 + 访谈记录 -> 标题与正文
type ArticleComposer interface {
	Compose(ctx context.Context, req models.ArticleRequest) (*models.ArticleDraft, error)
}

// Task 三类生成任务
type Task int

const (
	TaskQuestions Task = iota
	TaskTranscription
	TaskArticle
)

// String 返回任务名称，用于日志和指标
func (t Task) String() string {
	switch t {
	case TaskQuestions:
		return "questions"
	case TaskTranscription:
		return "transcription"
	case TaskArticle:
		return "article"
	default:
		return "unknown"
	}
}

// StrategySelector 根据进程启动时解析的模式为每个任务选择实现。
// 选择是全有或全无的：AI模式下三项任务都使用AI实现，否则都使用离线实现。
type StrategySelector struct {
	mode          config.Mode
	questions     QuestionGenerator
	transcription TranscriptionProvider
	article       ArticleComposer
}

// NewStrategySelector 构造选择器；AI模式下 llmService 为空时，AI实现会在调用时返回配置错误
func NewStrategySelector(mode config.Mode, llmService *LLMService, offlineLatency time.Duration) *StrategySelector {
	s := &StrategySelector{mode: mode}

	switch mode {
	case config.ModeAI:
		s.questions = NewAIQuestionGenerator(llmService)
		s.transcription = NewAITranscriptionProvider(llmService)
		s.article = NewAIArticleComposer(llmService)
	default:
		s.questions = NewTemplateQuestionGenerator(offlineLatency)
		s.transcription = NewMockTranscriptionProvider(offlineLatency)
		s.article = NewTemplateArticleComposer(offlineLatency)
	}

	return s
}

// Mode 当前选择模式
func (s *StrategySelector) Mode() config.Mode {
	return s.mode
}

func (s *StrategySelector) QuestionGenerator() QuestionGenerator {
	return s.questions
}

func (s *StrategySelector) TranscriptionProvider() TranscriptionProvider {
	return s.transcription
}

func (s *StrategySelector) ArticleComposer() ArticleComposer {
	return s.article
}

// Select 返回指定任务的实现
func (s *StrategySelector) Select(task Task) (any, error) {
	switch task {
	case TaskQuestions:
		return s.questions, nil
	case TaskTranscription:
		return s.transcription, nil
	case TaskArticle:
		return s.article, nil
	default:
		return nil, fmt.Errorf("unknown generation task %d", int(task))
	}
}

// simulateLatency 离线实现模拟网络延迟，可被取消
func simulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
