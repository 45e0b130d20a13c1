// internal/services/transcription_provider.go
package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/Corphon/InterviewScribe/internal/models"
)

var mockTranscripts = []string{
	"I've been working in this field for about five years now, and it's been an incredible journey of learning and growth.",
	"The biggest challenge I face is staying up-to-date with the rapidly evolving landscape while maintaining deep expertise.",
	"What really excites me is the potential for innovation and the impact we can have on people's lives.",
	"I believe the key to success is combining technical excellence with genuine curiosity and empathy.",
	"My advice would be to never stop learning and to embrace failure as a stepping stone to success.",
	"The most rewarding aspect is seeing ideas come to life and knowing they make a difference.",
	"I think the future holds tremendous opportunities for those who are willing to adapt and innovate.",
}

// 离线转写报告的数值范围
const (
	mockMinConfidence = 0.85
	mockMaxConfidence = 0.99
	mockMinDuration   = 3.0
	mockMaxDuration   = 10.0
)

// aiTranscriptionConfidence 提供者不返回置信度时使用的固定值
const aiTranscriptionConfidence = 0.95

// MockTranscriptionProvider 离线转写：文本只由音频长度决定
type MockTranscriptionProvider struct {
	latency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockTranscriptionProvider(latency time.Duration) *MockTranscriptionProvider {
	return &MockTranscriptionProvider{
		latency: latency,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *MockTranscriptionProvider) Transcribe(ctx context.Context, audio models.AudioPayload) (*models.TranscriptionResult, error) {
	if err := simulateLatency(ctx, p.latency); err != nil {
		return nil, err
	}

	text := mockTranscripts[len(audio.Data)%len(mockTranscripts)]

	p.mu.Lock()
	confidence := mockMinConfidence + p.rng.Float64()*(mockMaxConfidence-mockMinConfidence)
	duration := mockMinDuration + p.rng.Float64()*(mockMaxDuration-mockMinDuration)
	p.mu.Unlock()

	return &models.TranscriptionResult{
		Text:       text,
		Confidence: confidence,
		Duration:   duration,
	}, nil
}

// AITranscriptionProvider 委托给提供者的转写能力，原样返回文本
type AITranscriptionProvider struct {
	llm *LLMService
	now func() time.Time
}

func NewAITranscriptionProvider(llmService *LLMService) *AITranscriptionProvider {
	return &AITranscriptionProvider{llm: llmService, now: time.Now}
}

func (p *AITranscriptionProvider) Transcribe(ctx context.Context, audio models.AudioPayload) (*models.TranscriptionResult, error) {
	format := audio.Format
	if format == "" {
		format = models.DefaultAudioFormat
	}

	start := p.now()
	resp, err := p.llm.Transcribe(ctx, audio.Data, format)
	if err != nil {
		return nil, err
	}

	duration := resp.Duration
	if duration <= 0 {
		// 提供者未返回时长时使用实际耗时
		duration = p.now().Sub(start).Seconds()
	}

	return &models.TranscriptionResult{
		Text:       resp.Text,
		Confidence: aiTranscriptionConfidence,
		Duration:   duration,
	}, nil
}
