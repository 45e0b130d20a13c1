package services

import (
	"context"
	"sync"
	"time"

	"github.com/Corphon/InterviewScribe/internal/config"
	"github.com/Corphon/InterviewScribe/internal/llm"
	"github.com/Corphon/InterviewScribe/internal/models"
)

// fakeProvider returns canned text and records prompts.
type fakeProvider struct {
	mu      sync.Mutex
	text    string
	err     error
	delay   time.Duration
	prompts []string
}

func (f *fakeProvider) Initialize(map[string]string) error { return nil }
func (f *fakeProvider) GetName() string                    { return "fake" }
func (f *fakeProvider) GetSupportedModels() []string       { return []string{"fake-1"} }

func (f *fakeProvider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Text: f.text}, nil
}

func (f *fakeProvider) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// fakeTranscriber adds the transcription capability.
type fakeTranscriber struct {
	fakeProvider
	transcript string
	duration   float64
	gotFormat  string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req llm.TranscriptionRequest) (*llm.TranscriptionResponse, error) {
	f.gotFormat = req.Format
	if f.err != nil {
		return nil, f.err
	}
	return &llm.TranscriptionResponse{Text: f.transcript, Duration: f.duration}, nil
}

func aiSelector(provider llm.Provider) *StrategySelector {
	return NewStrategySelector(config.ModeAI, NewLLMServiceWithProvider("fake", provider), 0)
}

func offlineSelector() *StrategySelector {
	return NewStrategySelector(config.ModeOffline, nil, 0)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordingPublisher) Publish(event models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingPublisher) all() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}
