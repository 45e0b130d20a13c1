// internal/services/transcription_service.go
package services

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	apperrors "github.com/Corphon/InterviewScribe/internal/errors"
	"github.com/Corphon/InterviewScribe/internal/models"
)

// TranscriptionService 语音转写，结果不保存
type TranscriptionService struct {
	deps Deps
}

func NewTranscriptionService(deps Deps) *TranscriptionService {
	return &TranscriptionService{deps: deps.normalize()}
}

// DecodeAudio 解码 base64 音频，空数据或非法编码返回校验错误
func DecodeAudio(audioData string) ([]byte, error) {
	audioData = strings.TrimSpace(audioData)
	if audioData == "" {
		return nil, apperrors.NewValidationError("audioData is required", nil)
	}

	// 兼容 data URL 形式：data:audio/webm;base64,....
	if idx := strings.Index(audioData, ";base64,"); idx != -1 && strings.HasPrefix(audioData, "data:") {
		audioData = audioData[idx+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(audioData)
	if err != nil {
		return nil, apperrors.NewValidationError("audioData must be valid base64", err)
	}
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("audioData is empty", nil)
	}
	return data, nil
}

// Transcribe 转写已解码的音频；sessionID 仅用于事件推送
func (s *TranscriptionService) Transcribe(ctx context.Context, audio models.AudioPayload, sessionID string) (*models.TranscriptionResult, error) {
	if len(audio.Data) == 0 {
		return nil, apperrors.NewValidationError("audioData is required", nil)
	}
	if audio.Format == "" {
		audio.Format = models.DefaultAudioFormat
	}

	callCtx, cancel := s.deps.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	result, err := s.deps.Selector.TranscriptionProvider().Transcribe(callCtx, audio)
	if err = s.deps.record(TaskTranscription, start, err); err != nil {
		return nil, err
	}

	s.deps.Logger.Debug("Audio transcribed", map[string]interface{}{
		"bytes":      len(audio.Data),
		"format":     audio.Format,
		"confidence": result.Confidence,
	})
	s.deps.Events.Publish(newEvent(models.EventTranscriptionCompleted, "", sessionID, ""))

	return result, nil
}

// TranscribeBase64 解码后转写
func (s *TranscriptionService) TranscribeBase64(ctx context.Context, audioData, format, sessionID string) (*models.TranscriptionResult, error) {
	data, err := DecodeAudio(audioData)
	if err != nil {
		return nil, err
	}
	return s.Transcribe(ctx, models.AudioPayload{Data: data, Format: format}, sessionID)
}
