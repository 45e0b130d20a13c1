// internal/services/llm_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	apperrors "github.com/Corphon/InterviewScribe/internal/errors"
	"github.com/Corphon/InterviewScribe/internal/llm"
)

var ErrLLMNotReady = errors.New("llm service not ready")

// LLMService 封装已初始化的提供者，供AI策略调用
type LLMService struct {
	provider     llm.Provider
	providerName string
}

// NewLLMService 通过注册表创建并初始化提供者
func NewLLMService(providerName string, settings map[string]string) (*LLMService, error) {
	provider, err := llm.GetProvider(providerName, settings)
	if err != nil {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("failed to initialize LLM provider %q", providerName), err)
	}
	return NewLLMServiceWithProvider(providerName, provider), nil
}

// NewLLMServiceWithProvider 使用已有的提供者实例
func NewLLMServiceWithProvider(providerName string, provider llm.Provider) *LLMService {
	return &LLMService{
		provider:     provider,
		providerName: providerName,
	}
}

// IsReady 提供者是否可用
func (s *LLMService) IsReady() bool {
	return s != nil && s.provider != nil
}

// GetProviderName 返回提供者名称
func (s *LLMService) GetProviderName() string {
	if s == nil {
		return ""
	}
	return s.providerName
}

// SupportsTranscription 提供者是否具备语音转写能力
func (s *LLMService) SupportsTranscription() bool {
	return s.IsReady() && llm.SupportsTranscription(s.provider)
}

// CompleteText 单轮文本生成
func (s *LLMService) CompleteText(ctx context.Context, systemPrompt, prompt string, temperature float32, maxTokens int) (string, error) {
	if !s.IsReady() {
		return "", apperrors.NewConfigurationError("AI provider not configured", ErrLLMNotReady)
	}

	resp, err := s.provider.CompleteText(ctx, llm.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
	})
	if err != nil {
		return "", apperrors.WrapError(err, "AI provider request failed", apperrors.ErrorTypeError)
	}
	return resp.Text, nil
}

// Transcribe 调用提供者的语音转写能力
func (s *LLMService) Transcribe(ctx context.Context, audio []byte, format string) (*llm.TranscriptionResponse, error) {
	if !s.IsReady() {
		return nil, apperrors.NewConfigurationError("AI provider not configured for transcription", ErrLLMNotReady)
	}

	transcriber, ok := s.provider.(llm.Transcriber)
	if !ok {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("provider %q does not support transcription", s.providerName), nil)
	}

	resp, err := transcriber.Transcribe(ctx, llm.TranscriptionRequest{Audio: audio, Format: format})
	if err != nil {
		return nil, apperrors.WrapError(err, "transcription request failed", apperrors.ErrorTypeError)
	}
	return resp, nil
}

// 清理JSON字符串，去除Markdown代码块和零宽字符
var jsonNoiseReplacer = strings.NewReplacer(
	"```json", "",
	"```JSON", "",
	"```", "",
	"\ufeff", "",
	"\u00a0", " ",
)

// CleanLLMJSONResponse 截取响应中第一个完整的JSON数组或对象；找不到时原样返回
func CleanLLMJSONResponse(raw string) string {
	s := jsonNoiseReplacer.Replace(raw)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060':
			return -1
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	s = s[start:]

	opening, closing := byte('{'), byte('}')
	if s[0] == '[' {
		opening, closing = '[', ']'
	}

	// 简单的括号计数匹配，忽略字符串内部的括号
	balance := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		char := s[i]
		if escaped {
			escaped = false
			continue
		}
		if char == '\\' {
			escaped = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch char {
		case opening:
			balance++
		case closing:
			balance--
			if balance == 0 {
				return strings.TrimSpace(s[:i+1])
			}
		}
	}

	// 没有匹配的结束符，交给调用方的解析器报错
	return strings.TrimSpace(s)
}
