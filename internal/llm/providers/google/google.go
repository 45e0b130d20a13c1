// internal/llm/providers/google/google.go
package google

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Corphon/InterviewScribe/internal/llm"
)

const defaultModel = "gemini-2.0-flash"

func init() {
	llm.Register("gemini", func() llm.Provider {
		return &Provider{
			models: []string{
				"gemini-2.5-pro",
				"gemini-2.5-flash",
				"gemini-2.0-flash",
			},
		}
	})
}

// Provider 基于 genai SDK 的 Gemini 提供者，文本生成与音频转写共用同一模型接口
type Provider struct {
	client             *genai.Client
	defaultModel       string
	transcriptionModel string
	models             []string
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey := strings.TrimSpace(config["api_key"])
	if apiKey == "" {
		return fmt.Errorf("Gemini: %w", llm.ErrMissingAPIKey)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL := config["base_url"]; baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return fmt.Errorf("创建Gemini客户端失败: %w", err)
	}
	p.client = client

	p.defaultModel = defaultModel
	if model := config["default_model"]; model != "" {
		p.defaultModel = model
	}
	p.transcriptionModel = p.defaultModel
	if model := config["transcription_model"]; model != "" {
		p.transcriptionModel = model
	}

	return nil
}

func (p *Provider) GetName() string {
	return "google gemini"
}

func (p *Provider) GetSupportedModels() []string {
	return p.models
}

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	result, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), generationConfig(req))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text, finishReason, err := responseText(result)
	if err != nil {
		return nil, err
	}

	resp := &llm.CompletionResponse{
		Text:         text,
		FinishReason: finishReason,
		ModelName:    model,
		ProviderName: p.GetName(),
	}
	if result.UsageMetadata != nil {
		resp.TokensUsed = int(result.UsageMetadata.TotalTokenCount)
	}
	return resp, nil
}

// Transcribe 以内联音频加指令的方式让模型输出逐字稿；Gemini 不返回时长
func (p *Provider) Transcribe(ctx context.Context, req llm.TranscriptionRequest) (*llm.TranscriptionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.transcriptionModel
	}

	parts := []*genai.Part{
		genai.NewPartFromText("Transcribe this audio verbatim. Respond with the transcript text only."),
		genai.NewPartFromBytes(req.Audio, audioMIMEType(req.Format)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := p.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("transcribe audio: %w", err)
	}

	text, _, err := responseText(result)
	if err != nil {
		return nil, err
	}
	return &llm.TranscriptionResponse{Text: strings.TrimSpace(text)}, nil
}

func generationConfig(req llm.CompletionRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if len(req.StopWords) > 0 {
		cfg.StopSequences = req.StopWords
	}
	return cfg
}

// responseText 拼接首个候选的全部文本片段
func responseText(result *genai.GenerateContentResponse) (string, string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", "", fmt.Errorf("Gemini: %w", llm.ErrEmptyCompletion)
	}

	candidate := result.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String(), string(candidate.FinishReason), nil
}

// audioMIMEType 将文件扩展名映射为 MIME 类型
func audioMIMEType(format string) string {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "", "webm":
		return "audio/webm"
	case "mp3", "mpeg":
		return "audio/mp3"
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	case "m4a", "mp4", "aac":
		return "audio/aac"
	case "flac":
		return "audio/flac"
	default:
		return "audio/" + strings.ToLower(format)
	}
}

// 确保实现了转写能力
var _ llm.Transcriber = (*Provider)(nil)
