// internal/models/transcription.go
package models

// DefaultAudioFormat 未指定格式时使用的音频容器
const DefaultAudioFormat = "webm"

// TranscriptionResult 语音转写结果，仅返回给调用方，不做持久化
type TranscriptionResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0-1
	Duration   float64 `json:"duration"`   // 秒
}

// AudioPayload 已编码的音频数据
type AudioPayload struct {
	Data   []byte
	Format string
}
