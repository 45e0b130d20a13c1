// internal/models/event.go
package models

import "time"

// EventType 推送给事件订阅者的事件类型
type EventType string

const (
	EventSessionCreated         EventType = "session.created"
	EventArticleCreated         EventType = "article.created"
	EventTranscriptionCompleted EventType = "transcription.completed"
)

// Event 生成流程中产生的事件
type Event struct {
	Type      EventType `json:"type"`
	ID        string    `json:"id,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	Topic     string    `json:"topic,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
