// internal/services/events.go
package services

import (
	"time"

	"github.com/Corphon/InterviewScribe/internal/models"
)

// EventPublisher 接收生成流程中的事件，例如推送给WebSocket订阅者
type EventPublisher interface {
	Publish(event models.Event)
}

// nopPublisher 未配置订阅者时丢弃事件
type nopPublisher struct{}

func (nopPublisher) Publish(models.Event) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func newEvent(eventType models.EventType, id, sessionID, topic string) models.Event {
	return models.Event{
		Type:      eventType,
		ID:        id,
		SessionID: sessionID,
		Topic:     topic,
		Timestamp: time.Now(),
	}
}
