package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/layer-3/sentinel/core"
)

// LogoutTopic is the topic logout events are published on
const LogoutTopic = "sentinel.logout"

// LogoutEvent represents a logout event
type LogoutEvent struct {
	Subject string `json:"subject"`
	TokenID string `json:"token_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     LogoutTopic,
	}
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, subject string, tokenID string) error {
	event := LogoutEvent{
		Subject: subject,
		TokenID: tokenID,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(tokenID, payload)
	msg.SetContext(ctx)
	if requestID, ok := core.RequestIDFromContext(ctx); ok {
		middleware.SetCorrelationID(requestID, msg)
	}

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
