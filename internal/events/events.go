// Package events publishes domain events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// RecommendationsGenerated is emitted after a user's recommendation list is replaced.
type RecommendationsGenerated struct {
	UserID      string    `json:"user_id"`
	Count       int       `json:"count"`
	Status      string    `json:"status"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ToJSON encodes the event body.
func (e RecommendationsGenerated) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishGenerated(ctx context.Context, evt RecommendationsGenerated) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishGenerated(context.Context, RecommendationsGenerated) error { return nil }
func (NopPublisher) Close() error                                                    { return nil }
