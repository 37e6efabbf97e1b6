package messaging

import (
	"context"
	"time"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}

// Publisher defines the interface for publishing typed events
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// Message is the envelope written to the broker
type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Published time.Time   `json:"published_at"`
}

// ChannelPublisher publishes every event on a single broker channel
type ChannelPublisher struct {
	broker  Broker
	channel string
	now     func() time.Time
}

func NewChannelPublisher(broker Broker, channel string) *ChannelPublisher {
	return &ChannelPublisher{
		broker:  broker,
		channel: channel,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (p *ChannelPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	return p.broker.Publish(ctx, p.channel, Message{
		Type:      eventType,
		Payload:   payload,
		Published: p.now(),
	})
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
