package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisBrokerInvalidURL(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewRedisBroker(Config{URL: "not-a-url://"}, &logger)
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}

func TestNewRedisBrokerUnreachable(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewRedisBroker(Config{URL: "redis://127.0.0.1:1/0", MaxRetries: -1}, &logger)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}

func TestPublishMarshalsMessage(t *testing.T) {
	logger := zerolog.Nop()
	var gotChannel string
	var gotPayload []byte
	b := &RedisBroker{
		cb:     newBreaker("test", &logger),
		logger: &logger,
		publish: func(_ context.Context, channel string, payload []byte) error {
			gotChannel = channel
			gotPayload = payload
			return nil
		},
	}

	require.NoError(t, b.Publish(context.Background(), "notifications", map[string]string{"type": "notification.read"}))
	assert.Equal(t, "notifications", gotChannel)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(gotPayload, &decoded))
	assert.Equal(t, "notification.read", decoded["type"])
	assert.NoError(t, b.Close())
	assert.Error(t, b.Ping(context.Background()))
}

func TestPublishOpensBreakerAfterConsecutiveFailures(t *testing.T) {
	logger := zerolog.Nop()
	calls := 0
	b := &RedisBroker{
		cb:     newBreaker("test", &logger),
		logger: &logger,
		publish: func(context.Context, string, []byte) error {
			calls++
			return errors.New("connection reset")
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 5; i++ {
		assert.ErrorContains(t, b.Publish(ctx, "notifications", "x"), "connection reset")
	}

	err := b.Publish(ctx, "notifications", "x")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, calls)
}
