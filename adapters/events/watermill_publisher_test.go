package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/sentinel/core"
)

type failingPublisher struct{}

func (failingPublisher) Publish(topic string, messages ...*message.Message) error {
	return errors.New("broker unavailable")
}

func (failingPublisher) Close() error { return nil }

func TestWatermillPublisher_PublishLogout(t *testing.T) {
	t.Run("Success_DeliversEvent", func(t *testing.T) {
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
		t.Cleanup(func() { _ = pubSub.Close() })

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		messages, err := pubSub.Subscribe(ctx, LogoutTopic)
		require.NoError(t, err)

		publisher := NewWatermillPublisher(pubSub)
		require.NoError(t, publisher.PublishLogout(ctx, "alice@example.com", "jti-1"))

		select {
		case msg := <-messages:
			msg.Ack()
			assert.Equal(t, "jti-1", msg.UUID)

			var event LogoutEvent
			require.NoError(t, json.Unmarshal(msg.Payload, &event))
			assert.Equal(t, LogoutEvent{Subject: "alice@example.com", TokenID: "jti-1"}, event)
			assert.Empty(t, middleware.MessageCorrelationID(msg))
		case <-ctx.Done():
			t.Fatal("logout event was not delivered")
		}
	})

	t.Run("Success_CarriesRequestID", func(t *testing.T) {
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
		t.Cleanup(func() { _ = pubSub.Close() })

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		messages, err := pubSub.Subscribe(ctx, LogoutTopic)
		require.NoError(t, err)

		publisher := NewWatermillPublisher(pubSub)
		require.NoError(t, publisher.PublishLogout(core.WithRequestID(ctx, "req-42"), "alice@example.com", "jti-2"))

		select {
		case msg := <-messages:
			msg.Ack()
			assert.Equal(t, "req-42", middleware.MessageCorrelationID(msg))
		case <-ctx.Done():
			t.Fatal("logout event was not delivered")
		}
	})

	t.Run("Error_PublisherFailure", func(t *testing.T) {
		publisher := NewWatermillPublisher(failingPublisher{})

		err := publisher.PublishLogout(context.Background(), "alice@example.com", "jti-1")
		assert.ErrorContains(t, err, "broker unavailable")
	})
}
