package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontimeout/core/session"
	"github.com/dmitrymomot/sessiontimeout/integration/messaging/kafka"
)

type fakeWriter struct {
	msgs []segkafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestPublisher_OnTimeout(t *testing.T) {
	t.Parallel()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("writes one keyed message", func(t *testing.T) {
		t.Parallel()
		w := &fakeWriter{}
		pub := kafka.NewPublisher(w)

		err := pub.OnTimeout(context.Background(), session.Timeout{
			Key:      "sess-1",
			UserID:   "42",
			Identity: &session.Identity{ID: "42", Email: "ada@example.com"},
			Session:  map[string]any{"theme": "dark"},
			Reason:   session.ReasonSweep,
			At:       at,
		})

		require.NoError(t, err)
		require.Len(t, w.msgs, 1)
		msg := w.msgs[0]
		assert.Equal(t, "sess-1", string(msg.Key))
		assert.Equal(t, at, msg.Time)
		require.Len(t, msg.Headers, 1)
		assert.Equal(t, "reason", msg.Headers[0].Key)
		assert.Equal(t, "sweep", string(msg.Headers[0].Value))

		var body map[string]any
		require.NoError(t, json.Unmarshal(msg.Value, &body))
		assert.Equal(t, "sess-1", body["session_key"])
		assert.Equal(t, "42", body["user_id"])
		assert.Equal(t, "sweep", body["reason"])
		assert.Equal(t, "2025-03-01T12:00:00Z", body["timed_out_at"])
		assert.Equal(t, map[string]any{"theme": "dark"}, body["session"])
		assert.Equal(t, "ada@example.com", body["identity"].(map[string]any)["email"])
	})

	t.Run("anonymous sessions get an empty snapshot", func(t *testing.T) {
		t.Parallel()
		w := &fakeWriter{}

		require.NoError(t, kafka.NewPublisher(w).OnTimeout(context.Background(), session.Timeout{Key: "k", At: at}))

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.msgs[0].Value, &body))
		assert.Equal(t, map[string]any{}, body["session"])
		assert.NotContains(t, body, "user_id")
		assert.NotContains(t, body, "identity")
	})

	t.Run("wraps writer failures", func(t *testing.T) {
		t.Parallel()
		brokerDown := errors.New("leader not available")

		err := kafka.NewPublisher(&fakeWriter{err: brokerDown}).OnTimeout(context.Background(), session.Timeout{Key: "k"})

		assert.ErrorIs(t, err, kafka.ErrPublishFailed)
		assert.ErrorIs(t, err, brokerDown)
	})
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	w := kafka.NewWriter(kafka.Config{Brokers: []string{"localhost:9092"}, Topic: "session.timeouts"})

	assert.Equal(t, "session.timeouts", w.Topic)
	assert.Equal(t, segkafka.RequireAll, w.RequiredAcks)
	assert.Equal(t, "localhost:9092", w.Addr.String())
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	err := kafka.Healthcheck(kafka.Config{})(context.Background())
	assert.ErrorIs(t, err, kafka.ErrNoBrokers)

	// Port 1 on localhost refuses connections.
	err = kafka.Healthcheck(kafka.Config{Brokers: []string{"127.0.0.1:1"}, DialTimeout: time.Second})(context.Background())
	assert.ErrorIs(t, err, kafka.ErrHealthcheckFailed)
}
