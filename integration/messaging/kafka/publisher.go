package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/dmitrymomot/sessiontimeout/core/session"
)

// Writer is the part of *kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type timeoutEvent struct {
	SessionKey string            `json:"session_key"`
	UserID     string            `json:"user_id,omitempty"`
	Identity   *session.Identity `json:"identity,omitempty"`
	Reason     session.Reason    `json:"reason"`
	Session    map[string]any    `json:"session"`
	TimedOutAt time.Time         `json:"timed_out_at"`
}

// Publisher writes one message per timeout. It implements session.Subscriber.
type Publisher struct {
	writer Writer
}

// NewPublisher creates a publisher over w, usually a writer from NewWriter.
func NewPublisher(w Writer) *Publisher {
	return &Publisher{writer: w}
}

// OnTimeout implements session.Subscriber.
func (p *Publisher) OnTimeout(ctx context.Context, t session.Timeout) error {
	evt := timeoutEvent{
		SessionKey: t.Key,
		UserID:     t.UserID,
		Identity:   t.Identity,
		Reason:     t.Reason,
		Session:    t.Session,
		TimedOutAt: t.At.UTC(),
	}
	if evt.Session == nil {
		evt.Session = map[string]any{}
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return errors.Join(ErrPublishFailed, err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(t.Key),
		Value:   body,
		Headers: []kafka.Header{{Key: "reason", Value: []byte(t.Reason)}},
		Time:    t.At,
	}); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}
