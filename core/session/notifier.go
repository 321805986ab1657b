package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/sessiontimeout/core/logger"
)

// Reason tells subscribers which path timed a session out.
type Reason string

const (
	// ReasonSweep is used when a sweep removed the session.
	ReasonSweep Reason = "sweep"
	// ReasonInteraction is used when an interaction found the session expired.
	ReasonInteraction Reason = "interaction"
)

// Timeout is delivered to subscribers once per expired session.
type Timeout struct {
	Key      string
	UserID   string
	Identity *Identity // nil when the session is anonymous or the user could not be resolved
	Session  map[string]any
	Reason   Reason
	At       time.Time
}

// Subscriber receives timeout notifications.
type Subscriber interface {
	OnTimeout(ctx context.Context, t Timeout) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, t Timeout) error

func (f SubscriberFunc) OnTimeout(ctx context.Context, t Timeout) error {
	return f(ctx, t)
}

// Notifier fans timeout notifications out to registered subscribers.
// Delivery is synchronous, in registration order. A failing or panicking
// subscriber is logged and does not stop delivery to the others.
type Notifier struct {
	mu     sync.RWMutex
	subs   []*subscription
	logger *slog.Logger
}

type subscription struct {
	sub Subscriber
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithNotifierLogger sets the logger used to report subscriber failures.
func WithNotifierLogger(l *slog.Logger) NotifierOption {
	return func(n *Notifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// NewNotifier creates a notifier with no subscribers.
func NewNotifier(opts ...NotifierOption) *Notifier {
	n := &Notifier{
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe registers sub and returns a function that removes it again.
func (n *Notifier) Subscribe(sub Subscriber) (unsubscribe func()) {
	s := &subscription{sub: sub}

	n.mu.Lock()
	n.subs = append(n.subs, s)
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, cur := range n.subs {
			if cur == s {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeFunc registers fn as a subscriber.
func (n *Notifier) SubscribeFunc(fn func(ctx context.Context, t Timeout) error) (unsubscribe func()) {
	return n.Subscribe(SubscriberFunc(fn))
}

// Len returns the number of registered subscribers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

// Notify delivers t to every subscriber. Each subscriber gets its own copy of
// the session snapshot. The returned error joins all subscriber failures and is
// meant for logging only.
func (n *Notifier) Notify(ctx context.Context, t Timeout) error {
	n.mu.RLock()
	subs := make([]*subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.RUnlock()

	var errs []error
	for i, s := range subs {
		delivered := t
		delivered.Session = Record{Values: t.Session}.Snapshot()

		if err := safeNotify(ctx, s.sub, delivered); err != nil {
			n.logger.ErrorContext(ctx, "timeout subscriber failed",
				logger.Component("session"),
				logger.SessionKey(t.Key),
				slog.Int("subscriber", i),
				logger.Error(err))
			errs = append(errs, fmt.Errorf("%w: subscriber %d: %w", ErrSubscriberFailed, i, err))
		}
	}
	return errors.Join(errs...)
}

func safeNotify(ctx context.Context, sub Subscriber, t Timeout) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panicked: %v", r)
		}
	}()
	return sub.OnTimeout(ctx, t)
}
