package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontimeout/core/session"
)

// recorder collects delivered timeouts.
type recorder struct {
	mu       sync.Mutex
	timeouts []session.Timeout
}

func (r *recorder) OnTimeout(_ context.Context, t session.Timeout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeouts = append(r.timeouts, t)
	return nil
}

func (r *recorder) all() []session.Timeout {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.Timeout, len(r.timeouts))
	copy(out, r.timeouts)
	return out
}

func TestNotifier_Notify(t *testing.T) {
	t.Parallel()

	t.Run("delivers to every subscriber in order", func(t *testing.T) {
		t.Parallel()

		n := session.NewNotifier()
		var order []string
		n.SubscribeFunc(func(context.Context, session.Timeout) error {
			order = append(order, "first")
			return nil
		})
		n.SubscribeFunc(func(context.Context, session.Timeout) error {
			order = append(order, "second")
			return nil
		})

		require.NoError(t, n.Notify(context.Background(), session.Timeout{Key: "k"}))
		assert.Equal(t, []string{"first", "second"}, order)
		assert.Equal(t, 2, n.Len())
	})

	t.Run("isolates failing and panicking subscribers", func(t *testing.T) {
		t.Parallel()

		n := session.NewNotifier()
		rec := &recorder{}
		boom := errors.New("smtp down")

		n.SubscribeFunc(func(context.Context, session.Timeout) error { return boom })
		n.SubscribeFunc(func(context.Context, session.Timeout) error { panic("nil map") })
		n.Subscribe(rec)

		err := n.Notify(context.Background(), session.Timeout{Key: "k", UserID: "42"})

		require.Error(t, err)
		assert.ErrorIs(t, err, session.ErrSubscriberFailed)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "panicked")
		require.Len(t, rec.all(), 1)
		assert.Equal(t, "42", rec.all()[0].UserID)
	})

	t.Run("subscribers cannot alter each other's snapshot", func(t *testing.T) {
		t.Parallel()

		n := session.NewNotifier()
		rec := &recorder{}
		n.SubscribeFunc(func(_ context.Context, t session.Timeout) error {
			t.Session["theme"] = "tampered"
			return nil
		})
		n.Subscribe(rec)

		snapshot := map[string]any{"theme": "dark"}
		require.NoError(t, n.Notify(context.Background(), session.Timeout{Key: "k", Session: snapshot}))

		assert.Equal(t, "dark", snapshot["theme"])
		assert.Equal(t, "dark", rec.all()[0].Session["theme"])
	})

	t.Run("unsubscribe removes only that subscriber", func(t *testing.T) {
		t.Parallel()

		n := session.NewNotifier()
		first, second := &recorder{}, &recorder{}
		unsubscribe := n.Subscribe(first)
		n.Subscribe(second)

		unsubscribe()
		unsubscribe()

		require.NoError(t, n.Notify(context.Background(), session.Timeout{Key: "k"}))
		assert.Empty(t, first.all())
		assert.Len(t, second.all(), 1)
		assert.Equal(t, 1, n.Len())
	})

	t.Run("no subscribers", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, session.NewNotifier().Notify(context.Background(), session.Timeout{}))
	})
}
