package health_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontimeout/core/health"
)

func TestReadiness(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ok := func(context.Context) error { return nil }

	t.Run("all checks pass", func(t *testing.T) {
		t.Parallel()
		err := health.Readiness(ctx, nil,
			health.Check{Name: "redis", Fn: ok},
			health.Check{Name: "postgres", Fn: ok},
		)
		assert.NoError(t, err)
	})

	t.Run("no checks", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, health.Readiness(ctx, nil))
	})

	t.Run("reports every failure by name", func(t *testing.T) {
		t.Parallel()
		refused := errors.New("connection refused")

		err := health.Readiness(ctx, nil,
			health.Check{Name: "redis", Fn: ok},
			health.Check{Name: "postgres", Fn: func(context.Context) error { return refused }},
			health.Check{Name: "mongo", Fn: func(context.Context) error { panic("nil client") }},
			health.Check{Name: "opensearch"},
		)

		require.Error(t, err)
		assert.ErrorIs(t, err, health.ErrNotReady)
		assert.ErrorIs(t, err, refused)
		assert.Contains(t, err.Error(), "postgres: connection refused")
		assert.Contains(t, err.Error(), "mongo: check panicked")
		assert.Contains(t, err.Error(), "opensearch: no check function")
		assert.NotContains(t, err.Error(), "redis")
	})

	t.Run("checks see the caller's context", func(t *testing.T) {
		t.Parallel()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := health.Readiness(cancelled, nil, health.Check{Name: "redis", Fn: func(ctx context.Context) error {
			return ctx.Err()
		}})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
