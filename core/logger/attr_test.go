package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontimeout/core/logger"
)

func TestErrors(t *testing.T) {
	t.Parallel()
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	empty := logger.Errors(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestElapsed(t *testing.T) {
	t.Parallel()
	start := time.Now().Add(-500 * time.Millisecond)
	attr := logger.Elapsed(start)
	require.Equal(t, "elapsed", attr.Key)
	assert.GreaterOrEqual(t, attr.Value.Duration(), 500*time.Millisecond)
}

func TestSessionIdentifiers(t *testing.T) {
	t.Parallel()

	attr := logger.SessionKey("abc")
	require.Equal(t, "session_key", attr.Key)
	assert.Equal(t, "abc", attr.Value.String())
	assert.True(t, logger.SessionKey("").Equal(slog.Attr{}))

	attr = logger.UserID("42")
	require.Equal(t, "user_id", attr.Key)
	assert.Equal(t, "42", attr.Value.String())
	assert.True(t, logger.UserID("").Equal(slog.Attr{}))

	attr = logger.ID("sweep_id", "s-1")
	require.Equal(t, "sweep_id", attr.Key)
	assert.True(t, logger.ID("sweep_id", nil).Equal(slog.Attr{}))
}

func TestMetadata(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "session", logger.Component("session").Value.String())

	attr := logger.Count("removed", 3)
	require.Equal(t, "removed", attr.Key)
	assert.Equal(t, int64(3), attr.Value.Int64())
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with static attrs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithAttr(slog.String("service", "svc")),
			logger.WithOutput(&buf),
		)
		log.Info("hello", logger.Component("session"), logger.Error(nil))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hello", entry["msg"])
		assert.Equal(t, "svc", entry["service"])
		assert.Equal(t, "session", entry["component"])
		assert.NotContains(t, entry, "error")
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithLevel(slog.LevelWarn),
			logger.WithOutput(&buf),
		)
		log.Info("dropped")
		assert.Empty(t, buf.String())

		log.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("debug level text output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithTextFormatter(),
			logger.WithLevel(slog.LevelDebug),
			logger.WithOutput(&buf),
		)
		log.Debug("details")
		assert.Contains(t, buf.String(), "msg=details")
	})

	t.Run("nop discards", func(t *testing.T) {
		t.Parallel()
		log := logger.Nop()
		require.NotNil(t, log)
		assert.NotPanics(t, func() { log.Error("dropped", logger.Error(errors.New("boom"))) })
	})
}
