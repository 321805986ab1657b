package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontimeout/core/session"
)

var baseTime = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func tieredConfig() session.Config {
	return session.NewConfig(
		session.WithExpire(1500*time.Second),
		session.WithIdle(600*time.Second),
		session.WithOverdue(1200*time.Second),
	)
}

func stampedRecord(init time.Time) session.Record {
	rec := session.Record{Key: "sess-1", Values: map[string]any{}}
	rec.SetInitTimestamp(init)
	return rec
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cfg := tieredConfig()
	now := baseTime

	tests := []struct {
		name    string
		elapsed time.Duration
		want    session.Status
	}{
		{"just stamped", 0, session.StatusActive},
		{"below idle", 599 * time.Second, session.StatusActive},
		{"exactly idle", 600 * time.Second, session.StatusActive},
		{"idle", 700 * time.Second, session.StatusIdle},
		{"exactly overdue", 1200 * time.Second, session.StatusIdle},
		{"overdue", 1300 * time.Second, session.StatusOverdue},
		{"exactly expire", 1500 * time.Second, session.StatusOverdue},
		{"just past expire", 1500*time.Second + time.Millisecond, session.StatusExpired},
		{"expired", 1600 * time.Second, session.StatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := stampedRecord(now.Add(-tt.elapsed))
			assert.Equal(t, tt.want, session.Classify(rec, now, cfg))
			assert.Equal(t, tt.want == session.StatusExpired, session.IsExpired(rec, now, cfg))
		})
	}
}

func TestClassify_Examples(t *testing.T) {
	t.Parallel()

	cfg := tieredConfig()
	now := baseTime

	t.Run("idle after 700 seconds", func(t *testing.T) {
		t.Parallel()
		rec := stampedRecord(now.Add(-700 * time.Second))
		assert.Equal(t, session.StatusIdle, session.Classify(rec, now, cfg))
		assert.Equal(t, 700*time.Second, session.IdleTime(rec, now))
	})

	t.Run("overdue after 1300 seconds", func(t *testing.T) {
		t.Parallel()
		rec := stampedRecord(now.Add(-1300 * time.Second))
		assert.Equal(t, session.StatusOverdue, session.Classify(rec, now, cfg))
	})

	t.Run("expired after 1600 seconds", func(t *testing.T) {
		t.Parallel()
		rec := stampedRecord(now.Add(-1600 * time.Second))
		assert.Equal(t, session.StatusExpired, session.Classify(rec, now, cfg))
	})
}

func TestClassify_Unstamped(t *testing.T) {
	t.Parallel()

	cfg := tieredConfig()
	now := baseTime

	t.Run("native expiry in the future is new", func(t *testing.T) {
		t.Parallel()
		rec := session.Record{Key: "k", Values: map[string]any{"cart": 1}, ExpiresAt: now.Add(time.Hour)}
		assert.Equal(t, session.StatusNew, session.Classify(rec, now, cfg))
		assert.False(t, session.IsExpired(rec, now, cfg))
	})

	t.Run("native expiry in the past is expired", func(t *testing.T) {
		t.Parallel()
		rec := session.Record{Key: "k", ExpiresAt: now.Add(-time.Second)}
		assert.Equal(t, session.StatusExpired, session.Classify(rec, now, cfg))
		assert.True(t, session.IsExpired(rec, now, cfg))
	})

	t.Run("native expiry equal to now is not expired", func(t *testing.T) {
		t.Parallel()
		rec := session.Record{Key: "k", ExpiresAt: now}
		assert.Equal(t, session.StatusNew, session.Classify(rec, now, cfg))
	})

	t.Run("no native expiry is new", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, session.StatusNew, session.Classify(session.Record{}, now, cfg))
		assert.Zero(t, session.IdleTime(session.Record{}, now))
	})
}

func TestClassify_OptionalTiers(t *testing.T) {
	t.Parallel()

	now := baseTime
	cfg := session.NewConfig(session.WithExpire(time.Hour))

	rec := stampedRecord(now.Add(-59 * time.Minute))
	assert.Equal(t, session.StatusActive, session.Classify(rec, now, cfg))

	rec = stampedRecord(now.Add(-61 * time.Minute))
	assert.Equal(t, session.StatusExpired, session.Classify(rec, now, cfg))

	t.Run("only idle tier", func(t *testing.T) {
		t.Parallel()
		cfg := session.NewConfig(session.WithExpire(time.Hour), session.WithIdle(10*time.Minute))
		rec := stampedRecord(now.Add(-50 * time.Minute))
		assert.Equal(t, session.StatusIdle, session.Classify(rec, now, cfg))
	})

	t.Run("default expire applies when unset", func(t *testing.T) {
		t.Parallel()
		cfg := session.DefaultConfig()
		rec := stampedRecord(now.Add(-session.DefaultExpire))
		assert.Equal(t, session.StatusActive, session.Classify(rec, now, cfg))
		rec = stampedRecord(now.Add(-session.DefaultExpire - time.Second))
		assert.Equal(t, session.StatusExpired, session.Classify(rec, now, cfg))
	})
}

func TestClassify_ZeroThresholds(t *testing.T) {
	t.Parallel()

	now := baseTime
	cfg := session.NewConfig(
		session.WithExpire(0),
		session.WithIdle(0),
		session.WithOverdue(0),
	)

	rec := stampedRecord(now)
	assert.Equal(t, session.StatusActive, session.Classify(rec, now, cfg))

	assert.Equal(t, session.StatusExpired, session.Classify(rec, now.Add(time.Millisecond), cfg))

	idleOnly := session.NewConfig(session.WithExpire(time.Hour), session.WithIdle(0))
	assert.Equal(t, session.StatusIdle, session.Classify(rec, now.Add(time.Second), idleOnly))
}

func TestClassify_Monotonic(t *testing.T) {
	t.Parallel()

	configs := []session.Config{
		tieredConfig(),
		session.NewConfig(session.WithExpire(30 * time.Minute)),
		session.NewConfig(session.WithExpire(30*time.Minute), session.WithIdle(5*time.Minute)),
		session.NewConfig(session.WithExpire(30*time.Minute), session.WithOverdue(20*time.Minute)),
		session.NewConfig(session.WithExpire(0), session.WithIdle(0)),
	}

	rec := stampedRecord(baseTime)
	for i, cfg := range configs {
		prev := session.StatusNew
		for step := time.Duration(0); step <= 2*time.Hour; step += 7 * time.Second {
			got := session.Classify(rec, baseTime.Add(step), cfg)
			require.Truef(t, got.AtLeast(prev), "config %d: status went from %s to %s at %s", i, prev, got, step)
			prev = got
		}
		assert.Equal(t, session.StatusExpired, prev)
	}
}

func TestClassify_FutureStamp(t *testing.T) {
	t.Parallel()

	rec := stampedRecord(baseTime.Add(time.Minute))
	assert.Equal(t, session.StatusActive, session.Classify(rec, baseTime, tieredConfig()))
	assert.Zero(t, session.IdleTime(rec, baseTime))
}

func TestStatus_Names(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", session.StatusIdle.String())
	assert.Equal(t, "IDLE", session.StatusIdle.Label())
	assert.Equal(t, "NEW", session.StatusNew.Label())
	assert.Equal(t, "TIMEOUT", session.StatusExpired.Label())

	assert.True(t, session.StatusExpired.AtLeast(session.StatusOverdue))
	assert.False(t, session.StatusActive.AtLeast(session.StatusIdle))

	for _, name := range []string{"overdue", "OVERDUE", " Overdue "} {
		s, err := session.ParseStatus(name)
		require.NoError(t, err)
		assert.Equal(t, session.StatusOverdue, s)
	}

	s, err := session.ParseStatus("TIMEOUT")
	require.NoError(t, err)
	assert.Equal(t, session.StatusExpired, s)

	_, err = session.ParseStatus("asleep")
	assert.Error(t, err)

	text, err := session.StatusActive.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "active", string(text))

	var decoded session.Status
	require.NoError(t, decoded.UnmarshalText([]byte("expired")))
	assert.Equal(t, session.StatusExpired, decoded)

	_, err = session.Status(42).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "status(42)", session.Status(42).String())
}
