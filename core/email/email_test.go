package email_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiontimeout/core/email"
	"github.com/dmitrymomot/sessiontimeout/core/session"
)

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	valid := email.SendEmailParams{SendTo: "alice@example.com", Subject: "Hi", BodyHTML: "<p>Hi</p>"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*email.SendEmailParams)
	}{
		{"missing recipient", func(p *email.SendEmailParams) { p.SendTo = " " }},
		{"malformed recipient", func(p *email.SendEmailParams) { p.SendTo = "alice" }},
		{"missing subject", func(p *email.SendEmailParams) { p.Subject = "" }},
		{"missing body", func(p *email.SendEmailParams) { p.BodyHTML = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := valid
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), email.ErrInvalidParams)
		})
	}
}

func TestDevSender(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "mail")
	sender := email.NewDevSender(dir)

	err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "alice@example.com",
		Subject:  "Signed out",
		BodyHTML: "<p>bye</p>",
		Tag:      "Session Timeout",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, e := range entries {
		assert.Contains(t, e.Name(), "session_timeout")
		if strings.HasSuffix(e.Name(), ".json") {
			raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			var meta map[string]string
			require.NoError(t, json.Unmarshal(raw, &meta))
			assert.Equal(t, "alice@example.com", meta["send_to"])
		}
	}

	err = sender.SendEmail(context.Background(), email.SendEmailParams{})
	assert.ErrorIs(t, err, email.ErrInvalidParams)
}

func TestTimeoutNotifier(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	capture := func() (email.EmailSender, *[]email.SendEmailParams) {
		var sent []email.SendEmailParams
		return email.SenderFunc(func(_ context.Context, p email.SendEmailParams) error {
			sent = append(sent, p)
			return nil
		}), &sent
	}

	t.Run("emails the resolved user", func(t *testing.T) {
		t.Parallel()
		sender, sent := capture()
		n := email.NewTimeoutNotifier(sender, email.WithAppName("Acme"))

		err := n.OnTimeout(context.Background(), session.Timeout{
			Key:      "k",
			UserID:   "42",
			Identity: &session.Identity{ID: "42", Email: "alice@example.com", Name: "Alice"},
			Reason:   session.ReasonSweep,
			At:       at,
		})

		require.NoError(t, err)
		require.Len(t, *sent, 1)
		got := (*sent)[0]
		assert.Equal(t, "alice@example.com", got.SendTo)
		assert.Equal(t, "You have been signed out of Acme", got.Subject)
		assert.Equal(t, email.TimeoutTag, got.Tag)
		assert.Contains(t, got.BodyHTML, "Hi Alice,")
	})

	t.Run("skips sessions without an email", func(t *testing.T) {
		t.Parallel()
		sender, sent := capture()
		n := email.NewTimeoutNotifier(sender)

		require.NoError(t, n.OnTimeout(context.Background(), session.Timeout{Key: "k"}))
		require.NoError(t, n.OnTimeout(context.Background(), session.Timeout{Key: "k", Identity: &session.Identity{ID: "42"}}))
		assert.Empty(t, *sent)
	})

	t.Run("filters by reason", func(t *testing.T) {
		t.Parallel()
		sender, sent := capture()
		n := email.NewTimeoutNotifier(sender, email.WithReasons(session.ReasonSweep))
		identity := &session.Identity{ID: "42", Email: "alice@example.com"}

		require.NoError(t, n.OnTimeout(context.Background(), session.Timeout{Identity: identity, Reason: session.ReasonInteraction}))
		require.NoError(t, n.OnTimeout(context.Background(), session.Timeout{Identity: identity, Reason: session.ReasonSweep}))
		assert.Len(t, *sent, 1)
	})

	t.Run("returns sender failures", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("smtp: 421 service not available")
		n := email.NewTimeoutNotifier(email.SenderFunc(func(context.Context, email.SendEmailParams) error {
			return errors.Join(email.ErrFailedToSendEmail, boom)
		}))

		err := n.OnTimeout(context.Background(), session.Timeout{
			Identity: &session.Identity{ID: "42", Email: "alice@example.com"},
		})
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
		assert.ErrorIs(t, err, boom)
	})
}
