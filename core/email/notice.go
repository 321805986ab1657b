package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/sessiontimeout/core/email/templates"
	"github.com/dmitrymomot/sessiontimeout/core/logger"
	"github.com/dmitrymomot/sessiontimeout/core/session"
)

// TimeoutTag tags session timeout emails.
const TimeoutTag = "session_timeout"

// TimeoutNotifier emails users whose session timed out.
// It implements session.Subscriber. Timeouts without a resolved identity
// or without an email address are skipped.
type TimeoutNotifier struct {
	sender   EmailSender
	appName  string
	loginURL string
	reasons  map[session.Reason]bool
	logger   *slog.Logger
}

// TimeoutNotifierOption configures a TimeoutNotifier.
type TimeoutNotifierOption func(*TimeoutNotifier)

// WithAppName sets the product name shown in the email.
func WithAppName(name string) TimeoutNotifierOption {
	return func(n *TimeoutNotifier) { n.appName = name }
}

// WithLoginURL adds a sign-in link to the email.
func WithLoginURL(url string) TimeoutNotifierOption {
	return func(n *TimeoutNotifier) { n.loginURL = url }
}

// WithReasons limits emails to timeouts detected for the given reasons.
// By default every reason is emailed.
func WithReasons(reasons ...session.Reason) TimeoutNotifierOption {
	return func(n *TimeoutNotifier) {
		n.reasons = make(map[session.Reason]bool, len(reasons))
		for _, r := range reasons {
			n.reasons[r] = true
		}
	}
}

// WithNoticeLogger sets the logger.
func WithNoticeLogger(l *slog.Logger) TimeoutNotifierOption {
	return func(n *TimeoutNotifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// NewTimeoutNotifier creates a subscriber that sends timeout emails through sender.
func NewTimeoutNotifier(sender EmailSender, opts ...TimeoutNotifierOption) *TimeoutNotifier {
	n := &TimeoutNotifier{
		sender: sender,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// OnTimeout implements session.Subscriber.
func (n *TimeoutNotifier) OnTimeout(ctx context.Context, t session.Timeout) error {
	if n.reasons != nil && !n.reasons[t.Reason] {
		return nil
	}
	if t.Identity == nil || t.Identity.Email == "" {
		n.logger.DebugContext(ctx, "no email address for timed out session",
			logger.Component("email"),
			logger.SessionKey(t.Key),
			logger.UserID(t.UserID))
		return nil
	}

	body, err := templates.Render(ctx, templates.SessionTimeout(templates.TimeoutNotice{
		Name:      t.Identity.Name,
		SignedOut: t.At,
		AppName:   n.appName,
		LoginURL:  n.loginURL,
	}))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendEmail, err)
	}

	if err := n.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   t.Identity.Email,
		Subject:  templates.Subject(n.appName),
		BodyHTML: body,
		Tag:      TimeoutTag,
	}); err != nil {
		return err
	}

	n.logger.InfoContext(ctx, "session timeout email sent",
		logger.Component("email"),
		logger.SessionKey(t.Key),
		logger.UserID(t.UserID))
	return nil
}
