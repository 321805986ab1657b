package email

import "errors"

var (
	// ErrFailedToSendEmail wraps provider and rendering failures.
	ErrFailedToSendEmail = errors.New("failed to send email")
	// ErrInvalidConfig is returned by sender constructors.
	ErrInvalidConfig = errors.New("invalid email configuration")
	// ErrInvalidParams is returned before any network access when a message is malformed.
	ErrInvalidParams = errors.New("invalid email parameters")
)
