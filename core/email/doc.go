// Package email sends transactional emails through a provider-agnostic
// EmailSender and ships the subscriber that tells users their session timed out.
//
// Providers live in integration/email (smtp, postmark). DevSender writes
// emails to disk for local development:
//
//	sender := email.NewDevSender("./dev_emails")
//
// TimeoutNotifier plugs into the session notifier:
//
//	manager.Notifier().Subscribe(email.NewTimeoutNotifier(sender,
//		email.WithAppName("Acme"),
//		email.WithLoginURL("https://acme.example/login"),
//		email.WithReasons(session.ReasonSweep),
//	))
//
// Only timeouts whose identity carries an email address produce a message,
// so an identity resolver has to be configured on the manager.
//
// Errors wrap ErrInvalidParams, ErrInvalidConfig or ErrFailedToSendEmail
// and can be checked with errors.Is.
package email
