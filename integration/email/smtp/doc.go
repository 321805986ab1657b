// Package smtp sends session timeout notices through any SMTP server.
//
// Client implements email.EmailSender and supports STARTTLS, direct TLS and
// plain connections. Every message opens its own connection, bounded by the
// caller's context and Config.DialTimeout.
//
//	var cfg smtp.Config
//	config.MustLoad(&cfg) // SMTP_HOST, SMTP_PORT, SMTP_USERNAME, ...
//
//	sender, err := smtp.New(cfg)
//	if err != nil {
//		return err
//	}
//	notifier := email.NewTimeoutNotifier(sender, email.WithAppName("Acme"))
//	manager.Notifier().Subscribe(notifier)
//
// # TLS Modes
//
//   - "starttls": plain connection upgraded to TLS (port 587)
//   - "tls": direct TLS connection (port 465)
//   - "plain": no encryption, local relays and development only
//
// Configuration and message parameters are validated before any network
// access; failures wrap email.ErrInvalidConfig or email.ErrInvalidParams.
package smtp
