// Package postmark implements email.EmailSender on top of Postmark's
// transactional email API.
//
// Configuration comes from the environment:
//
//	type Config struct {
//		PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN,required"`
//		PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN,required"`
//		SenderEmail          string `env:"SENDER_EMAIL,required"`
//		SupportEmail         string `env:"SUPPORT_EMAIL,required"`
//	}
//
// Usage:
//
//	sender, err := postmark.New(cfg)
//	if err != nil {
//		return err
//	}
//	manager.Notifier().Subscribe(email.NewTimeoutNotifier(sender))
//
// Every message tracks opens and HTML link clicks, and replies go to SupportEmail.
// API failures, including non-zero Postmark error codes, wrap email.ErrFailedToSendEmail.
package postmark
