// Package logger provides structured logging helpers built on log/slog.
//
// New builds a *slog.Logger from options:
//
//	log := logger.New(
//		logger.WithJSONFormatter(),
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithAttr(logger.Component("expiresessions")),
//	)
//
// Attribute helpers are nil safe and return an empty attribute that slog
// drops, so they can be passed unconditionally:
//
//	log.Error("sweep failed",
//		logger.Component("session"),
//		logger.SessionKey(key),
//		logger.Error(err),
//	)
package logger
