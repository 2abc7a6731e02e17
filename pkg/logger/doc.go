// Package logger builds configured log/slog loggers and provides attribute
// helpers for the fields this module logs: errors, component names, rate-limit
// keys and detected threat categories.
//
//	log := logger.New(
//	    logger.WithFormat(logger.FormatJSON),
//	    logger.WithLevel(slog.LevelInfo),
//	    logger.WithAttr(logger.Component("ratelimit")),
//	)
package logger
