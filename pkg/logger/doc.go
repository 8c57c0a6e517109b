// Package logger provides a context-aware wrapper around Go's slog package
// with functional options for configuration and attribute helpers that keep
// key names consistent across the moodlog packages.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(environment.Parse(os.Getenv("APP_ENV")), "moodlog-session"),
//	)
//	logger.SetAsDefault(log)
//
//	log.Warn("device fingerprint mismatch",
//	    logger.Component("session"),
//	    logger.Scope("user"),
//	)
//
// # Configuration
//
//   - WithEnvironment / WithDevelopment / WithProduction – defaults per environment.
//   - WithFormat / WithTextFormatter / WithJSONFormatter – override output format.
//   - WithLevel – set a custom slog.Level.
//   - WithAttr – attach static attributes.
//   - WithContextExtractors / WithContextValue – inject attributes from context.
//
// The default logger writes JSON to stderr so CLI output on stdout stays clean.
//
// # Error Handling
//
// Error and Errors produce attributes only for non-nil errors:
//
//	log.Error("read session", logger.Error(err))
package logger
