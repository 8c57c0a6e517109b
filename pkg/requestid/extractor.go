package requestid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/moodlog/pkg/logger"
)

// LogKey is the attribute key request ids are logged under.
const LogKey = "request_id"

// LoggerExtractor adds the request id carried by a context to log records.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id := FromContext(ctx)
		if id == "" {
			return slog.Attr{}, false
		}
		return slog.String(LogKey, id), true
	}
}
