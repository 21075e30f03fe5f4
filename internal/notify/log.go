package notify

import (
	"context"

	"github.com/gabapcia/addrwatch/internal/pkg/logger"
)

// Log writes notifications to the structured log. It is the fallback
// channel when no desktop or email delivery is configured, so detections
// are never silently dropped.
type Log struct{}

var _ Notifier = Log{}

func (Log) Notify(ctx context.Context, title, message string) error {
	logger.Info(ctx, "transaction notification",
		"title", title,
		"message", message,
	)
	return nil
}
