// Package notify delivers transaction alerts through one or more channels
// (desktop popups, email) and adapts them to the monitoring engine's
// callback shape.
package notify

import (
	"context"

	"github.com/gabapcia/addrwatch/internal/monitor"
	"github.com/gabapcia/addrwatch/internal/pkg/logger"
)

// Notifier delivers a single notification.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Multi fans a notification out to every channel. A failing channel is
// logged and never prevents the remaining ones from being attempted.
type Multi []Notifier

var _ Notifier = Multi(nil)

func (m Multi) Notify(ctx context.Context, title, message string) error {
	for _, notifier := range m {
		if err := notifier.Notify(ctx, title, message); err != nil {
			logger.Error(ctx, "notification channel failed",
				"title", title,
				"error", err,
			)
		}
	}
	return nil
}

// Callback adapts a Notifier into the monitoring engine's transaction
// callback, sending one notification per detected transaction.
func Callback(notifier Notifier) monitor.TransactionCallback {
	return func(ctx context.Context, address string, txs []monitor.Transaction) error {
		for _, tx := range txs {
			title, message := FormatTransactionMessage(address, tx)
			if err := notifier.Notify(ctx, title, message); err != nil {
				return err
			}
		}
		return nil
	}
}
