package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/addrwatch/internal/config"
	"github.com/gabapcia/addrwatch/internal/monitor"
	"github.com/gabapcia/addrwatch/internal/notify"
)

// buildNotifier assembles the notification channels selected on the command
// line. Without any channel the structured log is used, so detections are
// still visible.
func buildNotifier(c *cli.Command, cfg config.Config) (notify.Notifier, error) {
	var channels notify.Multi

	if c.Bool("desktop-notify") {
		channels = append(channels, notify.NewDesktop())
	}

	if c.Bool("email-notify") {
		if cfg.SMTPHost == "" || cfg.SMTPFrom == "" || len(cfg.SMTPTo) == 0 {
			return nil, errors.New("email notifications require ADDRWATCH_SMTP_HOST, ADDRWATCH_SMTP_FROM and ADDRWATCH_SMTP_TO")
		}
		channels = append(channels, notify.NewEmail(notify.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			To:       cfg.SMTPTo,
		}))
	}

	if len(channels) == 0 {
		channels = append(channels, notify.Log{})
	}

	return channels, nil
}

// monitorCommand returns the CLI command that polls a set of addresses and
// dispatches notifications for newly detected transactions.
//
// Usage example:
//
//	addrwatch monitor --interval 1m --desktop-notify bc1q... 1A1zP...
//
// The process runs until it receives an interrupt (SIGINT or SIGTERM) and
// then exits cleanly.
func monitorCommand(svc monitor.Service, cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:        "monitor",
		Description: "Poll the given Bitcoin addresses and notify on new transactions.",
		Usage:       "Monitors one or more addresses. Terminates gracefully on Ctrl+C or termination signals.",
		ArgsUsage:   "<address> [<address>...]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Delay between poll cycles",
				Value: cfg.PollInterval,
			},
			&cli.BoolFlag{
				Name:  "desktop-notify",
				Usage: "Show desktop notifications for detected transactions",
			},
			&cli.BoolFlag{
				Name:  "email-notify",
				Usage: "Send email notifications using the configured SMTP settings",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			addresses := c.Args().Slice()
			if len(addresses) == 0 {
				return errors.New("at least one address is required")
			}

			notifier, err := buildNotifier(c, cfg)
			if err != nil {
				return err
			}

			interval := c.Duration("interval")
			if interval <= 0 {
				interval = time.Minute
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return svc.MonitorAddresses(ctx, addresses, interval, notify.Callback(notifier))
		},
	}
}
