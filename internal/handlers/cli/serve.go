package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/addrwatch/internal/config"
	"github.com/gabapcia/addrwatch/internal/handlers/rest"
	"github.com/gabapcia/addrwatch/internal/monitor"
)

// serveCommand returns the CLI command that runs the REST API server.
//
// Usage example:
//
//	addrwatch serve --listen :8080 --desktop-notify
func serveCommand(svc monitor.Service, cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:        "serve",
		Description: "Run the REST API server for managing monitored addresses.",
		Usage:       "Serves the HTTP API. Terminates gracefully on Ctrl+C or termination signals.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Address the HTTP server binds to",
				Value: cfg.RESTListenAddr,
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
			notifier, err := buildNotifier(c, cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := rest.NewServer(svc, notifier, c.String("listen"), cfg.PollInterval, cfg.FiatCurrency)

			if err := server.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
