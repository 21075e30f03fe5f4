package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/addrwatch/internal/config"
	"github.com/gabapcia/addrwatch/internal/handlers/tui"
	"github.com/gabapcia/addrwatch/internal/monitor"
)

// dashboardCommand returns the CLI command that opens the terminal
// dashboard. Addresses given as arguments are monitored; without arguments
// the engine's current table is used.
//
// Usage example:
//
//	addrwatch dashboard --interval 30s bc1q... 1A1zP...
func dashboardCommand(svc monitor.Service, cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:        "dashboard",
		Description: "Open a terminal dashboard with balances and a live transaction feed.",
		Usage:       "Monitors addresses in a full-screen terminal UI. Quit with q or Esc.",
		ArgsUsage:   "[<address>...]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Delay between poll cycles",
				Value: cfg.PollInterval,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			interval := c.Duration("interval")
			if interval <= 0 {
				interval = time.Minute
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return tui.Run(ctx, svc, c.Args().Slice(), interval)
		},
	}
}
