// Package cli is the command-line front end: it wires user invocations to
// the monitoring engine, the REST server and the terminal dashboard.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/addrwatch/internal/config"
	"github.com/gabapcia/addrwatch/internal/monitor"
)

// Run builds and executes the addrwatch CLI application.
//
// Available commands:
//
//   - `monitor`: polls a set of addresses and dispatches notifications.
//   - `info`: prints everything known about a single address.
//   - `serve`: runs the REST API server.
//   - `dashboard`: opens the terminal dashboard.
func Run(ctx context.Context, svc monitor.Service, cfg config.Config) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "addrwatch",
		Description:           "Command-line interface for watching Bitcoin address activity.",
		Usage:                 "addrwatch [command] [flags]",
		Commands: []*cli.Command{
			monitorCommand(svc, cfg),
			infoCommand(svc),
			serveCommand(svc, cfg),
			dashboardCommand(svc, cfg),
		},
	}

	return app.Run(ctx, os.Args)
}

// writerOf returns the command's output writer, falling back to stdout.
func writerOf(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
