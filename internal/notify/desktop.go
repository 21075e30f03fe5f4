package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrUnsupportedPlatform is returned when no desktop notification command
// exists for the current operating system.
var ErrUnsupportedPlatform = errors.New("desktop notifications are not supported on this platform")

// runCommandFunc runs an external notification command. Overridable in
// tests.
type runCommandFunc func(ctx context.Context, name string, args ...string) error

// Desktop shows notifications through the OS notification daemon, using
// osascript on macOS and notify-send on Linux.
type Desktop struct {
	goos string
	run  runCommandFunc
}

var _ Notifier = (*Desktop)(nil)

// NewDesktop builds a desktop notifier for the current platform.
func NewDesktop() *Desktop {
	return &Desktop{
		goos: runtime.GOOS,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

func (d *Desktop) Notify(ctx context.Context, title, message string) error {
	switch d.goos {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", message, title)
		return d.run(ctx, "osascript", "-e", script)
	case "linux":
		return d.run(ctx, "notify-send", title, message)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, d.goos)
	}
}
