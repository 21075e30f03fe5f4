package tui

import (
	"context"
	"time"

	tuigo "github.com/marcusolsson/tui-go"

	"github.com/gabapcia/addrwatch/internal/monitor"
	"github.com/gabapcia/addrwatch/internal/pkg/x/chflow"
)

// Run opens the dashboard and drives a background monitoring loop over the
// given addresses (or the engine's current table when none are given).
// It returns when the user quits with q or Esc, or when ctx is done.
func Run(ctx context.Context, svc monitor.Service, addresses []string, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan event, 64)
	callback := func(cbCtx context.Context, address string, txs []monitor.Transaction) error {
		for _, tx := range txs {
			chflow.Send(cbCtx, events, event{address: address, tx: tx})
		}
		return nil
	}

	monitorErr := make(chan error, 1)
	go func() {
		if len(addresses) > 0 {
			monitorErr <- svc.MonitorAddresses(ctx, addresses, interval, callback)
		} else {
			monitorErr <- svc.MonitorContinuously(ctx, interval, callback)
		}
	}()

	d := newDashboard()
	d.refresh(svc.ListAddresses())

	ui, err := tuigo.New(d.root)
	if err != nil {
		return err
	}
	ui.SetKeybinding("q", func() { ui.Quit() })
	ui.SetKeybinding("Esc", func() { ui.Quit() })

	uiErr := make(chan error, 1)
	go func() { uiErr <- ui.Run() }()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ui.Quit()
			return <-uiErr

		case err := <-uiErr:
			return err

		case err := <-monitorErr:
			if err != nil {
				ui.Quit()
				<-uiErr
				return err
			}

		case ev := <-events:
			d.appendEvent(ev)
			ui.Repaint()

		case <-ticker.C:
			d.refresh(svc.ListAddresses())
			ui.Repaint()
		}
	}
}
