// Package tui renders a terminal dashboard with the monitored addresses,
// their balances and a rolling feed of detected transactions.
package tui

import (
	"fmt"
	"sort"
	"time"

	tuigo "github.com/marcusolsson/tui-go"

	"github.com/gabapcia/addrwatch/internal/monitor"
)

// feedSize caps how many detections stay visible in the feed.
const feedSize = 10

// event is one detected transaction heading for the feed.
type event struct {
	address string
	tx      monitor.Transaction
}

// dashboard owns the widgets. It is only touched from the event loop in
// Run, never from the UI goroutine.
type dashboard struct {
	root      tuigo.Widget
	status    *tuigo.Label
	balances  *tuigo.Table
	feed      *tuigo.Box
	feedLines []string
}

func newDashboard() *dashboard {
	status := tuigo.NewLabel("starting...")

	balances := tuigo.NewTable(0, 0)

	feed := tuigo.NewVBox()
	feedBox := tuigo.NewVBox(feed, tuigo.NewSpacer())
	feedBox.SetTitle("Detected transactions")
	feedBox.SetBorder(true)

	balancesBox := tuigo.NewVBox(balances, tuigo.NewSpacer())
	balancesBox.SetTitle("Monitored addresses")
	balancesBox.SetBorder(true)

	root := tuigo.NewVBox(
		tuigo.NewHBox(status, tuigo.NewSpacer()),
		balancesBox,
		feedBox,
		tuigo.NewLabel("press q or Esc to quit"),
	)

	return &dashboard{
		root:     root,
		status:   status,
		balances: balances,
		feed:     feed,
	}
}

// refresh redraws the balance table from a table snapshot.
func (d *dashboard) refresh(table map[string]int64) {
	addresses := make([]string, 0, len(table))
	for address := range table {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	d.balances.RemoveRows()
	for _, address := range addresses {
		d.balances.AppendRow(
			tuigo.NewLabel(address),
			tuigo.NewLabel(fmt.Sprintf("%.8f BTC", float64(table[address])/1e8)),
		)
	}

	d.status.SetText(fmt.Sprintf("monitoring %d address(es), updated %s",
		len(addresses),
		time.Now().Format("15:04:05"),
	))
}

// appendEvent pushes a detection onto the feed, dropping the oldest line
// once the feed is full.
func (d *dashboard) appendEvent(ev event) {
	line := fmt.Sprintf("%s  %s  %+.8f BTC",
		time.Now().Format("15:04:05"),
		ev.address,
		float64(ev.tx.NetAmount(ev.address))/1e8,
	)

	d.feedLines = append(d.feedLines, line)
	if len(d.feedLines) > feedSize {
		d.feedLines = d.feedLines[len(d.feedLines)-feedSize:]
	}

	for d.feed.Length() > 0 {
		d.feed.Remove(0)
	}
	for _, l := range d.feedLines {
		d.feed.Append(tuigo.NewLabel(l))
	}
}
