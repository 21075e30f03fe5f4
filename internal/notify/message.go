package notify

import (
	"fmt"
	"strings"

	"github.com/gabapcia/addrwatch/internal/monitor"
)

const satoshisPerBTC = 1e8

// FormatTransactionMessage renders a detected transaction into a short
// title and a human-readable body. The amount is the net effect on the
// watched address: positive when it received funds, negative when it spent
// them.
func FormatTransactionMessage(address string, tx monitor.Transaction) (title, message string) {
	net := tx.NetAmount(address)
	btc := float64(net) / satoshisPerBTC

	direction := "Received"
	if net < 0 {
		direction = "Sent"
		btc = -btc
	}

	status := "unconfirmed"
	if tx.Confirmed {
		status = fmt.Sprintf("confirmed in block %d", tx.BlockHeight)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %.8f BTC\n", direction, btc)
	fmt.Fprintf(&sb, "Address: %s\n", address)
	fmt.Fprintf(&sb, "Transaction: %s\n", tx.TxID)
	fmt.Fprintf(&sb, "Status: %s", status)
	if tx.Confirmed && !tx.BlockTime.IsZero() {
		fmt.Fprintf(&sb, " at %s", tx.BlockTime.UTC().Format("2006-01-02 15:04:05 MST"))
	}

	return fmt.Sprintf("New transaction on %s", shortenAddress(address)), sb.String()
}

// shortenAddress keeps titles readable for long bech32 addresses.
func shortenAddress(address string) string {
	if len(address) <= 16 {
		return address
	}
	return address[:8] + "..." + address[len(address)-6:]
}
