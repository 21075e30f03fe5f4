package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/addrwatch/internal/monitor"
)

// infoCommand returns the CLI command that prints everything known about a
// single address. Results are rendered progressively: the balance appears
// as soon as it is known, the fiat value and the recent transactions
// follow.
//
// Usage example:
//
//	addrwatch info 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa
func infoCommand(svc monitor.Service) *cli.Command {
	return &cli.Command{
		Name:        "info",
		Description: "Fetch the balance, fiat value and recent transactions of an address.",
		Usage:       "Prints address details progressively as lookups complete.",
		ArgsUsage:   "<address>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return errors.New("exactly one address is required")
			}
			address := c.Args().First()

			w := writerOf(c)

			stage := 0
			info, err := svc.GetAddressInfo(ctx, address, monitor.WithProgress(func(snapshot monitor.AddressInfo) {
				stage++
				renderStage(w, stage, snapshot)
			}))
			if err != nil {
				return err
			}

			if info.Err != "" {
				fmt.Fprintf(w, "lookup incomplete: %s\n", info.Err)
			}
			return nil
		},
	}
}

// renderStage prints the part of the snapshot that became available at the
// given stage: 1 balance, 2 fiat value, 3 transactions.
func renderStage(w io.Writer, stage int, info monitor.AddressInfo) {
	switch stage {
	case 1:
		fmt.Fprintf(w, "Address: %s\n", info.Address)
		fmt.Fprintf(w, "Balance: %.8f BTC (%d sats)\n", info.BalanceBTC, info.BalanceSatoshis)
	case 2:
		fmt.Fprintf(w, "Value:   %.2f %s\n", info.BalanceFiat, info.Currency)
	case 3:
		fmt.Fprintf(w, "Transactions: %d total\n", info.TransactionCount)
		for _, tx := range info.RecentTransactions {
			status := "unconfirmed"
			if tx.Confirmed {
				status = fmt.Sprintf("block %d", tx.BlockHeight)
			}
			fmt.Fprintf(w, "  %s  %+.8f BTC  (%s)\n",
				tx.TxID,
				float64(tx.NetAmount(info.Address))/1e8,
				status,
			)
		}
	}
}
