package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQuoteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Print the latest price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := opts.client(cmd).FetchQuote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %.2f %s (%+.2f, %+.2f%%) %s\n",
				q.Symbol, q.Price, q.Currency, q.Change, q.ChangePercent, q.MarketTime)
			return nil
		},
	}
}
