package commands

import (
	"fmt"

	"github.com/aristath/allocator/internal/modules/allocation"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		chartRange string
		last       int
	)

	cmd := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Print daily closes and the estimated volatility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := opts.client(cmd).FetchHistoryRange(cmd.Context(), args[0], chartRange)
			if err != nil {
				return err
			}
			if last > 0 && len(points) > last {
				points = points[len(points)-last:]
			}

			out := cmd.OutOrStdout()
			for _, p := range points {
				fmt.Fprintf(out, "%s  %12.4f\n", p.Date, p.Close)
			}
			returns := allocation.ComputeReturns(points)
			fmt.Fprintf(out, "\n%s: %d points, volatility %s\n",
				allocation.NormalizeSymbol(args[0]), len(points), pct(allocation.EstimateVolatility(returns)))
			return nil
		},
	}

	cmd.Flags().StringVar(&chartRange, "range", "1y", "chart range (1mo, 3mo, 6mo, ytd, 1y, 2y, 5y, 10y, max)")
	cmd.Flags().IntVar(&last, "last", 0, "only print the last N points")
	return cmd
}
