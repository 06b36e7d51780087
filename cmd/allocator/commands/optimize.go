package commands

import (
	"encoding/json"
	"fmt"

	"github.com/aristath/allocator/internal/marketdata"
	"github.com/aristath/allocator/internal/modules/allocation"
	"github.com/spf13/cobra"
)

func newOptimizeCmd(opts *options) *cobra.Command {
	var (
		symbols []string
		risk    float64
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Compute a blended inverse-volatility allocation",
		Long: `Fetches daily closes for every symbol, estimates volatilities and prints
the blended allocation with its expected return and volatility.

Example:
  allocator optimize --symbols VTI,BND,IAU --risk 0.8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			universe := allocation.NormalizeUniverse(symbols)
			if len(universe) == 0 {
				return fmt.Errorf("at least one symbol is required")
			}

			ctx := cmd.Context()
			histories, err := marketdata.FetchHistories(ctx, opts.client(cmd), universe)
			if err != nil {
				return err
			}

			engine := allocation.NewEngine(opts.logger(cmd))
			result, err := engine.Allocate(allocation.Input{
				Universe:       universe,
				RiskPreference: risk,
				Histories:      histories,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printAllocation(out, result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&symbols, "symbols", []string{"VTI", "BND", "IAU"}, "comma-separated tickers")
	cmd.Flags().Float64Var(&risk, "risk", allocation.DefaultRiskPreference, "risk preference, clamped to [0.1, 0.95]")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}
