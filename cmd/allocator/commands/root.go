// Package commands implements the allocator CLI. Commands talk to the upstream
// market data API directly; nothing is cached between runs.
package commands

import (
	"net/http"
	"os"
	"time"

	"github.com/aristath/allocator/internal/clients/yahoo"
	"github.com/aristath/allocator/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// options holds the global flags
type options struct {
	baseURL string
	timeout time.Duration
	verbose bool
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "allocator",
		Short: "Risk-aware portfolio allocation from recent price history",
		Long: `Allocator CLI

Blends an inverse-volatility allocation across the whole universe with one over
its least volatile third, weighted by a risk preference.

Examples:
  allocator optimize --symbols VTI,BND,IAU --risk 0.6
  allocator history AAPL --range 6mo
  allocator quote VTI
  allocator interpret "conservative, planning to retire"`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", envOr("YAHOO_BASE_URL", yahoo.DefaultBaseURL), "market data API base URL")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", yahoo.DefaultTimeout, "upstream request timeout")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newOptimizeCmd(opts),
		newHistoryCmd(opts),
		newQuoteCmd(opts),
		newInterpretCmd(),
	)
	return rootCmd
}

// Execute runs the CLI. It is called by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) logger(cmd *cobra.Command) zerolog.Logger {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Pretty: true, Output: cmd.ErrOrStderr()})
}

func (o *options) client(cmd *cobra.Command) *yahoo.Client {
	return yahoo.NewClient(o.logger(cmd),
		yahoo.WithBaseURL(o.baseURL),
		yahoo.WithHTTPClient(&http.Client{Timeout: o.timeout}),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
