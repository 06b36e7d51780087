// Package marketdata defines the price history and quote providers consumed by the
// allocation service, and fetches histories for a universe concurrently.
package marketdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/aristath/allocator/internal/modules/allocation"
	"golang.org/x/sync/errgroup"
)

// ErrDataUnavailable marks an upstream fetch failure. The allocation engine must not
// run when any history for the requested universe could not be fetched.
var ErrDataUnavailable = errors.New("data unavailable")

// Quote is the latest price for a symbol.
type Quote struct {
	Symbol        string  `json:"symbol" msgpack:"symbol"`
	Price         float64 `json:"price" msgpack:"price"`
	Change        float64 `json:"change" msgpack:"change"`
	ChangePercent float64 `json:"changePercent" msgpack:"change_percent"`
	Currency      string  `json:"currency,omitempty" msgpack:"currency"`
	MarketTime    string  `json:"marketTime,omitempty" msgpack:"market_time"`
}

// HistoryProvider returns ascending daily closes for a symbol.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, symbol string) ([]allocation.HistoryPoint, error)
}

// QuoteProvider returns the latest quote for a symbol.
type QuoteProvider interface {
	FetchQuote(ctx context.Context, symbol string) (*Quote, error)
}

// Provider serves both histories and quotes.
type Provider interface {
	HistoryProvider
	QuoteProvider
}

// FetchError identifies which symbol failed to load.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch history for %s: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchHistories loads every symbol's history concurrently, one request per symbol.
// The first failure cancels the remaining requests and is returned as a *FetchError.
func FetchHistories(ctx context.Context, provider HistoryProvider, symbols []string) (map[string][]allocation.HistoryPoint, error) {
	results := make([][]allocation.HistoryPoint, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			history, err := provider.FetchHistory(gctx, symbol)
			if err != nil {
				return &FetchError{Symbol: symbol, Err: err}
			}
			results[i] = history
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	histories := make(map[string][]allocation.HistoryPoint, len(symbols))
	for i, symbol := range symbols {
		histories[symbol] = results[i]
	}
	return histories, nil
}
