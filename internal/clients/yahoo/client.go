// Package yahoo provides a client for the Yahoo Finance chart API, used as the
// upstream source of daily closes and latest quotes.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aristath/allocator/internal/clientdata"
	"github.com/aristath/allocator/internal/marketdata"
	"github.com/aristath/allocator/internal/modules/allocation"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public chart endpoint host.
	DefaultBaseURL = "https://query1.finance.yahoo.com"
	// DefaultRange covers roughly one year of sessions.
	DefaultRange = "1y"
	// DefaultRateLimit is requests per second.
	DefaultRateLimit = 5
	// DefaultTimeout bounds a single upstream request.
	DefaultTimeout = 20 * time.Second
)

// APIError is a non-200 response from the chart API.
type APIError struct {
	StatusCode int
	Symbol     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo chart API error for %s (status %d): %s", e.Symbol, e.StatusCode, e.Message)
}

// Unwrap lets callers match marketdata.ErrDataUnavailable.
func (e *APIError) Unwrap() error {
	return marketdata.ErrDataUnavailable
}

// chartResponse mirrors the subset of /v8/finance/chart we read.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		Currency           string  `json:"currency"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		ChartPreviousClose float64 `json:"chartPreviousClose"`
		PreviousClose      float64 `json:"previousClose"`
		RegularMarketTime  int64   `json:"regularMarketTime"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

var _ marketdata.Provider = (*Client)(nil)

// Client is the Yahoo Finance chart client.
type Client struct {
	baseURL      string
	historyRange string
	httpClient   *http.Client
	limiter      *rate.Limiter
	cacheRepo    *clientdata.Repository
	historyTTL   time.Duration
	quoteTTL     time.Duration
	log          zerolog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithRateLimit caps upstream requests per second.
func WithRateLimit(requestsPerSecond int) Option {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithHistoryRange sets the chart range requested for histories (e.g. "1y", "2y").
func WithHistoryRange(r string) Option {
	return func(c *Client) {
		if r != "" {
			c.historyRange = r
		}
	}
}

// WithCache enables the persistent cache. A nil repository disables caching.
func WithCache(repo *clientdata.Repository, historyTTL, quoteTTL time.Duration) Option {
	return func(c *Client) {
		c.cacheRepo = repo
		if historyTTL > 0 {
			c.historyTTL = historyTTL
		}
		if quoteTTL > 0 {
			c.quoteTTL = quoteTTL
		}
	}
}

// NewClient creates a new chart client.
func NewClient(log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		historyRange: DefaultRange,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		limiter:      rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		historyTTL:   clientdata.TTLPriceHistory,
		quoteTTL:     clientdata.TTLQuote,
		log:          log.With().Str("component", "yahoo").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidRanges are the chart ranges accepted by FetchHistoryRange.
var ValidRanges = map[string]bool{
	"1mo": true, "3mo": true, "6mo": true, "ytd": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "max": true,
}

// FetchHistory returns ascending daily closes for the configured range.
func (c *Client) FetchHistory(ctx context.Context, symbol string) ([]allocation.HistoryPoint, error) {
	return c.FetchHistoryRange(ctx, symbol, c.historyRange)
}

// FetchHistoryRange returns ascending daily closes for the given chart range.
// Null and non-positive closes are dropped; a repeated date keeps the later close.
// If the API fails or returns no usable closes, stale cached data is returned when available.
func (c *Client) FetchHistoryRange(ctx context.Context, symbol, chartRange string) ([]allocation.HistoryPoint, error) {
	if !ValidRanges[chartRange] {
		return nil, fmt.Errorf("unsupported range %q", chartRange)
	}
	symbol = allocation.NormalizeSymbol(symbol)
	cacheKey := symbol + "|" + chartRange

	var cached []allocation.HistoryPoint
	if c.fromCache(clientdata.TablePriceHistory, cacheKey, &cached, true) {
		c.log.Debug().Str("symbol", symbol).Msg("History cache hit")
		return cached, nil
	}

	var points []allocation.HistoryPoint
	result, err := c.chart(ctx, symbol, chartRange)
	if err == nil {
		points = historyFromChart(result)
		if len(points) == 0 {
			err = fmt.Errorf("%w: no closing prices for %s", marketdata.ErrDataUnavailable, symbol)
		}
	}
	if err != nil {
		if c.fromCache(clientdata.TablePriceHistory, cacheKey, &cached, false) {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("API failed, using stale cached history")
			return cached, nil
		}
		return nil, err
	}

	c.toCache(clientdata.TablePriceHistory, cacheKey, points, c.historyTTL)
	return points, nil
}

// FetchQuote returns the latest price and the change against the previous close.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	symbol = allocation.NormalizeSymbol(symbol)

	var cached marketdata.Quote
	if c.fromCache(clientdata.TableQuotes, symbol, &cached, true) {
		c.log.Debug().Str("symbol", symbol).Msg("Quote cache hit")
		return &cached, nil
	}

	var quote *marketdata.Quote
	result, err := c.chart(ctx, symbol, "1d")
	if err == nil {
		quote = quoteFromChart(symbol, result)
		if quote.Price <= 0 {
			err = fmt.Errorf("%w: no market price for %s", marketdata.ErrDataUnavailable, symbol)
		}
	}
	if err != nil {
		if c.fromCache(clientdata.TableQuotes, symbol, &cached, false) {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("API failed, using stale cached quote")
			return &cached, nil
		}
		return nil, err
	}

	c.toCache(clientdata.TableQuotes, symbol, quote, c.quoteTTL)
	return quote, nil
}

func (c *Client) chart(ctx context.Context, symbol, chartRange string) (*chartResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("range", chartRange)
	params.Set("interval", "1d")
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; allocator/1.0)")

	c.log.Debug().Str("symbol", symbol).Str("range", chartRange).Msg("Chart API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request for %s failed: %v", marketdata.ErrDataUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Symbol: symbol, Message: string(body)}
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode chart for %s: %v", marketdata.ErrDataUnavailable, symbol, err)
	}
	if parsed.Chart.Error != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Symbol: symbol, Message: parsed.Chart.Error.Description}
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: empty chart for %s", marketdata.ErrDataUnavailable, symbol)
	}
	return &parsed.Chart.Result[0], nil
}

func historyFromChart(result *chartResult) []allocation.HistoryPoint {
	var closes []*float64
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	byDate := make(map[string]float64, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		byDate[time.Unix(ts, 0).UTC().Format("2006-01-02")] = *closes[i]
	}

	points := make([]allocation.HistoryPoint, 0, len(byDate))
	for date, price := range byDate {
		points = append(points, allocation.HistoryPoint{Date: date, Close: price})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}

func quoteFromChart(symbol string, result *chartResult) *marketdata.Quote {
	meta := result.Meta
	prev := meta.ChartPreviousClose
	if prev <= 0 {
		prev = meta.PreviousClose
	}

	quote := &marketdata.Quote{
		Symbol:   symbol,
		Price:    meta.RegularMarketPrice,
		Currency: meta.Currency,
	}
	if prev > 0 {
		quote.Change = meta.RegularMarketPrice - prev
		quote.ChangePercent = quote.Change / prev * 100
	}
	if meta.RegularMarketTime > 0 {
		quote.MarketTime = time.Unix(meta.RegularMarketTime, 0).UTC().Format(time.RFC3339)
	}
	return quote
}

func (c *Client) fromCache(table, key string, out interface{}, freshOnly bool) bool {
	if c.cacheRepo == nil {
		return false
	}

	var ok bool
	var err error
	if freshOnly {
		ok, err = c.cacheRepo.GetIfFresh(table, key, out)
	} else {
		ok, err = c.cacheRepo.Get(table, key, out)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("table", table).Str("key", key).Msg("Failed to read cache")
		return false
	}
	return ok
}

func (c *Client) toCache(table, key string, data interface{}, ttl time.Duration) {
	if c.cacheRepo == nil {
		return
	}
	if err := c.cacheRepo.Store(table, key, data, ttl); err != nil {
		c.log.Warn().Err(err).Str("table", table).Str("key", key).Msg("Failed to cache response")
	}
}
