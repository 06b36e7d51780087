package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/aristath/allocator/internal/marketdata"
	"github.com/aristath/allocator/internal/modules/allocation"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu        sync.Mutex
	histories map[string][]allocation.HistoryPoint
	fail      map[string]bool
	requested []string
}

func (p *fakeProvider) FetchHistory(_ context.Context, symbol string) ([]allocation.HistoryPoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requested = append(p.requested, symbol)
	if p.fail[symbol] {
		return nil, fmt.Errorf("%w: %s", marketdata.ErrDataUnavailable, symbol)
	}
	return p.histories[symbol], nil
}

func (p *fakeProvider) requestedSorted() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := append([]string(nil), p.requested...)
	sort.Strings(out)
	return out
}

// series alternates around base with the given relative swing.
func series(base, swing float64, n int) []allocation.HistoryPoint {
	points := make([]allocation.HistoryPoint, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range points {
		c := base
		if i%2 == 1 {
			c = base * (1 + swing)
		}
		points[i] = allocation.HistoryPoint{Date: start.AddDate(0, 0, i).Format("2006-01-02"), Close: c}
	}
	return points
}

func newTestHandler(p *fakeProvider) *Handler {
	return NewHandler(
		allocation.NewEngine(zerolog.Nop()),
		p,
		[]string{"VTI", "BND", "IAU"},
		time.Second,
		zerolog.Nop(),
	)
}

func defaultProvider() *fakeProvider {
	return &fakeProvider{
		histories: map[string][]allocation.HistoryPoint{
			"VTI": series(200, 0.02, 30),
			"BND": series(70, 0.005, 30),
			"IAU": series(40, 0.01, 30),
		},
	}
}

func doOptimize(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/optimize", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.HandleOptimize(w, req)
	return w
}

func TestHandleOptimize(t *testing.T) {
	p := defaultProvider()
	h := newTestHandler(p)

	w := doOptimize(t, h, `{"symbols":[" vti","BND","iau","VTI"],"risk":0.5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp OptimizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 0.5, resp.RiskPreference)
	require.Len(t, resp.Allocations, 3)

	total := 0.0
	for i, a := range resp.Allocations {
		total += a.Weight
		if i > 0 {
			assert.GreaterOrEqual(t, resp.Allocations[i-1].Weight, a.Weight)
		}
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	// Least volatile asset ranks first.
	assert.Equal(t, "BND", resp.Allocations[0].Symbol)
	assert.Greater(t, resp.ExpectedVolatility, 0.0)
	assert.Contains(t, resp.Rationale, "based on risk 50%.")
	assert.Contains(t, resp.Rationale, "Universe: VTI, BND, IAU.")
	require.Len(t, resp.Volatilities, 3)
	assert.Equal(t, []string{"BND", "IAU", "VTI"}, p.requestedSorted())
}

func TestHandleOptimize_DefaultUniverse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing symbols", `{}`},
		{"empty symbols", `{"symbols":[]}`},
		{"blank symbols", `{"symbols":["  ",""]}`},
		{"string symbols", `{"symbols":"VTI","risk":0.5}`},
		{"object symbols", `{"symbols":{"VTI":1}}`},
		{"null symbols", `{"symbols":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultProvider()
			w := doOptimize(t, newTestHandler(p), tt.body)
			require.Equal(t, http.StatusOK, w.Code)

			var resp OptimizeResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp.Rationale, "Universe: VTI, BND, IAU.")
			assert.Equal(t, []string{"BND", "IAU", "VTI"}, p.requestedSorted())
		})
	}
}

func TestParseSymbols(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"missing", "", nil},
		{"null", "null", nil},
		{"string", `"VTI"`, nil},
		{"number", "42", nil},
		{"mixed array", `["VTI",1]`, nil},
		{"empty array", "[]", []string{}},
		{"strings", `["vti","BND"]`, []string{"vti", "BND"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSymbols(json.RawMessage(tt.raw)))
		})
	}
}

func TestParseRisk(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
	}{
		{"missing", "", 0.6},
		{"null", "null", 0.6},
		{"string", `"high"`, 0.6},
		{"object", `{"v":1}`, 0.6},
		{"bool", "true", 0.6},
		{"in range", "0.3", 0.3},
		{"below min", "0", 0.1},
		{"negative", "-4", 0.1},
		{"above max", "2", 0.95},
		{"at max", "0.95", 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseRisk(json.RawMessage(tt.raw)))
		})
	}
}

func TestHandleOptimize_NonNumericRiskUsesDefault(t *testing.T) {
	w := doOptimize(t, newTestHandler(defaultProvider()), `{"risk":"very high"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp OptimizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.6, resp.RiskPreference)
}

func TestHandleOptimize_MalformedBody(t *testing.T) {
	w := doOptimize(t, newTestHandler(defaultProvider()), `{"symbols":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestHandleOptimize_ValidationFailure(t *testing.T) {
	symbols := make([]string, 101)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("S%d", i)
	}
	body, err := json.Marshal(map[string]interface{}{"symbols": symbols})
	require.NoError(t, err)

	w := doOptimize(t, newTestHandler(defaultProvider()), string(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleOptimize_UpstreamFailure(t *testing.T) {
	p := defaultProvider()
	p.fail = map[string]bool{"IAU": true}

	w := doOptimize(t, newTestHandler(p), `{"symbols":["VTI","IAU"]}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "IAU")
}

func TestHandleOptimize_MissingHistoryIsNotAnError(t *testing.T) {
	p := defaultProvider()
	w := doOptimize(t, newTestHandler(p), `{"symbols":["VTI","NEW"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp OptimizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Volatilities, 2)
	assert.Equal(t, "NEW", resp.Volatilities[1].Symbol)
	assert.True(t, resp.Volatilities[1].LowConfidence)
	assert.Equal(t, allocation.DefaultVolatility, resp.Volatilities[1].Volatility)
}

func TestRegisterRoutes(t *testing.T) {
	h := newTestHandler(defaultProvider())
	router := chi.NewRouter()
	router.Route("/api", h.RegisterRoutes)

	req := httptest.NewRequest(http.MethodPost, "/api/optimize", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/optimize", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
