package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/allocator/internal/modules/allocation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chartServer serves 30 daily closes per known symbol, alternating by that symbol's swing.
func chartServer(t *testing.T, swings map[string]float64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		swing, ok := swings[symbol]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		timestamps := make([]string, 30)
		closes := make([]string, 30)
		for i := range timestamps {
			timestamps[i] = fmt.Sprint(1704205800 + i*86400)
			c := 100.0
			if i%2 == 1 {
				c = 100 * (1 + swing)
			}
			closes[i] = fmt.Sprint(c)
		}
		fmt.Fprintf(w, `{"chart":{"result":[{"meta":{"currency":"USD","regularMarketPrice":%v,"chartPreviousClose":100,"regularMarketTime":1704465000},"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`,
			100*(1+swing), strings.Join(timestamps, ","), strings.Join(closes, ","))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestOptimizeCommand(t *testing.T) {
	srv := chartServer(t, map[string]float64{"VTI": 0.02, "BND": 0.005, "IAU": 0.01})

	out, err := run(t, "optimize", "--base-url", srv.URL, "--symbols", "vti,bnd,iau", "--risk", "0.5")
	require.NoError(t, err)

	assert.Contains(t, out, "SYMBOL")
	assert.Contains(t, out, "Expected volatility:")
	assert.Contains(t, out, "based on risk 50%.")
	// Least volatile first
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[1], "BND"), lines[1])
}

func TestOptimizeCommand_JSON(t *testing.T) {
	srv := chartServer(t, map[string]float64{"VTI": 0.02, "BND": 0.005})

	out, err := run(t, "optimize", "--base-url", srv.URL, "--symbols", "VTI,BND", "--json")
	require.NoError(t, err)

	var result allocation.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []string{"VTI", "BND"}, result.Universe)
	assert.Equal(t, 0.6, result.RiskPreference)
	require.Len(t, result.Allocations, 2)
	assert.InDelta(t, 1.0, result.Allocations[0].Weight+result.Allocations[1].Weight, 1e-9)
}

func TestOptimizeCommand_UpstreamFailure(t *testing.T) {
	srv := chartServer(t, map[string]float64{"VTI": 0.02})

	_, err := run(t, "optimize", "--base-url", srv.URL, "--symbols", "VTI,MISSING")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MISSING")
}

func TestOptimizeCommand_NoSymbols(t *testing.T) {
	_, err := run(t, "optimize", "--symbols", " , ")
	assert.Error(t, err)
}

func TestHistoryCommand(t *testing.T) {
	srv := chartServer(t, map[string]float64{"AAPL": 0.01})

	out, err := run(t, "history", "aapl", "--base-url", srv.URL, "--last", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "AAPL: 5 points, volatility")
	assert.Equal(t, 5, strings.Count(out, "2024-"))
}

func TestHistoryCommand_BadRange(t *testing.T) {
	srv := chartServer(t, map[string]float64{"AAPL": 0.01})

	_, err := run(t, "history", "AAPL", "--base-url", srv.URL, "--range", "3d")
	assert.Error(t, err)
}

func TestQuoteCommand(t *testing.T) {
	srv := chartServer(t, map[string]float64{"VTI": 0.02})

	out, err := run(t, "quote", "vti", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "VTI 102.00 USD (+2.00, +2.00%) 2024-01-05T14:30:00Z\n", out)
}

func TestInterpretCommand(t *testing.T) {
	out, err := run(t, "interpret", "aggressive", "short", "term")
	require.NoError(t, err)
	assert.Contains(t, out, "Interpreted risk tolerance: 85%")
	assert.Contains(t, out, "Investment horizon: ~1 years")
}

func TestCommandsRequireArgs(t *testing.T) {
	_, err := run(t, "quote")
	assert.Error(t, err)
	_, err = run(t, "interpret")
	assert.Error(t, err)
}
