package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aristath/allocator/internal/modules/allocation"
)

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func printAllocation(out io.Writer, r *allocation.Result) {
	vols := make(map[string]allocation.AssetVolatility, len(r.Volatilities))
	for _, v := range r.Volatilities {
		vols[v.Symbol] = v
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tWEIGHT\tVOLATILITY\t")
	for _, a := range r.Allocations {
		v := vols[a.Symbol]
		note := ""
		if v.LowConfidence {
			note = " (default)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s%s\t\n", a.Symbol, pct(a.Weight), pct(v.Volatility), note)
	}
	tw.Flush()

	fmt.Fprintf(out, "\nExpected return:     %s per period\n", pct(r.Stats.ExpectedReturn))
	fmt.Fprintf(out, "Expected volatility: %s per period\n\n", pct(r.Stats.ExpectedVolatility))
	fmt.Fprintln(out, r.Rationale)
}
