package cli

import (
	"fmt"
	"io"

	"github.com/stratalab/strata/internal/dataset"
)

// renderBalanceText writes one line per class: label, count, percentage.
func renderBalanceText(w io.Writer, indent string, b dataset.Balance) {
	for _, c := range b {
		fmt.Fprintf(w, "%slabel %g: %5d  (%6.2f%%)\n", indent, c.Label, c.Count, 100*c.Fraction)
	}
}

// renderColumnsText writes the per-column statistics table.
func renderColumnsText(w io.Writer, cols []dataset.ColumnSummary) {
	fmt.Fprintf(w, "  %-24s %-10s %12s %12s %12s %12s %12s\n",
		"column", "kind", "mean", "stddev", "min", "max", "median")
	for _, c := range cols {
		fmt.Fprintf(w, "  %-24s %-10s %12.3f %12.3f %12.3f %12.3f %12.3f\n",
			c.Name, c.Kind, c.Mean, c.StdDev, c.Min, c.Max, c.Median)
	}
}
