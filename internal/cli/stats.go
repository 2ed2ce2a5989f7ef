package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratalab/strata/internal/dataset"
)

// StatsResult holds the summary statistics of a validated dataset.
type StatsResult struct {
	Dataset     string                  `json:"dataset"`
	Fingerprint string                  `json:"fingerprint"`
	Rows        int                     `json:"rows"`
	Balance     dataset.Balance         `json:"class_balance"`
	Columns     []dataset.ColumnSummary `json:"columns"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <data.csv>",
		Short: "Summarize a dataset",
		Long: `Validate a CSV dataset and print per-column statistics, the class
balance, and the content fingerprint.

Statistics are computed over the full dataset; the standard deviation is
the population form, matching the normalization used by standardization.

Examples:
  strata stats data.csv
  strata stats --schema trial.cue data.csv --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runStats(opts *RootOptions, csvPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	table, rep, _, err := loadTable(opts, csvPath)
	if err != nil {
		return failureExit(formatter, err)
	}
	formatter.VerboseLog("read %d rows x %d columns from %s", rep.Rows, rep.Columns, csvPath)

	summary := table.Summarize()
	result := StatsResult{
		Dataset:     table.Schema().Name,
		Fingerprint: dataset.Fingerprint(table),
		Rows:        summary.Rows,
		Balance:     summary.Balance,
		Columns:     summary.Columns,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Dataset:     %s\n", result.Dataset)
	fmt.Fprintf(w, "Fingerprint: %s\n", result.Fingerprint)
	fmt.Fprintf(w, "Rows:        %d\n", result.Rows)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Class Balance ===")
	renderBalanceText(w, "  ", result.Balance)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Columns ===")
	renderColumnsText(w, result.Columns)
	return nil
}
