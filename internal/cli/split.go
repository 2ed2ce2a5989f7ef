package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stratalab/strata/internal/split"
)

// SplitOptions holds flags for the split command.
type SplitOptions struct {
	*RootOptions
	Seed       int64
	Shuffle    bool
	Train      float64
	Validation float64
	Test       float64
}

// SplitResult holds the split provenance and per-partition class balance.
type SplitResult struct {
	Manifest *split.Manifest         `json:"manifest"`
	Balance  *split.PartitionBalance `json:"class_balance"`
}

// NewSplitCommand creates the split command.
func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SplitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "split <data.csv>",
		Short: "Stratify a dataset into train/validation/test",
		Long: `Split a validated dataset into train/validation/test partitions,
preserving the class balance of the full dataset in every partition.

Each class is apportioned independently by largest remainder, so partition
sizes match the target proportions as closely as integer counts allow. The
output is the split manifest: dataset fingerprint, per-partition sizes and
row fingerprints, and the exact configuration, enough to reproduce or audit
the split later.

Examples:
  strata split data.csv
  strata split data.csv --seed 7
  strata split data.csv --train 0.8 --validation 0.1 --test 0.1
  strata split data.csv --shuffle=false --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Seed, "seed", split.DefaultSeed, "shuffle seed")
	cmd.Flags().BoolVar(&opts.Shuffle, "shuffle", true, "shuffle rows within each class before apportioning")
	cmd.Flags().Float64Var(&opts.Train, "train", split.DefaultProportions.Train, "train proportion")
	cmd.Flags().Float64Var(&opts.Validation, "validation", split.DefaultProportions.Validation, "validation proportion")
	cmd.Flags().Float64Var(&opts.Test, "test", split.DefaultProportions.Test, "test proportion")

	return cmd
}

func runSplit(opts *SplitOptions, csvPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	table, rep, _, err := loadTable(opts.RootOptions, csvPath)
	if err != nil {
		return failureExit(formatter, err)
	}
	formatter.VerboseLog("read %d rows x %d columns from %s", rep.Rows, rep.Columns, csvPath)

	cfg := split.Config{
		Proportions: split.Proportions{
			Train:      opts.Train,
			Validation: opts.Validation,
			Test:       opts.Test,
		},
		Seed:    opts.Seed,
		Shuffle: opts.Shuffle,
	}
	p, err := split.Split(table, cfg)
	if err != nil {
		return failureExit(formatter, err)
	}
	balance, err := p.Balance(table)
	if err != nil {
		return failureExit(formatter, err)
	}
	result := SplitResult{
		Manifest: p.Manifest(table),
		Balance:  balance,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	m := result.Manifest
	fmt.Fprintf(w, "Dataset:     %s\n", m.Dataset)
	fmt.Fprintf(w, "Fingerprint: %s\n", m.Fingerprint)
	fmt.Fprintf(w, "Rows:        %d\n", m.Rows)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Partitions ===")
	fmt.Fprintf(w, "  seed %d, shuffled=%v, target %g/%g/%g\n",
		m.Seed, m.Shuffled, m.Proportions.Train, m.Proportions.Validation, m.Proportions.Test)
	renderPartitionText(w, "train", m.Train, m.Rows)
	renderBalanceText(w, "    ", result.Balance.Train)
	renderPartitionText(w, "validation", m.Validation, m.Rows)
	renderBalanceText(w, "    ", result.Balance.Validation)
	renderPartitionText(w, "test", m.Test, m.Rows)
	renderBalanceText(w, "    ", result.Balance.Test)
	return nil
}

// renderPartitionText writes one manifest entry: size, share, fingerprint.
func renderPartitionText(w io.Writer, name string, e split.ManifestEntry, total int) {
	fraction := 0.0
	if total > 0 {
		fraction = float64(e.Rows) / float64(total)
	}
	fmt.Fprintf(w, "  %-12s %5d rows  (%6.2f%%)\n", name, e.Rows, 100*fraction)
	fmt.Fprintf(w, "    fingerprint %s\n", e.Fingerprint)
}
