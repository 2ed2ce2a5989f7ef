package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stratalab/strata/internal/plot"
	"github.com/stratalab/strata/internal/split"
)

// PlotOptions holds flags for the plot command.
type PlotOptions struct {
	*RootOptions
	Out     string
	Seed    int64
	Shuffle bool
}

// PlotResult lists the rendered plot files.
type PlotResult struct {
	Files []string `json:"files"`
}

// NewPlotCommand creates the plot command.
func NewPlotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plot <data.csv>",
		Short: "Render dataset plots",
		Long: `Render exploratory plots for a validated dataset: one histogram and one
per-class box plot for each continuous column, plus a class balance chart
of the train/validation/test partitions.

The balance chart reflects the same stratified split the prepare command
would produce for the given seed.

Examples:
  strata plot data.csv
  strata plot data.csv --out figures --seed 7`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "plots", "output directory for plot files")
	cmd.Flags().Int64Var(&opts.Seed, "seed", split.DefaultSeed, "shuffle seed for the balance chart's split")
	cmd.Flags().BoolVar(&opts.Shuffle, "shuffle", true, "shuffle rows within each class before apportioning")

	return cmd
}

func runPlot(opts *PlotOptions, csvPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	table, rep, _, err := loadTable(opts.RootOptions, csvPath)
	if err != nil {
		return failureExit(formatter, err)
	}
	formatter.VerboseLog("read %d rows x %d columns from %s", rep.Rows, rep.Columns, csvPath)

	var files []string

	hists, err := plot.SaveHistograms(table, opts.Out)
	if err != nil {
		return commandExit(formatter, ErrCodeWriteFailed, err)
	}
	files = append(files, hists...)

	boxes, err := plot.SaveBoxPlots(table, opts.Out)
	if err != nil {
		return commandExit(formatter, ErrCodeWriteFailed, err)
	}
	files = append(files, boxes...)

	cfg := split.DefaultConfig()
	cfg.Seed = opts.Seed
	cfg.Shuffle = opts.Shuffle
	p, err := split.Split(table, cfg)
	if err != nil {
		return failureExit(formatter, err)
	}
	balance, err := p.Balance(table)
	if err != nil {
		return failureExit(formatter, err)
	}
	balancePath, err := plot.SaveClassBalance(balance, opts.Out)
	if err != nil {
		return commandExit(formatter, ErrCodeWriteFailed, err)
	}
	files = append(files, balancePath)

	if formatter.Format == "json" {
		return formatter.Success(PlotResult{Files: files})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Wrote %d plot(s) to %s\n", len(files), opts.Out)
	for _, f := range files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	return nil
}
