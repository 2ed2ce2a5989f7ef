package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stratalab/strata/internal/export"
	"github.com/stratalab/strata/internal/pipeline"
	"github.com/stratalab/strata/internal/plot"
	"github.com/stratalab/strata/internal/report"
	"github.com/stratalab/strata/internal/split"
)

// PrepareOptions holds flags for the prepare command.
type PrepareOptions struct {
	*RootOptions
	ConfigFile     string
	Out            string
	Seed           int64
	Shuffle        bool
	Train          float64
	Validation     float64
	Test           float64
	OnZeroVariance string
	Plots          bool

	// IDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs pipeline.RunIDGenerator
}

// PrepareResult is the JSON payload of a successful prepare run.
type PrepareResult struct {
	Report *report.Report `json:"report"`
	Files  []string       `json:"files"`
}

// NewPrepareCommand creates the prepare command.
func NewPrepareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PrepareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "prepare [data.csv]",
		Short: "Run the full preparation pipeline",
		Long: `Validate, split, and standardize a dataset, then write the prepared
partitions and the run report.

The pipeline ingests the CSV against the schema, stratifies the rows into
train/validation/test, fits standardization statistics on the training
partition only, and applies them to all three. Artifacts written to the
output directory: train.csv, validation.csv, test.csv, manifest.json,
report.txt, report.json, and with --plots a plots/ directory.

Settings come from a YAML config file, from flags, or both; flags given
explicitly override the file.

Exit codes:
  0 - Run complete
  1 - Validation/data failure (bad schema, bad data, bad proportions, zero variance)
  2 - Command error (missing files, unwritable output, etc.)

Examples:
  strata prepare data.csv --out prepared
  strata prepare --config strata.yaml
  strata prepare data.csv --seed 7 --train 0.7 --validation 0.15 --test 0.15
  strata prepare data.csv --out prepared --plots --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			csvPath := ""
			if len(args) == 1 {
				csvPath = args[0]
			}
			return runPrepare(opts, csvPath, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "path to YAML pipeline config")
	cmd.Flags().StringVar(&opts.Out, "out", "", "output directory (default: config output_dir, else current directory)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", split.DefaultSeed, "shuffle seed")
	cmd.Flags().BoolVar(&opts.Shuffle, "shuffle", true, "shuffle rows within each class before apportioning")
	cmd.Flags().Float64Var(&opts.Train, "train", split.DefaultProportions.Train, "train proportion")
	cmd.Flags().Float64Var(&opts.Validation, "validation", split.DefaultProportions.Validation, "validation proportion")
	cmd.Flags().Float64Var(&opts.Test, "test", split.DefaultProportions.Test, "test proportion")
	cmd.Flags().StringVar(&opts.OnZeroVariance, "on-zero-variance", pipeline.ZeroVarianceFail,
		fmt.Sprintf("policy for constant training columns (%q|%q)", pipeline.ZeroVarianceFail, pipeline.ZeroVariancePass))
	cmd.Flags().BoolVar(&opts.Plots, "plots", false, "render distribution and balance plots")

	return cmd
}

func runPrepare(opts *PrepareOptions, csvPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	cfg, err := buildConfig(opts, csvPath, cmd)
	if err != nil {
		return failureExit(formatter, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runner := &pipeline.Runner{IDs: opts.IDs, Logger: logger}
	res, err := runner.Run(ctx, cfg)
	if err != nil {
		return failureExit(formatter, err)
	}

	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = "."
	}

	slog.Info("writing artifacts", "dir", outDir)
	files, err := export.WriteCSV(outDir, res)
	if err != nil {
		return commandExit(formatter, ErrCodeWriteFailed, err)
	}
	manifestPath, err := export.WriteManifest(outDir, res.Manifest)
	if err != nil {
		return commandExit(formatter, ErrCodeWriteFailed, err)
	}
	files = append(files, manifestPath)

	rep := report.Build(res)
	reportFiles, err := writeReports(outDir, rep)
	if err != nil {
		return commandExit(formatter, ErrCodeWriteFailed, err)
	}
	files = append(files, reportFiles...)

	if opts.Plots {
		plotFiles, err := renderPlots(res, filepath.Join(outDir, "plots"))
		if err != nil {
			return commandExit(formatter, ErrCodeWriteFailed, err)
		}
		files = append(files, plotFiles...)
	}
	slog.Info("artifacts written", "files", len(files))

	if formatter.Format == "json" {
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{
			Status: "ok",
			RunID:  res.RunID,
			Data:   PrepareResult{Report: rep, Files: files},
		})
	}

	w := formatter.Writer
	if err := report.RenderText(w, rep); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Artifacts ===")
	for _, f := range files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	return nil
}

// buildConfig assembles the pipeline config from the config file and flags.
// Flags the user set explicitly override file values; the positional CSV
// path overrides the file's input.
func buildConfig(opts *PrepareOptions, csvPath string, cmd *cobra.Command) (*pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if opts.ConfigFile != "" {
		// Validation happens after the merge: a file without an input path
		// is fine when the positional argument provides one.
		loaded, err := pipeline.ReadConfig(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if csvPath != "" {
		cfg.Input = csvPath
	}
	// The global flag wins when set explicitly; otherwise it fills in only
	// when the config file leaves the schema unset.
	if flags.Changed("schema") {
		cfg.Schema = opts.Schema
	} else if opts.Schema != "" && cfg.Schema == "" {
		cfg.Schema = opts.Schema
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.Seed
	}
	if flags.Changed("shuffle") {
		cfg.Shuffle = opts.Shuffle
	}
	if flags.Changed("train") {
		cfg.Proportions.Train = opts.Train
	}
	if flags.Changed("validation") {
		cfg.Proportions.Validation = opts.Validation
	}
	if flags.Changed("test") {
		cfg.Proportions.Test = opts.Test
	}
	if flags.Changed("on-zero-variance") {
		cfg.OnZeroVariance = opts.OnZeroVariance
	}
	if flags.Changed("out") {
		cfg.OutputDir = opts.Out
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// writeReports writes the run report in both text and JSON form.
func writeReports(dir string, rep *report.Report) ([]string, error) {
	txtPath := filepath.Join(dir, "report.txt")
	txt, err := os.Create(txtPath)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	if err := report.RenderText(txt, rep); err != nil {
		txt.Close()
		return nil, fmt.Errorf("write report: %w", err)
	}
	if err := txt.Close(); err != nil {
		return nil, fmt.Errorf("close report: %w", err)
	}

	jsonPath := filepath.Join(dir, "report.json")
	jf, err := os.Create(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	if err := report.RenderJSON(jf, rep); err != nil {
		jf.Close()
		return nil, fmt.Errorf("write report: %w", err)
	}
	if err := jf.Close(); err != nil {
		return nil, fmt.Errorf("close report: %w", err)
	}

	return []string{txtPath, jsonPath}, nil
}

// renderPlots writes histograms, box plots, and the class balance chart.
func renderPlots(res *pipeline.Result, dir string) ([]string, error) {
	var files []string

	hists, err := plot.SaveHistograms(res.Table, dir)
	if err != nil {
		return nil, err
	}
	files = append(files, hists...)

	boxes, err := plot.SaveBoxPlots(res.Table, dir)
	if err != nil {
		return nil, err
	}
	files = append(files, boxes...)

	balance, err := plot.SaveClassBalance(res.Balance, dir)
	if err != nil {
		return nil, err
	}
	files = append(files, balance)

	return files, nil
}
