package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/slough-labs/invertflow/internal/pipeline"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigDir string
	DataDir   string
	OutDir    string
	Database  string
}

// runSummary is the run command's output payload.
type runSummary struct {
	RunID         string `json:"run_id"`
	Samples       int    `json:"samples"`
	LongRows      int    `json:"long_rows"`
	Excluded      int    `json:"excluded"`
	UnmappedCodes int    `json:"unmapped_codes"`
	Artifacts     []struct {
		Name   string `json:"name"`
		Path   string `json:"path"`
		Rows   int    `json:"rows"`
		SHA256 string `json:"sha256"`
	} `json:"artifacts"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the survey pipeline",
		Long: `Run the full pipeline: load and normalize every configured survey
year, unify, aggregate, reshape, and write the wide, wide_log, and long
CSV artifacts.

Example:
  invertflow run --config ./config --data ./raw --out ./derived
  invertflow run --config ./config --data ./raw --out ./derived --db ./invertflow.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigDir, "config", "", "path to the CUE config directory (required)")
	cmd.Flags().StringVar(&opts.DataDir, "data", ".", "directory raw file paths resolve against")
	cmd.Flags().StringVar(&opts.OutDir, "out", "", "output directory for CSV artifacts (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the run-catalog database (optional)")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runPipeline(opts *RunOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	result, err := pipeline.Run(cmd.Context(), pipeline.Options{
		ConfigDir:   opts.ConfigDir,
		DataDir:     opts.DataDir,
		OutDir:      opts.OutDir,
		CatalogPath: opts.Database,
		Logger:      logger,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "pipeline failed", err)
	}

	summary := runSummary{
		RunID:         result.RunID,
		Samples:       len(result.Samples),
		LongRows:      len(result.Long),
		Excluded:      result.Excluded,
		UnmappedCodes: len(result.Diagnostics.Unmapped()),
	}
	for _, m := range result.Manifests {
		summary.Artifacts = append(summary.Artifacts, struct {
			Name   string `json:"name"`
			Path   string `json:"path"`
			Rows   int    `json:"rows"`
			SHA256 string `json:"sha256"`
		}{m.Name, m.Path, m.Rows, m.SHA256})
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return printJSON(out, summary)
	}

	fmt.Fprintf(out, "run %s complete\n", summary.RunID)
	fmt.Fprintf(out, "  samples:   %d (%d raw rows excluded)\n", summary.Samples, summary.Excluded)
	fmt.Fprintf(out, "  long rows: %d\n", summary.LongRows)
	for _, a := range summary.Artifacts {
		fmt.Fprintf(out, "  %-9s %s (%d rows)\n", a.Name, a.Path, a.Rows)
	}
	if summary.UnmappedCodes > 0 {
		fmt.Fprintf(out, "warning: %d categorical code(s) had no canonical form; run 'invertflow codes' to review\n",
			summary.UnmappedCodes)
	}
	return nil
}
