package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/slough-labs/invertflow/internal/artifact"
)

// CodesOptions holds flags for the codes command.
type CodesOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// codesSummary is the codes command's JSON payload.
type codesSummary struct {
	RunID string `json:"run_id"`
	Codes []struct {
		Kind        string `json:"kind"`
		Code        string `json:"code"`
		Occurrences int    `json:"occurrences"`
	} `json:"codes"`
}

// NewCodesCommand creates the codes command.
func NewCodesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CodesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "codes",
		Short: "List categorical codes with no canonical form",
		Long: `List the site and sample-type codes that passed through a run's
canonicalization without a match. Pass-through is silent during the run
by design; this report is the review surface for deciding whether a
spelling needs a new correction entry.

Example:
  invertflow codes --db ./invertflow.db
  invertflow codes --db ./invertflow.db --run 7c6f8a1e-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCodes(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the run-catalog database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID (defaults to the most recent run)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func listCodes(opts *CodesOptions, cmd *cobra.Command) error {
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "catalog database not found", err)
	}

	cat, err := artifact.OpenCatalog(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open catalog", err)
	}
	defer cat.Close()

	ctx := cmd.Context()

	var run *artifact.Run
	if opts.RunID != "" {
		run, err = cat.RunByID(ctx, opts.RunID)
	} else {
		run, err = cat.LatestRun(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "no matching run in catalog", err)
	}

	codes, err := cat.UnmappedCodes(ctx, run.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read unmapped codes", err)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		summary := codesSummary{RunID: run.ID}
		for _, c := range codes {
			summary.Codes = append(summary.Codes, struct {
				Kind        string `json:"kind"`
				Code        string `json:"code"`
				Occurrences int    `json:"occurrences"`
			}{c.Kind, c.Code, c.Occurrences})
		}
		return printJSON(out, summary)
	}

	if len(codes) == 0 {
		fmt.Fprintf(out, "run %s: every code canonicalized cleanly\n", run.ID)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Kind", "Code", "Occurrences"})
	for _, c := range codes {
		t.AppendRow(table.Row{c.Kind, c.Code, c.Occurrences})
	}
	t.Render()
	return nil
}
