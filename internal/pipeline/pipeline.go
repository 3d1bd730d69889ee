package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slough-labs/invertflow/internal/aggregate"
	"github.com/slough-labs/invertflow/internal/artifact"
	"github.com/slough-labs/invertflow/internal/config"
	"github.com/slough-labs/invertflow/internal/loader"
	"github.com/slough-labs/invertflow/internal/normalize"
	"github.com/slough-labs/invertflow/internal/reshape"
	"github.com/slough-labs/invertflow/internal/survey"
	"github.com/slough-labs/invertflow/internal/unify"
)

// Options configures one pipeline run.
type Options struct {
	ConfigDir string
	DataDir   string // raw file paths in the config resolve against this
	OutDir    string

	// CatalogPath is the run-catalog database; empty disables recording.
	CatalogPath string

	Logger *slog.Logger

	// Now and NewRunID are injectable for deterministic tests. Nil means
	// wall clock and a fresh UUID.
	Now      func() time.Time
	NewRunID func() string
}

// Result is everything one run produced.
type Result struct {
	RunID       string
	Config      *config.Pipeline
	Samples     []survey.Sample
	Long        []reshape.Row
	Diagnostics *unify.Diagnostics
	Manifests   []artifact.Manifest
	Excluded    int // raw rows dropped via per-year excluded_rows lists
}

// Run executes the full pipeline. The first fatal condition aborts the
// run; recoverable anomalies (unparseable count cells, unmapped codes,
// dates outside every breach interval) degrade to zero, pass-through,
// or blank per the stage contracts.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newRunID := opts.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}

	logger.Info("loading config", "dir", opts.ConfigDir)
	cfg, err := config.Load(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Info("config loaded", "years", len(cfg.Years), "taxa", len(cfg.Taxa), "sites", len(cfg.Sites))

	perYear := make([][]survey.Sample, 0, len(cfg.Years))
	excluded := 0
	for _, y := range cfg.Years {
		logger.Info("loading year", "year", y.Year, "path", y.Path, "volume_liters", y.VolumeLiters)
		table, err := loader.LoadYear(opts.DataDir, y)
		if err != nil {
			return nil, fmt.Errorf("load year %d: %w", y.Year, err)
		}
		excluded += table.Excluded

		samples, err := normalize.Year(table, y, cfg.Taxa)
		if err != nil {
			return nil, fmt.Errorf("normalize year %d: %w", y.Year, err)
		}
		logger.Debug("year normalized", "year", y.Year, "samples", len(samples), "excluded", table.Excluded)
		perYear = append(perYear, samples)
	}

	var wq []loader.WaterQualityRecord
	if cfg.WaterQuality != nil {
		logger.Info("loading water quality", "path", cfg.WaterQuality.Path)
		wq, err = loader.LoadWaterQuality(opts.DataDir, *cfg.WaterQuality)
		if err != nil {
			return nil, fmt.Errorf("load water quality: %w", err)
		}
	}

	unified, diags := unify.Unify(perYear, cfg, wq)
	logger.Info("samples unified", "rows", len(unified), "unmapped_codes", len(diags.Unmapped()))

	unified = aggregate.Attach(unified)
	long := reshape.Long(unified, cfg.Taxa)
	logger.Info("reshaped", "long_rows", len(long))

	manifests, err := artifact.WriteAll(opts.OutDir, unified, long, cfg.Taxa)
	if err != nil {
		return nil, fmt.Errorf("write artifacts: %w", err)
	}
	for _, m := range manifests {
		logger.Info("artifact written", "name", m.Name, "path", m.Path, "rows", m.Rows)
	}

	result := &Result{
		RunID:       newRunID(),
		Config:      cfg,
		Samples:     unified,
		Long:        long,
		Diagnostics: diags,
		Manifests:   manifests,
		Excluded:    excluded,
	}

	if opts.CatalogPath != "" {
		if err := record(ctx, opts.CatalogPath, result, now()); err != nil {
			return nil, err
		}
		logger.Info("run recorded", "run_id", result.RunID, "catalog", opts.CatalogPath)
	}

	return result, nil
}

// record writes the run into the catalog.
func record(ctx context.Context, catalogPath string, r *Result, at time.Time) error {
	cat, err := artifact.OpenCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	run := artifact.Run{
		ID:         r.RunID,
		CreatedAt:  at,
		ConfigHash: r.Config.Hash,
		Samples:    len(r.Samples),
		LongRows:   len(r.Long),
		Excluded:   r.Excluded,
	}
	if err := cat.RecordRun(ctx, run, r.Manifests, r.Diagnostics.Unmapped()); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}
