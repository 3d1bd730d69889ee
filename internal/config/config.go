package config

import (
	"time"

	"github.com/slough-labs/invertflow/internal/survey"
)

// Canonical non-taxon columns a year's rename map may target.
const (
	ColDate       = "date"
	ColSite       = "site"
	ColSampleType = "sample_type"
	ColSeason     = "season" // optional raw season tag
)

// Override is one documented data-entry correction, applied to a single
// (row, taxon) cell after volume normalization. Exactly one of Scale or
// Set is non-nil.
type Override struct {
	Row   int // 1-based data row after header skip
	Taxon string
	Scale *float64
	Set   *float64
}

// Year describes one survey year's raw source and its normalization
// parameters. Adding a year means adding one of these to the config.
type Year struct {
	Year         int
	Path         string
	DateLayout   string
	HeaderSkip   int
	ExcludedRows map[int]bool // 1-based data rows dropped at load
	VolumeLiters float64
	Renames      map[string]string // raw header -> canonical column
	Taxa         []string          // canonical taxa observed this year
	Overrides    []Override
}

// SubstringRule collapses every sample-type spelling containing a
// fragment into one canonical code.
type SubstringRule struct {
	Contains  string
	Canonical string
}

// SampleTypeRules canonicalizes sample-type codes: exact matches first,
// then substring rules in order.
type SampleTypeRules struct {
	Exact     map[string]string
	Substring []SubstringRule
}

// WaterQuality points at the optional sonde-measurement CSV joined onto
// samples by (site, year, month).
type WaterQuality struct {
	Path       string
	DateLayout string
	HeaderSkip int
}

// Pipeline is the fully validated configuration consumed by the pipeline.
type Pipeline struct {
	Taxa            []string // canonical taxon column order
	Years           []Year
	Sites           []survey.SiteMeta
	SiteCorrections map[string]string
	SampleTypes     SampleTypeRules
	SeasonRenames   map[string]string
	Breaches        []survey.BreachInterval
	WaterQuality    *WaterQuality

	// Hash is the content hash of the loaded CUE files, recorded in the
	// run catalog for provenance.
	Hash string
}

// SiteByCode returns the site metadata lookup keyed by canonical code.
func (p *Pipeline) SiteByCode() map[string]survey.SiteMeta {
	m := make(map[string]survey.SiteMeta, len(p.Sites))
	for _, s := range p.Sites {
		m[s.Code] = s
	}
	return m
}

// YearFor returns the year config for the given survey year, or nil.
func (p *Pipeline) YearFor(year int) *Year {
	for i := range p.Years {
		if p.Years[i].Year == year {
			return &p.Years[i]
		}
	}
	return nil
}

// breachDateLayout is the date format used by the breach interval table.
const breachDateLayout = "2006-01-02"

func parseBreachDate(s string) (time.Time, error) {
	return time.ParseInLocation(breachDateLayout, s, time.UTC)
}
