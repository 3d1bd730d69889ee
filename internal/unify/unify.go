package unify

import (
	"time"

	"github.com/slough-labs/invertflow/internal/config"
	"github.com/slough-labs/invertflow/internal/loader"
	"github.com/slough-labs/invertflow/internal/survey"
)

// wqKey is the (site, year, month) water-quality join key.
type wqKey struct {
	site  string
	year  int
	month time.Month
}

// Unify concatenates the per-year sample slices into one table in
// canonical row order, applies categorical canonicalization, derives
// season, site type, reserve, and breach status, and joins water-quality
// measurements. It returns a new slice; inputs are not mutated.
//
// Row count is preserved: one output row per input sample. No
// canonicalization or derivation failure drops a record.
func Unify(perYear [][]survey.Sample, cfg *config.Pipeline, wq []loader.WaterQualityRecord) ([]survey.Sample, *Diagnostics) {
	canon := NewCanonicalizer(cfg)
	diags := NewDiagnostics()
	sites := cfg.SiteByCode()

	wqBySiteMonth := make(map[wqKey]survey.WaterQuality, len(wq))
	for _, rec := range wq {
		key := wqKey{site: canon.Site(rec.Site), year: rec.Year, month: rec.Month}
		wqBySiteMonth[key] = rec.Values
	}

	var unified []survey.Sample
	for _, samples := range perYear {
		for _, s := range samples {
			s.Site = canon.Site(s.Site)
			if !canon.KnownSite(s.Site) {
				diags.addSite(s.Site)
			}

			s.SampleType = canon.SampleType(s.SampleType)
			if !canon.KnownSampleType(s.SampleType) {
				diags.addSampleType(s.SampleType)
			}

			if season, ok := canon.Season(s.RawSeason); ok {
				s.Season = season
			} else {
				s.Season = survey.DeriveSeason(s.Date)
			}

			if meta, ok := sites[s.Site]; ok {
				s.SiteType = meta.SiteType
				s.Reserve = meta.Reserve
			}

			s.BreachStatus = BreachStatus(s.Date, cfg.Breaches)

			if values, ok := wqBySiteMonth[wqKey{site: s.Site, year: s.Date.Year(), month: s.Date.Month()}]; ok {
				s.Water = values
			}

			unified = append(unified, s)
		}
	}

	survey.SortSamples(unified)
	return unified, diags
}

// BreachStatus returns the status of the first interval containing d,
// or the empty string when d falls in no interval. A date outside all
// intervals is not an error; the status column is simply left blank.
func BreachStatus(d time.Time, intervals []survey.BreachInterval) string {
	for _, iv := range intervals {
		if iv.Contains(d) {
			return iv.Status
		}
	}
	return ""
}
