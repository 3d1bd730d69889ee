package reshape

import (
	"math"
	"time"

	"github.com/slough-labs/invertflow/internal/survey"
)

// Row is one (sample, taxon) pair of the long table.
//
// The numeric field set is fixed: organisms_L, its three rate variants,
// and the four corresponding log(1+x) values.
type Row struct {
	Date         time.Time
	Year         int
	Site         string
	SiteType     string
	Reserve      string
	SampleType   string
	Season       survey.Season
	BreachStatus string

	Taxon string

	OrganismsL       float64 // organisms per liter
	OrganismsLSeason float64 // per season group size
	OrganismsLYear   float64 // per year group size
	OrganismsLSite   float64 // per site group size

	OrganismsLLog       float64
	OrganismsLSeasonLog float64
	OrganismsLYearLog   float64
	OrganismsLSiteLog   float64

	// Provenance, carried for the unpivot but not serialized.
	SourceFile string
	SourceRow  int
}

// Long pivots the wide table into long form. Taxa iterate in canonical
// order within each sample, so output order is deterministic given the
// canonical sample order.
func Long(samples []survey.Sample, taxa []string) []Row {
	var rows []Row
	for _, s := range samples {
		for _, taxon := range taxa {
			if !s.Observed[taxon] {
				continue
			}
			v := s.Counts[taxon]
			seasonRate := v / float64(s.SamplesInSeason)
			yearRate := v / float64(s.SamplesInYear)
			siteRate := v / float64(s.SamplesAtSite)

			rows = append(rows, Row{
				Date:         s.Date,
				Year:         s.Year,
				Site:         s.Site,
				SiteType:     s.SiteType,
				Reserve:      s.Reserve,
				SampleType:   s.SampleType,
				Season:       s.Season,
				BreachStatus: s.BreachStatus,
				Taxon:        taxon,

				OrganismsL:       v,
				OrganismsLSeason: seasonRate,
				OrganismsLYear:   yearRate,
				OrganismsLSite:   siteRate,

				OrganismsLLog:       math.Log1p(v),
				OrganismsLSeasonLog: math.Log1p(seasonRate),
				OrganismsLYearLog:   math.Log1p(yearRate),
				OrganismsLSiteLog:   math.Log1p(siteRate),

				SourceFile: s.SourceFile,
				SourceRow:  s.SourceRow,
			})
		}
	}
	return rows
}

// sampleKey identifies one collection event across the pivot.
type sampleKey struct {
	date       time.Time
	year       int
	site       string
	sampleType string
	sourceFile string
	sourceRow  int
}

// Unpivot reconstructs the wide table from long rows. Only the cells
// present in the long table are populated; it is the exact inverse of
// Long on observed values.
func Unpivot(rows []Row) []survey.Sample {
	byKey := make(map[sampleKey]*survey.Sample)
	var order []sampleKey

	for _, r := range rows {
		key := sampleKey{
			date:       r.Date,
			year:       r.Year,
			site:       r.Site,
			sampleType: r.SampleType,
			sourceFile: r.SourceFile,
			sourceRow:  r.SourceRow,
		}
		s, ok := byKey[key]
		if !ok {
			s = &survey.Sample{
				Date:         r.Date,
				Year:         r.Year,
				Site:         r.Site,
				SiteType:     r.SiteType,
				Reserve:      r.Reserve,
				SampleType:   r.SampleType,
				Season:       r.Season,
				BreachStatus: r.BreachStatus,
				Counts:       make(map[string]float64),
				Observed:     make(map[string]bool),
				SourceFile:   r.SourceFile,
				SourceRow:    r.SourceRow,
			}
			byKey[key] = s
			order = append(order, key)
		}
		s.Counts[r.Taxon] = r.OrganismsL
		s.Observed[r.Taxon] = true
	}

	out := make([]survey.Sample, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	survey.SortSamples(out)
	return out
}
