package normalize

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/slough-labs/invertflow/internal/config"
	"github.com/slough-labs/invertflow/internal/loader"
	"github.com/slough-labs/invertflow/internal/survey"
)

// Error code constants for normalization.
const (
	ErrCodeBadDate           = "NORM_BAD_DATE"           // date cell did not parse
	ErrCodeOverrideUnmatched = "NORM_OVERRIDE_UNMATCHED" // override row not present
)

// Error is a fatal normalization failure for one year's table.
type Error struct {
	Code    string
	File    string
	Row     int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (file=%s, row=%d)", e.Code, e.Message, e.File, e.Row)
}

// Year normalizes one loaded table into canonical samples.
//
// Every sample carries an entry for every canonical taxon: observed taxa
// hold raw/volume organisms per liter, the rest hold zero with
// Observed=false. Overrides are applied after volume normalization; an
// override whose row was excluded or never existed is a fatal error,
// since a documented correction that silently stops applying would be
// worse than a crash.
func Year(table *loader.Table, y config.Year, canonicalTaxa []string) ([]survey.Sample, error) {
	observed := make(map[string]bool, len(y.Taxa))
	for _, t := range y.Taxa {
		observed[t] = true
	}

	samples := make([]survey.Sample, 0, len(table.Rows))
	byIndex := make(map[int]int, len(table.Rows)) // raw row index -> samples position

	for _, row := range table.Rows {
		dateCell := row.Cells[config.ColDate]
		d, err := time.ParseInLocation(y.DateLayout, dateCell, time.UTC)
		if err != nil {
			return nil, &Error{
				Code:    ErrCodeBadDate,
				File:    table.File,
				Row:     row.Index,
				Message: fmt.Sprintf("cannot parse date %q with layout %q", dateCell, y.DateLayout),
			}
		}

		s := survey.Sample{
			Date:       d,
			Year:       y.Year,
			Site:       row.Cells[config.ColSite],
			SampleType: row.Cells[config.ColSampleType],
			RawSeason:  row.Cells[config.ColSeason],
			Counts:     make(map[string]float64, len(canonicalTaxa)),
			Observed:   make(map[string]bool, len(canonicalTaxa)),
			SourceFile: table.File,
			SourceRow:  row.Index,
		}

		for _, taxon := range canonicalTaxa {
			if !observed[taxon] {
				s.Counts[taxon] = 0
				s.Observed[taxon] = false
				continue
			}
			s.Counts[taxon] = coerceCount(row.Cells[taxon]) / y.VolumeLiters
			s.Observed[taxon] = true
		}

		byIndex[row.Index] = len(samples)
		samples = append(samples, s)
	}

	for _, ov := range y.Overrides {
		pos, ok := byIndex[ov.Row]
		if !ok {
			return nil, &Error{
				Code:    ErrCodeOverrideUnmatched,
				File:    table.File,
				Row:     ov.Row,
				Message: fmt.Sprintf("override for taxon %q references a row that was not loaded", ov.Taxon),
			}
		}
		switch {
		case ov.Scale != nil:
			samples[pos].Counts[ov.Taxon] *= *ov.Scale
		case ov.Set != nil:
			samples[pos].Counts[ov.Taxon] = *ov.Set
		}
	}

	return samples, nil
}

// coerceCount parses one raw count cell. Blank, unparseable, and NaN
// values all contribute zero; the row is never dropped for a bad cell.
func coerceCount(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}
