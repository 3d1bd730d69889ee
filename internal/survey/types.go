package survey

import (
	"sort"
	"time"
)

// Season is one of the four survey seasons derived from a sample's date.
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
)

// Seasons lists the valid seasons in calendar order starting at winter.
var Seasons = []Season{SeasonWinter, SeasonSpring, SeasonSummer, SeasonFall}

// WaterQuality holds the optional sonde measurements joined onto a sample
// by (site, year, month). Nil means the measurement was not taken.
type WaterQuality struct {
	DissolvedOxygen *float64 // mg/L
	Conductivity    *float64 // uS/cm
	Salinity        *float64 // ppt
	Temperature     *float64 // degrees C
	Barometric      *float64 // mmHg
	PH              *float64
}

// Sample is one physical collection event after per-year normalization.
//
// Counts maps canonical taxon name to organisms per liter. Every canonical
// taxon has an entry (zero when absent); Observed records which taxa the
// sample's survey-year protocol actually carried a column for.
type Sample struct {
	Date       time.Time
	Year       int // survey year the sample was loaded under
	Site       string
	SampleType string

	// RawSeason is the season tag carried by the raw file, when the
	// year's schema had one. It may hold known misspellings; Season is
	// the canonical value.
	RawSeason string

	// Derived by the unifier.
	Season       Season
	SiteType     string // "slough" | "pool"
	Reserve      string
	BreachStatus string // empty when the date falls in no breach interval

	Counts   map[string]float64
	Observed map[string]bool

	Water WaterQuality

	// Group sizes joined back by the aggregator.
	SamplesInSeason int // samples sharing (season, sample_type, site_type)
	SamplesInYear   int // samples sharing (year, sample_type, site_type)
	SamplesAtSite   int // samples sharing (site, sample_type, site_type)

	// Provenance.
	SourceFile string
	SourceRow  int // 1-based data row within the raw file, after header skip
}

// SiteMeta is one row of the static site reference table.
type SiteMeta struct {
	Code        string
	Name        string
	SiteType    string // "slough" | "pool"
	Reserve     string
	Description string
}

// BreachInterval is one entry of the ordered breach-status table. A date
// belongs to the first interval containing it; bounds are inclusive.
type BreachInterval struct {
	Start  time.Time
	End    time.Time
	Status string
}

// Contains reports whether d falls within the interval, bounds inclusive.
func (b BreachInterval) Contains(d time.Time) bool {
	return !d.Before(b.Start) && !d.After(b.End)
}

// SortSamples orders samples canonically: by date, then site, sample type,
// source file, and source row. All artifacts are written in this order so
// re-runs from identical inputs are byte-identical.
func SortSamples(samples []Sample) {
	sort.SliceStable(samples, func(i, j int) bool {
		a, b := samples[i], samples[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Site != b.Site {
			return a.Site < b.Site
		}
		if a.SampleType != b.SampleType {
			return a.SampleType < b.SampleType
		}
		if a.SourceFile != b.SourceFile {
			return a.SourceFile < b.SourceFile
		}
		return a.SourceRow < b.SourceRow
	})
}

// DeriveSeason maps a calendar date to its season. The function is total:
// every date maps to exactly one of the four seasons. December through
// February is winter, and so on by meteorological convention.
func DeriveSeason(d time.Time) Season {
	switch d.Month() {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonFall
	}
}
