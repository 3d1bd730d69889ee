package aggregate

import (
	"github.com/slough-labs/invertflow/internal/survey"
)

type seasonKey struct {
	season     survey.Season
	sampleType string
	siteType   string
}

type yearKey struct {
	year       int
	sampleType string
	siteType   string
}

type siteKey struct {
	site       string
	sampleType string
	siteType   string
}

// Attach computes the three group-size tables over the unified samples
// and returns a new slice with the sizes joined onto every row. The
// input is not mutated; group sizes are recomputed from scratch on every
// run, never incrementally.
func Attach(samples []survey.Sample) []survey.Sample {
	bySeason := make(map[seasonKey]int)
	byYear := make(map[yearKey]int)
	bySite := make(map[siteKey]int)

	for _, s := range samples {
		bySeason[seasonKeyOf(s)]++
		byYear[yearKeyOf(s)]++
		bySite[siteKeyOf(s)]++
	}

	out := make([]survey.Sample, len(samples))
	for i, s := range samples {
		s.SamplesInSeason = bySeason[seasonKeyOf(s)]
		s.SamplesInYear = byYear[yearKeyOf(s)]
		s.SamplesAtSite = bySite[siteKeyOf(s)]
		out[i] = s
	}
	return out
}

func seasonKeyOf(s survey.Sample) seasonKey {
	return seasonKey{season: s.Season, sampleType: s.SampleType, siteType: s.SiteType}
}

func yearKeyOf(s survey.Sample) yearKey {
	return yearKey{year: s.Year, sampleType: s.SampleType, siteType: s.SiteType}
}

func siteKeyOf(s survey.Sample) siteKey {
	return siteKey{site: s.Site, sampleType: s.SampleType, siteType: s.SiteType}
}
