package unify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slough-labs/invertflow/internal/config"
	"github.com/slough-labs/invertflow/internal/loader"
	"github.com/slough-labs/invertflow/internal/survey"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testConfig() *config.Pipeline {
	return &config.Pipeline{
		Taxa: []string{"amphipod", "copepod"},
		Sites: []survey.SiteMeta{
			{Code: "NEC", Name: "North East Channel", SiteType: "slough", Reserve: "north"},
			{Code: "NMP", Name: "North Marsh Pool", SiteType: "pool", Reserve: "north"},
		},
		SiteCorrections: map[string]string{"NEV": "NEC", "nmp": "NMP"},
		SampleTypes: config.SampleTypeRules{
			Exact: map[string]string{"FB 250": "FB250", "fb250": "FB250"},
			Substring: []config.SubstringRule{
				{Contains: "core", Canonical: "CORE"},
			},
		},
		SeasonRenames: map[string]string{"autum": "fall", "autumn": "fall"},
		Breaches: []survey.BreachInterval{
			{Start: date(2018, time.January, 15), End: date(2018, time.March, 20), Status: "open"},
			{Start: date(2018, time.March, 21), End: date(2018, time.June, 30), Status: "closing"},
			// Overlapping interval: first match must win.
			{Start: date(2018, time.March, 1), End: date(2018, time.December, 31), Status: "shadowed"},
		},
	}
}

func sample(d time.Time, site, sampleType string) survey.Sample {
	return survey.Sample{
		Date:       d,
		Year:       d.Year(),
		Site:       site,
		SampleType: sampleType,
		Counts:     map[string]float64{"amphipod": 1, "copepod": 0},
		Observed:   map[string]bool{"amphipod": true, "copepod": true},
	}
}

func TestUnifySiteCorrectionAndPassThrough(t *testing.T) {
	in := [][]survey.Sample{{
		sample(date(2018, time.March, 14), "NEV", "FB 250"),
		sample(date(2018, time.March, 15), "ZZZ9", "FB 250"),
	}}

	out, diags := Unify(in, testConfig(), nil)
	require.Len(t, out, 2)

	assert.Equal(t, "NEC", out[0].Site, "known misspelling corrected")
	assert.Equal(t, "ZZZ9", out[1].Site, "unknown code passes through")

	unmapped := diags.Unmapped()
	require.Len(t, unmapped, 1)
	assert.Equal(t, "site", unmapped[0].Kind)
	assert.Equal(t, "ZZZ9", unmapped[0].Code)
	assert.Equal(t, 1, unmapped[0].Occurrences)
}

func TestCanonicalizerIdempotence(t *testing.T) {
	c := NewCanonicalizer(testConfig())

	for _, code := range []string{"NEC", "ZZZ9", "NEV"} {
		once := c.Site(code)
		assert.Equal(t, once, c.Site(once), "site canon must be idempotent for %q", code)
	}
	for _, code := range []string{"FB 250", "fb250", "core A", "FB250", "CORE", "mystery"} {
		once := c.SampleType(code)
		assert.Equal(t, once, c.SampleType(once), "sample-type canon must be idempotent for %q", code)
	}
}

func TestCanonicalizerSampleTypeRules(t *testing.T) {
	c := NewCanonicalizer(testConfig())

	assert.Equal(t, "FB250", c.SampleType("FB 250"), "exact match")
	assert.Equal(t, "FB250", c.SampleType("fb250"), "exact match variant")
	assert.Equal(t, "CORE", c.SampleType("core A"), "substring family")
	assert.Equal(t, "CORE", c.SampleType("Sediment Core 2"), "substring is case-insensitive")
	assert.Equal(t, "drift net", c.SampleType("drift net"), "unknown passes through")
}

func TestCanonicalizerNFCNormalization(t *testing.T) {
	cfg := testConfig()
	cfg.SiteCorrections["LAGÚN"] = "LAG" // precomposed U+00DA
	c := NewCanonicalizer(cfg)

	// Decomposed form: U + combining acute accent.
	assert.Equal(t, "LAG", c.Site("LAGÚN"))
}

func TestUnifySeasonFromRawTagWithRename(t *testing.T) {
	s := sample(date(2018, time.September, 20), "NEC", "FB250")
	s.RawSeason = "autum" // the documented misspelled tag

	out, _ := Unify([][]survey.Sample{{s}}, testConfig(), nil)
	assert.Equal(t, survey.SeasonFall, out[0].Season)
}

func TestUnifySeasonDerivedFromDateWhenTagAbsent(t *testing.T) {
	s := sample(date(2018, time.January, 10), "NEC", "FB250")

	out, _ := Unify([][]survey.Sample{{s}}, testConfig(), nil)
	assert.Equal(t, survey.SeasonWinter, out[0].Season)
}

func TestUnifySeasonDerivedWhenTagUnresolvable(t *testing.T) {
	s := sample(date(2018, time.July, 4), "NEC", "FB250")
	s.RawSeason = "monsoon"

	out, _ := Unify([][]survey.Sample{{s}}, testConfig(), nil)
	assert.Equal(t, survey.SeasonSummer, out[0].Season)
}

func TestUnifyBreachStatusFirstMatchWins(t *testing.T) {
	cfg := testConfig()

	// 2018-03-15 is inside both "open" and "shadowed"; first wins.
	assert.Equal(t, "open", BreachStatus(date(2018, time.March, 15), cfg.Breaches))
	assert.Equal(t, "closing", BreachStatus(date(2018, time.April, 1), cfg.Breaches))
}

func TestUnifyBreachStatusBeforeAllIntervalsIsBlank(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, "", BreachStatus(date(2017, time.June, 1), cfg.Breaches))

	s := sample(date(2017, time.June, 1), "NEC", "FB250")
	out, _ := Unify([][]survey.Sample{{s}}, cfg, nil)
	assert.Equal(t, "", out[0].BreachStatus, "unclassifiable date must not error")
}

func TestUnifySiteMetadataJoin(t *testing.T) {
	in := [][]survey.Sample{{
		sample(date(2018, time.March, 14), "NEC", "FB250"),
		sample(date(2018, time.March, 14), "nmp", "core"),
		sample(date(2018, time.March, 14), "ZZZ9", "FB250"),
	}}

	out, _ := Unify(in, testConfig(), nil)

	assert.Equal(t, "slough", out[0].SiteType)
	assert.Equal(t, "north", out[0].Reserve)
	assert.Equal(t, "pool", out[1].SiteType, "lowercase correction then join")
	assert.Equal(t, "", out[2].SiteType, "unknown site has no metadata")
}

func TestUnifyWaterQualityJoinUsesCanonicalSite(t *testing.T) {
	do := 8.1
	wq := []loader.WaterQualityRecord{
		// Recorded under the misspelled code; must still join onto NEC.
		{Site: "NEV", Year: 2018, Month: time.March, Values: survey.WaterQuality{DissolvedOxygen: &do}},
	}
	in := [][]survey.Sample{{
		sample(date(2018, time.March, 14), "NEC", "FB250"),
		sample(date(2018, time.April, 2), "NEC", "FB250"), // different month: no match
	}}

	out, _ := Unify(in, testConfig(), wq)

	require.NotNil(t, out[0].Water.DissolvedOxygen)
	assert.Equal(t, 8.1, *out[0].Water.DissolvedOxygen)
	assert.Nil(t, out[1].Water.DissolvedOxygen)
}

func TestUnifyPreservesRowCountAndSorts(t *testing.T) {
	in := [][]survey.Sample{
		{
			sample(date(2020, time.February, 10), "NEC", "FB250"),
		},
		{
			sample(date(2018, time.March, 14), "NEC", "FB250"),
			sample(date(2018, time.March, 14), "NMP", "CORE"),
		},
	}

	out, _ := Unify(in, testConfig(), nil)

	require.Len(t, out, 3)
	assert.Equal(t, date(2018, time.March, 14), out[0].Date)
	assert.Equal(t, "NEC", out[0].Site)
	assert.Equal(t, "NMP", out[1].Site)
	assert.Equal(t, date(2020, time.February, 10), out[2].Date)
}
