package artifact

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slough-labs/invertflow/internal/reshape"
	"github.com/slough-labs/invertflow/internal/survey"
)

var testTaxa = []string{"amphipod", "copepod", "ostracod"}

func fixtureSamples() []survey.Sample {
	do := 8.1
	ph := 7.9
	return []survey.Sample{
		{
			Date:            time.Date(2018, time.March, 14, 0, 0, 0, 0, time.UTC),
			Year:            2018,
			Site:            "NEC",
			SiteType:        "slough",
			Reserve:         "north",
			SampleType:      "FB250",
			Season:          survey.SeasonSpring,
			BreachStatus:    "open",
			Water:           survey.WaterQuality{DissolvedOxygen: &do, PH: &ph},
			Counts:          map[string]float64{"amphipod": 2, "copepod": 4, "ostracod": 0},
			Observed:        map[string]bool{"amphipod": true, "copepod": true, "ostracod": true},
			SamplesInSeason: 2,
			SamplesInYear:   2,
			SamplesAtSite:   1,
			SourceFile:      "inverts_2018.csv",
			SourceRow:       1,
		},
		{
			Date:            time.Date(2020, time.February, 10, 0, 0, 0, 0, time.UTC),
			Year:            2020,
			Site:            "LP1",
			SiteType:        "pool",
			Reserve:         "south",
			SampleType:      "CORE",
			Season:          survey.SeasonWinter,
			BreachStatus:    "",
			Counts:          map[string]float64{"amphipod": 0.1, "copepod": 0, "ostracod": 0.5},
			Observed:        map[string]bool{"amphipod": true, "copepod": false, "ostracod": true},
			SamplesInSeason: 1,
			SamplesInYear:   1,
			SamplesAtSite:   1,
			SourceFile:      "inverts_2020.csv",
			SourceRow:       2,
		},
	}
}

func TestWriteAllProducesThreeArtifacts(t *testing.T) {
	dir := t.TempDir()
	samples := fixtureSamples()
	long := reshape.Long(samples, testTaxa)

	manifests, err := WriteAll(dir, samples, long, testTaxa)
	require.NoError(t, err)
	require.Len(t, manifests, 3)

	// Name order is deterministic.
	assert.Equal(t, NameLong, manifests[0].Name)
	assert.Equal(t, NameWide, manifests[1].Name)
	assert.Equal(t, NameWideLog, manifests[2].Name)

	assert.Equal(t, 5, manifests[0].Rows, "one long row per observed pair")
	assert.Equal(t, 2, manifests[1].Rows)
	assert.Equal(t, 2, manifests[2].Rows)

	for _, m := range manifests {
		assert.FileExists(t, m.Path)
		assert.NotEmpty(t, m.SHA256)
	}
}

func TestWriteAllWideGolden(t *testing.T) {
	dir := t.TempDir()
	samples := fixtureSamples()

	_, err := WriteAll(dir, samples, reshape.Long(samples, testTaxa), testTaxa)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "wide.csv"))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "wide", data)
}

func TestWriteAllIsByteIdenticalAcrossRuns(t *testing.T) {
	samples := fixtureSamples()
	long := reshape.Long(samples, testTaxa)

	read := func() map[string][]byte {
		dir := t.TempDir()
		_, err := WriteAll(dir, samples, long, testTaxa)
		require.NoError(t, err)
		out := make(map[string][]byte)
		for _, name := range []string{"wide", "wide_log", "long"} {
			data, err := os.ReadFile(filepath.Join(dir, name+".csv"))
			require.NoError(t, err)
			out[name] = data
		}
		return out
	}

	first, second := read(), read()
	for name := range first {
		assert.True(t, bytes.Equal(first[name], second[name]), "%s.csv must be byte-identical", name)
	}
}

func TestWideLogAppliesLog1p(t *testing.T) {
	dir := t.TempDir()
	samples := fixtureSamples()

	_, err := WriteAll(dir, samples, reshape.Long(samples, testTaxa), testTaxa)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "wide_log.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)

	// First sample: amphipod=2 -> log1p(2), ostracod=0 -> 0.
	cells := strings.Split(lines[1], ",")
	nCols := len(cells)
	assert.Equal(t, formatFloat(math.Log1p(2)), cells[nCols-3])
	assert.Equal(t, "0", cells[nCols-1])
}

func TestLongArtifactColumnsAndValues(t *testing.T) {
	dir := t.TempDir()
	samples := fixtureSamples()
	long := reshape.Long(samples, testTaxa)

	_, err := WriteAll(dir, samples, long, testTaxa)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "long.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	assert.Equal(t,
		"date,year,site,site_type,reserve,sample_type,season,breach_status,taxon,"+
			"organisms_L,organisms_L_season,organisms_L_year,organisms_L_site,"+
			"organisms_L_log,organisms_L_season_log,organisms_L_year_log,organisms_L_site_log",
		lines[0])

	// 3 observed pairs for the 2018 sample, 2 for 2020 (copepod dropped).
	require.Len(t, lines, 1+5)

	wantFirst := fmt.Sprintf("2018-03-14,2018,NEC,slough,north,FB250,spring,open,amphipod,2,1,1,2,%s,%s,%s,%s",
		formatFloat(math.Log1p(2)), formatFloat(math.Log1p(1)), formatFloat(math.Log1p(1)), formatFloat(math.Log1p(2)))
	assert.Equal(t, wantFirst, lines[1])

	// The 2020 sample has no copepod row.
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "2020-02-10") {
			assert.NotContains(t, line, "copepod")
		}
	}
}

func TestFormatMeasurementNilIsEmptyCell(t *testing.T) {
	assert.Equal(t, "", formatMeasurement(nil))
	v := 7.9
	assert.Equal(t, "7.9", formatMeasurement(&v))
}

func TestFileSHA256(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	sum1, err := FileSHA256(path)
	require.NoError(t, err)
	sum2, err := FileSHA256(path)
	require.NoError(t, err)

	assert.Equal(t, sum1, sum2)
	assert.Len(t, sum1, 64)
}
