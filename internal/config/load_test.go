package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadValidConfig(t *testing.T) {
	p, err := Load("testdata/valid")
	require.NoError(t, err)

	assert.Equal(t, []string{"amphipod", "copepod", "ostracod", "polychaete"}, p.Taxa)
	require.Len(t, p.Years, 2)

	y2018 := p.YearFor(2018)
	require.NotNil(t, y2018)
	assert.Equal(t, 7.5, y2018.VolumeLiters)
	assert.Equal(t, 2, y2018.HeaderSkip)
	assert.Equal(t, "1/2/2006", y2018.DateLayout)
	assert.Equal(t, "date", y2018.Renames["Date"])
	assert.Equal(t, []string{"amphipod", "copepod", "ostracod"}, y2018.Taxa)
	require.Len(t, y2018.Overrides, 1)
	require.NotNil(t, y2018.Overrides[0].Scale)
	assert.Equal(t, 0.1, *y2018.Overrides[0].Scale)
	assert.Nil(t, y2018.Overrides[0].Set)

	y2020 := p.YearFor(2020)
	require.NotNil(t, y2020)
	assert.Equal(t, float64(70), y2020.VolumeLiters)
	assert.True(t, y2020.ExcludedRows[7])
	// date_layout defaults from the schema.
	assert.Equal(t, "2006-01-02", y2020.DateLayout)

	assert.Equal(t, "NEC", p.SiteCorrections["NEV"])
	assert.Equal(t, "FB250", p.SampleTypes.Exact["FB 250"])
	require.Len(t, p.SampleTypes.Substring, 1)
	assert.Equal(t, "CORE", p.SampleTypes.Substring[0].Canonical)
	assert.Equal(t, "fall", p.SeasonRenames["autum"])

	require.Len(t, p.Breaches, 3)
	assert.Equal(t, "open", p.Breaches[0].Status)
	assert.Equal(t, time.Date(2018, time.January, 15, 0, 0, 0, 0, time.UTC), p.Breaches[0].Start)

	assert.NotEmpty(t, p.Hash)
}

func TestLoadConfigHashIsStable(t *testing.T) {
	a, err := Load("testdata/valid")
	require.NoError(t, err)
	b, err := Load("testdata/valid")
	require.NoError(t, err)
	assert.Equal(t, a.Hash, b.Hash)
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := Load("testdata/does-not-exist")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoadRejectsRenameMapMissingSampleType(t *testing.T) {
	_, err := Load("testdata/bad_rename")
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeBadValue, loadErr.Code)
	assert.Contains(t, loadErr.Message, "sample_type")
}

func TestSiteByCode(t *testing.T) {
	p, err := Load("testdata/valid")
	require.NoError(t, err)

	byCode := p.SiteByCode()
	require.Contains(t, byCode, "NEC")
	assert.Equal(t, "slough", byCode["NEC"].SiteType)
	assert.Equal(t, "pool", byCode["NMP"].SiteType)
}

func TestYearForUnknownYear(t *testing.T) {
	p, err := Load("testdata/valid")
	require.NoError(t, err)
	assert.Nil(t, p.YearFor(1999))
}
