package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Baseline(t *testing.T) {
	r, err := RunFile(filepath.Join("testdata", "scenarios", "baseline.yaml"))
	require.NoError(t, err)
	defer r.Cleanup()

	require.NoError(t, Verify(r))

	assert.Equal(t, "run-baseline", r.Run.RunID)
	for _, name := range []string{"wide.csv", "wide_log.csv", "long.csv"} {
		_, statErr := os.Stat(filepath.Join(r.OutDir, name))
		assert.NoError(t, statErr, name)
	}

	// catalog: true writes the catalog into the scenario output dir.
	require.NotEmpty(t, r.CatalogPath)
	_, err = os.Stat(r.CatalogPath)
	assert.NoError(t, err)
}

func TestRun_ReplayIsByteIdentical(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "baseline.yaml"))
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	defer first.Cleanup()

	second, err := Run(s)
	require.NoError(t, err)
	defer second.Cleanup()

	require.Len(t, second.Run.Manifests, len(first.Run.Manifests))
	for i, m := range first.Run.Manifests {
		assert.Equal(t, m.Name, second.Run.Manifests[i].Name)
		assert.Equal(t, m.SHA256, second.Run.Manifests[i].SHA256, m.Name)
	}
}

func TestVerify_ReportsEveryFailure(t *testing.T) {
	r, err := RunFile(filepath.Join("testdata", "scenarios", "baseline.yaml"))
	require.NoError(t, err)
	defer r.Cleanup()

	broken := *r.Scenario
	broken.Expect.Samples = 99
	broken.Expect.Excluded = 7
	brokenResult := *r
	brokenResult.Scenario = &broken

	err = Verify(&brokenResult)
	require.Error(t, err)

	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Len(t, aerr.Failures, 2)
	assert.Contains(t, err.Error(), "samples: expected 99")
	assert.Contains(t, err.Error(), "excluded rows: expected 7")
}
