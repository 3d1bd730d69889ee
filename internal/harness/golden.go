package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertArtifactGolden compares one written artifact against a golden
// file at testdata/golden/{scenario}_{artifact}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Only the log-free artifacts should be byte-pinned this way. The log
// artifacts carry log1p values; their rendering is asserted
// programmatically in the pipeline tests instead.
func AssertArtifactGolden(t *testing.T, r *Result, artifact string) error {
	t.Helper()

	path := filepath.Join(r.OutDir, artifact+".csv")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact %s: %w", artifact, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, r.Scenario.Name+"_"+artifact, data)
	return nil
}
