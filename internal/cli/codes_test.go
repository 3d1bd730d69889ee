package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRun executes the run command into a temp catalog and returns
// the database path.
func recordedRun(t *testing.T) string {
	t.Helper()

	configDir := fixtureDir(t, "config")
	dataDir := fixtureDir(t, "data")
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "invertflow.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{
		"--config", configDir,
		"--data", dataDir,
		"--out", filepath.Join(tmpDir, "out"),
		"--db", dbPath,
	})
	require.NoError(t, cmd.Execute())

	return dbPath
}

func TestCodesCommand_Text(t *testing.T) {
	dbPath := recordedRun(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCodesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "drift net")
	assert.Contains(t, output, "ZZZ9")
	assert.Contains(t, output, "sample_type")
	assert.Contains(t, output, "site")
}

func TestCodesCommand_JSON(t *testing.T) {
	dbPath := recordedRun(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewCodesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var summary codesSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &summary))
	assert.NotEmpty(t, summary.RunID)
	require.Len(t, summary.Codes, 2)

	// Sorted by kind then code.
	assert.Equal(t, "sample_type", summary.Codes[0].Kind)
	assert.Equal(t, "drift net", summary.Codes[0].Code)
	assert.Equal(t, 1, summary.Codes[0].Occurrences)
	assert.Equal(t, "site", summary.Codes[1].Kind)
	assert.Equal(t, "ZZZ9", summary.Codes[1].Code)
}

func TestCodesCommand_MissingDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCodesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", "/nonexistent/invertflow.db"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCodesCommand_UnknownRun(t *testing.T) {
	dbPath := recordedRun(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCodesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--run", "no-such-run"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
