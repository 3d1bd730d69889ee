package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError_Error(t *testing.T) {
	err := NewExitError(ExitFailure, "pipeline failed")
	assert.Equal(t, "pipeline failed", err.Error())

	wrapped := WrapExitError(ExitCommandError, "catalog not found", errors.New("no such file"))
	assert.Equal(t, "catalog not found: no such file", wrapped.Error())
}

func TestExitError_Unwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := WrapExitError(ExitFailure, "write failed", inner)
	assert.ErrorIs(t, err, inner)
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"exit_error_failure", NewExitError(ExitFailure, "boom"), ExitFailure},
		{"exit_error_command", NewExitError(ExitCommandError, "bad flag"), ExitCommandError},
		{"wrapped_exit_error", fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner")), ExitCommandError},
		{"plain_error", errors.New("something"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestPrintJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	err := printJSON(buf, map[string]int{"samples": 6})
	require.NoError(t, err)

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 6, decoded["samples"])
}
