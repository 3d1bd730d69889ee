package config

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error code constants for configuration loading.
const (
	ErrCodeNotFound   = "CFG_NOT_FOUND"   // config directory missing
	ErrCodeNoFiles    = "CFG_NO_FILES"    // no CUE files in directory
	ErrCodeLoadFailed = "CFG_LOAD_FAILED" // CUE load/build failed
	ErrCodeInvalid    = "CFG_INVALID"     // schema validation failed
	ErrCodeBadValue   = "CFG_BAD_VALUE"   // cross-field validation failed
)

// LoadError is a configuration loading failure with an error code and,
// when available, the CUE source position.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func badValue(format string, args ...any) *LoadError {
	return &LoadError{Code: ErrCodeBadValue, Message: fmt.Sprintf(format, args...)}
}
