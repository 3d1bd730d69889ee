package loader

import "fmt"

// Error code constants for raw-file loading.
const (
	ErrCodeOpenFailed    = "LOAD_OPEN_FAILED"    // file missing or unreadable
	ErrCodeParseFailed   = "LOAD_PARSE_FAILED"   // CSV structure unreadable
	ErrCodeShortFile     = "LOAD_SHORT_FILE"     // no header after the configured skip
	ErrCodeMissingColumn = "LOAD_MISSING_COLUMN" // rename map references an absent column
)

// SchemaError is a fatal per-year loading failure. Schema errors abort
// the whole run: downstream stages assume every configured column is
// covered for every year.
type SchemaError struct {
	Code    string
	File    string
	Year    int
	Column  string // set for ErrCodeMissingColumn
	Message string
}

func (e *SchemaError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s: %s (file=%s, year=%d, column=%q)", e.Code, e.Message, e.File, e.Year, e.Column)
	}
	return fmt.Sprintf("%s: %s (file=%s, year=%d)", e.Code, e.Message, e.File, e.Year)
}
