package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/slough-labs/invertflow/internal/config"
)

// Row is one data row of a raw file, keyed by canonical column name.
// Index is 1-based and counted after the header, before exclusions, so
// it matches the row numbering used by config overrides and exclusions.
type Row struct {
	Index int
	Cells map[string]string
}

// Table is one year's raw file after header skip, renaming, and row
// exclusion. Cell values are still raw strings.
type Table struct {
	Year     int
	File     string
	Rows     []Row
	Excluded int // rows dropped via the year's excluded_rows list
}

// LoadYear reads the raw file for one survey year, relative to dataDir.
//
// The configured number of leading records is skipped, the next record is
// taken as the header, and every raw column named by the year's rename
// map must be present in it. Ragged vendor rows are tolerated: cells
// beyond a short row read as empty.
func LoadYear(dataDir string, y config.Year) (*Table, error) {
	path := filepath.Join(dataDir, y.Path)
	records, err := readCSV(path, y.Year)
	if err != nil {
		return nil, err
	}

	if len(records) <= y.HeaderSkip {
		return nil, &SchemaError{
			Code:    ErrCodeShortFile,
			File:    path,
			Year:    y.Year,
			Message: fmt.Sprintf("no header row after skipping %d records", y.HeaderSkip),
		}
	}

	header := records[y.HeaderSkip]
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	// Every raw column the rename map references must exist.
	for _, rawCol := range sortedKeys(y.Renames) {
		if _, ok := colIndex[rawCol]; !ok {
			return nil, &SchemaError{
				Code:    ErrCodeMissingColumn,
				File:    path,
				Year:    y.Year,
				Column:  rawCol,
				Message: "raw file is missing a column referenced by the rename map",
			}
		}
	}

	t := &Table{Year: y.Year, File: path}
	for i, record := range records[y.HeaderSkip+1:] {
		index := i + 1
		if y.ExcludedRows[index] {
			t.Excluded++
			continue
		}
		cells := make(map[string]string, len(y.Renames))
		for rawCol, canonCol := range y.Renames {
			pos := colIndex[rawCol]
			if pos < len(record) {
				cells[canonCol] = strings.TrimSpace(record[pos])
			} else {
				cells[canonCol] = ""
			}
		}
		t.Rows = append(t.Rows, Row{Index: index, Cells: cells})
	}

	return t, nil
}

// readCSV reads all records from path, tolerating ragged rows.
func readCSV(path string, year int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SchemaError{
			Code:    ErrCodeOpenFailed,
			File:    path,
			Year:    year,
			Message: fmt.Sprintf("cannot open raw file: %v", err),
		}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // vendor preambles and data rows differ in width
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &SchemaError{
			Code:    ErrCodeParseFailed,
			File:    path,
			Year:    year,
			Message: fmt.Sprintf("cannot parse CSV: %v", err),
		}
	}
	return records, nil
}

// sortedKeys returns the map keys in sorted order so schema errors are
// reported deterministically.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
