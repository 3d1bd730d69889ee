package loader

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/slough-labs/invertflow/internal/config"
	"github.com/slough-labs/invertflow/internal/survey"
)

// Water-quality column names. The sonde export uses these headers
// directly; there is no per-year renaming for water quality.
const (
	wqColSite = "site"
	wqColDate = "date"
	wqColDO   = "do_mgL"
	wqColCond = "conductivity_uScm"
	wqColSal  = "salinity_ppt"
	wqColTemp = "temp_C"
	wqColBaro = "baro_mmHg"
	wqColPH   = "pH"
)

// WaterQualityRecord is one sonde reading, keyed for the (site, year,
// month) join onto samples. Site is the raw code; canonicalization
// happens in the unifier so typo corrections apply to both tables.
type WaterQualityRecord struct {
	Site   string
	Year   int
	Month  time.Month
	Values survey.WaterQuality
}

// LoadWaterQuality reads the optional sonde-measurement CSV. Rows whose
// date fails to parse cannot be joined and are skipped; measurement
// cells that fail numeric coercion read as nil, never as zero.
func LoadWaterQuality(dataDir string, cfg config.WaterQuality) ([]WaterQualityRecord, error) {
	path := filepath.Join(dataDir, cfg.Path)
	records, err := readCSV(path, 0)
	if err != nil {
		return nil, err
	}
	if len(records) <= cfg.HeaderSkip {
		return nil, &SchemaError{
			Code:    ErrCodeShortFile,
			File:    path,
			Message: "no header row in water-quality file",
		}
	}

	header := records[cfg.HeaderSkip]
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}
	for _, req := range []string{wqColSite, wqColDate} {
		if _, ok := colIndex[req]; !ok {
			return nil, &SchemaError{
				Code:    ErrCodeMissingColumn,
				File:    path,
				Column:  req,
				Message: "water-quality file is missing a required column",
			}
		}
	}

	cell := func(record []string, col string) string {
		pos, ok := colIndex[col]
		if !ok || pos >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[pos])
	}

	var out []WaterQualityRecord
	for _, record := range records[cfg.HeaderSkip+1:] {
		d, err := time.ParseInLocation(cfg.DateLayout, cell(record, wqColDate), time.UTC)
		if err != nil {
			continue
		}
		out = append(out, WaterQualityRecord{
			Site:  cell(record, wqColSite),
			Year:  d.Year(),
			Month: d.Month(),
			Values: survey.WaterQuality{
				DissolvedOxygen: parseMeasurement(cell(record, wqColDO)),
				Conductivity:    parseMeasurement(cell(record, wqColCond)),
				Salinity:        parseMeasurement(cell(record, wqColSal)),
				Temperature:     parseMeasurement(cell(record, wqColTemp)),
				Barometric:      parseMeasurement(cell(record, wqColBaro)),
				PH:              parseMeasurement(cell(record, wqColPH)),
			},
		})
	}
	return out, nil
}

// parseMeasurement coerces one sonde cell. Blank or unparseable values
// stay nil: a missing measurement is missing, not zero.
func parseMeasurement(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}
