package artifact

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/slough-labs/invertflow/internal/reshape"
	"github.com/slough-labs/invertflow/internal/survey"
)

// Artifact names used in file names and the catalog.
const (
	NameWide    = "wide"
	NameWideLog = "wide_log"
	NameLong    = "long"
)

// Non-taxon columns of the wide artifacts, in output order.
var wideMetaColumns = []string{
	"date", "year", "site", "site_type", "reserve", "sample_type",
	"season", "breach_status",
	"do_mgL", "conductivity_uScm", "salinity_ppt", "temp_C", "baro_mmHg", "pH",
	"n_samples_season", "n_samples_year", "n_samples_site",
}

// Columns of the long artifact, in output order.
var longColumns = []string{
	"date", "year", "site", "site_type", "reserve", "sample_type",
	"season", "breach_status", "taxon",
	"organisms_L", "organisms_L_season", "organisms_L_year", "organisms_L_site",
	"organisms_L_log", "organisms_L_season_log", "organisms_L_year_log", "organisms_L_site_log",
}

const dateLayout = "2006-01-02"

// WriteAll writes the three CSV artifacts into dir and returns their
// manifests in name order. Each write is a whole-file overwrite.
func WriteAll(dir string, samples []survey.Sample, long []reshape.Row, taxa []string) ([]Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	type job struct {
		name  string
		write func(w io.Writer) (int, error)
	}
	jobs := []job{
		{NameLong, func(w io.Writer) (int, error) { return writeLong(w, long) }},
		{NameWide, func(w io.Writer) (int, error) { return writeWide(w, samples, taxa, false) }},
		{NameWideLog, func(w io.Writer) (int, error) { return writeWide(w, samples, taxa, true) }},
	}

	var manifests []Manifest
	for _, j := range jobs {
		path := filepath.Join(dir, j.name+".csv")
		rows, err := writeFile(path, j.write)
		if err != nil {
			return nil, fmt.Errorf("write %s artifact: %w", j.name, err)
		}
		sum, err := FileSHA256(path)
		if err != nil {
			return nil, fmt.Errorf("hash %s artifact: %w", j.name, err)
		}
		manifests = append(manifests, Manifest{Name: j.name, Path: path, Rows: rows, SHA256: sum})
	}
	return manifests, nil
}

func writeFile(path string, write func(w io.Writer) (int, error)) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	rows, err := write(f)
	if err != nil {
		f.Close()
		return 0, err
	}
	return rows, f.Close()
}

// writeWide writes the wide table: one row per sample, one column per
// canonical taxon. With logTransform, taxon cells hold log(1+count).
func writeWide(w io.Writer, samples []survey.Sample, taxa []string, logTransform bool) (int, error) {
	cw := csv.NewWriter(w)

	header := append(append([]string{}, wideMetaColumns...), taxa...)
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	for _, s := range samples {
		record := []string{
			s.Date.Format(dateLayout),
			strconv.Itoa(s.Year),
			s.Site,
			s.SiteType,
			s.Reserve,
			s.SampleType,
			string(s.Season),
			s.BreachStatus,
			formatMeasurement(s.Water.DissolvedOxygen),
			formatMeasurement(s.Water.Conductivity),
			formatMeasurement(s.Water.Salinity),
			formatMeasurement(s.Water.Temperature),
			formatMeasurement(s.Water.Barometric),
			formatMeasurement(s.Water.PH),
			strconv.Itoa(s.SamplesInSeason),
			strconv.Itoa(s.SamplesInYear),
			strconv.Itoa(s.SamplesAtSite),
		}
		for _, taxon := range taxa {
			v := s.Counts[taxon]
			if logTransform {
				v = math.Log1p(v)
			}
			record = append(record, formatFloat(v))
		}
		if err := cw.Write(record); err != nil {
			return 0, err
		}
	}

	cw.Flush()
	return len(samples), cw.Error()
}

// writeLong writes the long (sample, taxon) table.
func writeLong(w io.Writer, rows []reshape.Row) (int, error) {
	cw := csv.NewWriter(w)

	if err := cw.Write(longColumns); err != nil {
		return 0, err
	}

	for _, r := range rows {
		record := []string{
			r.Date.Format(dateLayout),
			strconv.Itoa(r.Year),
			r.Site,
			r.SiteType,
			r.Reserve,
			r.SampleType,
			string(r.Season),
			r.BreachStatus,
			r.Taxon,
			formatFloat(r.OrganismsL),
			formatFloat(r.OrganismsLSeason),
			formatFloat(r.OrganismsLYear),
			formatFloat(r.OrganismsLSite),
			formatFloat(r.OrganismsLLog),
			formatFloat(r.OrganismsLSeasonLog),
			formatFloat(r.OrganismsLYearLog),
			formatFloat(r.OrganismsLSiteLog),
		}
		if err := cw.Write(record); err != nil {
			return 0, err
		}
	}

	cw.Flush()
	return len(rows), cw.Error()
}

// formatFloat renders a float with the shortest representation that
// round-trips, so output is deterministic and diff-friendly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatMeasurement renders a nullable measurement; nil is an empty cell.
func formatMeasurement(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// FileSHA256 returns the hex SHA-256 of a file's contents.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
