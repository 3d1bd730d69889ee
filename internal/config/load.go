package config

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/slough-labs/invertflow/internal/survey"
)

//go:embed schema.cue
var schemaCUE string

// rawPipeline mirrors the CUE schema for decoding. Dates and lookups are
// converted into their typed forms by convert().
type rawPipeline struct {
	Taxa  []string `json:"taxa"`
	Years []struct {
		Year         int               `json:"year"`
		Path         string            `json:"path"`
		DateLayout   string            `json:"date_layout"`
		HeaderSkip   int               `json:"header_skip"`
		ExcludedRows []int             `json:"excluded_rows"`
		VolumeLiters float64           `json:"volume_liters"`
		Renames      map[string]string `json:"renames"`
		Taxa         []string          `json:"taxa"`
		Overrides    []struct {
			Row   int      `json:"row"`
			Taxon string   `json:"taxon"`
			Scale *float64 `json:"scale,omitempty"`
			Set   *float64 `json:"set,omitempty"`
		} `json:"overrides"`
	} `json:"years"`
	Sites []struct {
		Code        string `json:"code"`
		Name        string `json:"name"`
		SiteType    string `json:"site_type"`
		Reserve     string `json:"reserve"`
		Description string `json:"description"`
	} `json:"sites"`
	SiteCorrections map[string]string `json:"site_corrections"`
	SampleTypes     struct {
		Exact     map[string]string `json:"exact"`
		Substring []struct {
			Contains  string `json:"contains"`
			Canonical string `json:"canonical"`
		} `json:"substring"`
	} `json:"sample_types"`
	SeasonRenames map[string]string `json:"season_renames"`
	Breaches      []struct {
		Start  string `json:"start"`
		End    string `json:"end"`
		Status string `json:"status"`
	} `json:"breaches"`
	WaterQuality *struct {
		Path       string `json:"path"`
		DateLayout string `json:"date_layout"`
		HeaderSkip int    `json:"header_skip"`
	} `json:"water_quality,omitempty"`
}

// Load reads every .cue file under dir, validates the result against the
// embedded schema, and returns the typed pipeline configuration.
func Load(dir string) (*Pipeline, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing config directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("compiling embedded schema: %v", err)}
	}

	args := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("resolving config file path %s: %v", f, err)}
		}
		args = append(args, rel)
	}
	instances := load.Instances(args, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	unified := value.Unify(schema)
	if err := unified.Validate(cue.Final()); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("config does not satisfy schema: %v", err)}
	}

	var raw rawPipeline
	if err := unified.LookupPath(cue.ParsePath("pipeline")).Decode(&raw); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("decoding pipeline config: %v", err)}
	}

	p, err := convert(&raw)
	if err != nil {
		return nil, err
	}

	hash, err := hashFiles(files)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("hashing config files: %v", err)}
	}
	p.Hash = hash

	return p, nil
}

// convert turns the decoded raw config into the typed Pipeline, applying
// the cross-field validation the CUE schema cannot express.
func convert(raw *rawPipeline) (*Pipeline, error) {
	if len(raw.Taxa) == 0 {
		return nil, badValue("pipeline.taxa must list at least one canonical taxon")
	}
	if len(raw.Years) == 0 {
		return nil, badValue("pipeline.years must list at least one survey year")
	}

	canonical := make(map[string]bool, len(raw.Taxa))
	for _, t := range raw.Taxa {
		if canonical[t] {
			return nil, badValue("duplicate canonical taxon %q", t)
		}
		canonical[t] = true
	}

	p := &Pipeline{
		Taxa:            raw.Taxa,
		SiteCorrections: raw.SiteCorrections,
		SeasonRenames:   raw.SeasonRenames,
	}

	seenYears := make(map[int]bool)
	for _, ry := range raw.Years {
		if seenYears[ry.Year] {
			return nil, badValue("duplicate survey year %d", ry.Year)
		}
		seenYears[ry.Year] = true

		y := Year{
			Year:         ry.Year,
			Path:         ry.Path,
			DateLayout:   ry.DateLayout,
			HeaderSkip:   ry.HeaderSkip,
			ExcludedRows: make(map[int]bool, len(ry.ExcludedRows)),
			VolumeLiters: ry.VolumeLiters,
			Renames:      ry.Renames,
			Taxa:         ry.Taxa,
		}
		for _, r := range ry.ExcludedRows {
			y.ExcludedRows[r] = true
		}

		targets := make(map[string]bool, len(ry.Renames))
		for rawCol, canonCol := range ry.Renames {
			if targets[canonCol] {
				return nil, badValue("year %d: rename map targets %q twice", ry.Year, canonCol)
			}
			targets[canonCol] = true
			switch canonCol {
			case ColDate, ColSite, ColSampleType, ColSeason:
			default:
				if !canonical[canonCol] {
					return nil, badValue("year %d: rename %q -> %q targets an unknown column", ry.Year, rawCol, canonCol)
				}
			}
		}
		for _, req := range []string{ColDate, ColSite, ColSampleType} {
			if !targets[req] {
				return nil, badValue("year %d: rename map must target %q", ry.Year, req)
			}
		}
		for _, t := range ry.Taxa {
			if !canonical[t] {
				return nil, badValue("year %d: observed taxon %q is not in pipeline.taxa", ry.Year, t)
			}
		}
		for _, ov := range ry.Overrides {
			if !canonical[ov.Taxon] {
				return nil, badValue("year %d: override targets unknown taxon %q", ry.Year, ov.Taxon)
			}
			if (ov.Scale == nil) == (ov.Set == nil) {
				return nil, badValue("year %d: override for row %d taxon %q must set exactly one of scale/set", ry.Year, ov.Row, ov.Taxon)
			}
			y.Overrides = append(y.Overrides, Override{Row: ov.Row, Taxon: ov.Taxon, Scale: ov.Scale, Set: ov.Set})
		}

		p.Years = append(p.Years, y)
	}
	sort.Slice(p.Years, func(i, j int) bool { return p.Years[i].Year < p.Years[j].Year })

	seenSites := make(map[string]bool)
	for _, rs := range raw.Sites {
		if seenSites[rs.Code] {
			return nil, badValue("duplicate site code %q", rs.Code)
		}
		seenSites[rs.Code] = true
		p.Sites = append(p.Sites, survey.SiteMeta{
			Code:        rs.Code,
			Name:        rs.Name,
			SiteType:    rs.SiteType,
			Reserve:     rs.Reserve,
			Description: rs.Description,
		})
	}

	for from, to := range raw.SiteCorrections {
		if from == to {
			return nil, badValue("site correction %q maps to itself", from)
		}
	}

	p.SampleTypes.Exact = raw.SampleTypes.Exact
	for _, sr := range raw.SampleTypes.Substring {
		if sr.Contains == "" {
			return nil, badValue("sample-type substring rule has empty fragment")
		}
		p.SampleTypes.Substring = append(p.SampleTypes.Substring, SubstringRule(sr))
	}

	for _, to := range raw.SeasonRenames {
		if !validSeason(to) {
			return nil, badValue("season rename targets unknown season %q", to)
		}
	}

	for _, rb := range raw.Breaches {
		start, err := parseBreachDate(rb.Start)
		if err != nil {
			return nil, badValue("breach interval start %q: %v", rb.Start, err)
		}
		end, err := parseBreachDate(rb.End)
		if err != nil {
			return nil, badValue("breach interval end %q: %v", rb.End, err)
		}
		if end.Before(start) {
			return nil, badValue("breach interval %q..%q ends before it starts", rb.Start, rb.End)
		}
		if rb.Status == "" {
			return nil, badValue("breach interval %q..%q has empty status", rb.Start, rb.End)
		}
		p.Breaches = append(p.Breaches, survey.BreachInterval{Start: start, End: end, Status: rb.Status})
	}

	if raw.WaterQuality != nil {
		p.WaterQuality = &WaterQuality{
			Path:       raw.WaterQuality.Path,
			DateLayout: raw.WaterQuality.DateLayout,
			HeaderSkip: raw.WaterQuality.HeaderSkip,
		}
	}

	return p, nil
}

func validSeason(s string) bool {
	for _, v := range survey.Seasons {
		if string(v) == s {
			return true
		}
	}
	return false
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// hashFiles computes a content hash over the config files in sorted path
// order, so the run catalog can record which configuration produced a run.
func hashFiles(files []string) (string, error) {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, f := range sorted {
		data, err := os.ReadFile(f)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s\n", filepath.Base(f))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
