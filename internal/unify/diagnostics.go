package unify

import "sort"

// Diagnostics tallies categorical codes that had no matching canonical
// form. Pass-through is silent by design; this is the review surface.
type Diagnostics struct {
	unmappedSites       map[string]int
	unmappedSampleTypes map[string]int
}

// NewDiagnostics returns an empty tally.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{
		unmappedSites:       make(map[string]int),
		unmappedSampleTypes: make(map[string]int),
	}
}

func (d *Diagnostics) addSite(code string)       { d.unmappedSites[code]++ }
func (d *Diagnostics) addSampleType(code string) { d.unmappedSampleTypes[code]++ }

// UnmappedCode is one code that passed through canonicalization without
// a match, with its occurrence count.
type UnmappedCode struct {
	Kind        string // "site" | "sample_type"
	Code        string
	Occurrences int
}

// Unmapped returns every unmapped code sorted by (kind, code) for
// deterministic reporting.
func (d *Diagnostics) Unmapped() []UnmappedCode {
	out := make([]UnmappedCode, 0, len(d.unmappedSites)+len(d.unmappedSampleTypes))
	for code, n := range d.unmappedSites {
		out = append(out, UnmappedCode{Kind: "site", Code: code, Occurrences: n})
	}
	for code, n := range d.unmappedSampleTypes {
		out = append(out, UnmappedCode{Kind: "sample_type", Code: code, Occurrences: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Empty reports whether every code canonicalized cleanly.
func (d *Diagnostics) Empty() bool {
	return len(d.unmappedSites) == 0 && len(d.unmappedSampleTypes) == 0
}
