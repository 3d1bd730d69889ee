package unify

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/slough-labs/invertflow/internal/config"
	"github.com/slough-labs/invertflow/internal/survey"
)

// Canonicalizer applies the configured categorical corrections. It is
// pure and idempotent: canonicalizing an already-canonical code is a
// no-op.
type Canonicalizer struct {
	siteCorrections map[string]string
	knownSites      map[string]bool
	sampleTypes     config.SampleTypeRules
	sampleTargets   map[string]bool // canonical sample-type outputs
	seasonRenames   map[string]string
}

// NewCanonicalizer builds a canonicalizer from the pipeline config.
func NewCanonicalizer(cfg *config.Pipeline) *Canonicalizer {
	c := &Canonicalizer{
		siteCorrections: cfg.SiteCorrections,
		knownSites:      make(map[string]bool, len(cfg.Sites)),
		sampleTypes:     cfg.SampleTypes,
		sampleTargets:   make(map[string]bool),
		seasonRenames:   cfg.SeasonRenames,
	}
	for _, s := range cfg.Sites {
		c.knownSites[s.Code] = true
	}
	for _, canon := range cfg.SampleTypes.Exact {
		c.sampleTargets[canon] = true
	}
	for _, r := range cfg.SampleTypes.Substring {
		c.sampleTargets[r.Canonical] = true
	}
	return c
}

// Site canonicalizes a site code. Known misspellings map to their
// canonical code; anything else passes through unchanged.
func (c *Canonicalizer) Site(code string) string {
	code = clean(code)
	if canon, ok := c.siteCorrections[code]; ok {
		return canon
	}
	return code
}

// KnownSite reports whether code is in the static site table.
func (c *Canonicalizer) KnownSite(code string) bool {
	return c.knownSites[code]
}

// SampleType canonicalizes a sample-type code: exact-match corrections
// first, then the substring families in configured order, otherwise
// pass-through.
func (c *Canonicalizer) SampleType(code string) string {
	code = clean(code)
	if canon, ok := c.sampleTypes.Exact[code]; ok {
		return canon
	}
	for _, r := range c.sampleTypes.Substring {
		if strings.Contains(strings.ToLower(code), strings.ToLower(r.Contains)) {
			return r.Canonical
		}
	}
	return code
}

// KnownSampleType reports whether code is a canonical sample-type value
// producible by the configured rules.
func (c *Canonicalizer) KnownSampleType(code string) bool {
	return c.sampleTargets[code]
}

// Season resolves a raw season tag to a canonical season, applying the
// configured renames for known mislabeled tags ("autum" and friends).
// The second return is false when the tag is absent or unresolvable, in
// which case the caller should derive the season from the date.
func (c *Canonicalizer) Season(raw string) (survey.Season, bool) {
	raw = strings.ToLower(clean(raw))
	if raw == "" {
		return "", false
	}
	if renamed, ok := c.seasonRenames[raw]; ok {
		raw = renamed
	}
	for _, s := range survey.Seasons {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// clean trims whitespace and normalizes to NFC so codes compare by
// canonical form rather than byte encoding.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
