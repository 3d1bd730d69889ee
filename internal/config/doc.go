// Package config loads the pipeline configuration from CUE files.
//
// Everything that varies between survey years or that encodes a documented
// data correction lives here as data, not code:
//
//   - per-year source specs: raw file path, header-skip offset, excluded
//     row indices, column-rename map, sampling volume in liters, the taxa
//     that year's protocol observed, and explicit value overrides
//   - the static site reference table (code, name, site type, reserve)
//   - site-code corrections for known misspellings
//   - sample-type canonicalization rules (exact matches plus one
//     substring family)
//   - season-label renames for known mislabeled tags
//   - the ordered breach-status interval table
//
// Files are validated against the embedded CUE schema before decoding, so
// a malformed table fails at load time with a position-carrying error
// rather than surfacing mid-pipeline. Adding a survey year is purely a
// config change.
package config
