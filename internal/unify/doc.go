// Package unify concatenates the per-year sample tables and reconciles
// their categorical vocabulary.
//
// Canonicalization is data-driven from the pipeline config: site-code
// typo corrections, sample-type spelling collapse (exact matches plus
// one substring family), and season-label renames. Codes with no
// matching rule pass through verbatim; the unifier never rejects a
// record for an unknown code. Instead every unknown site or sample-type
// spelling is tallied into Diagnostics for post-hoc manual review, and
// recorded in the run catalog.
//
// The unifier also derives the metadata the analysis keys on: season
// from the sample date (or the raw season tag when the year's file had
// one), site type and reserve from the static site table, breach status
// from the ordered date-interval table, and the (site, year, month)
// water-quality join.
//
// All inputs are normalized to Unicode NFC before lookup, so visually
// identical codes from different vendor exports canonicalize the same
// way.
package unify
