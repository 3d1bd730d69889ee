// Package survey defines the domain records shared by every pipeline stage.
//
// The central type is Sample: one physical collection event, carrying its
// normalized taxon counts (organisms per liter), derived metadata (season,
// site type, reserve, breach status), and optional water-quality
// measurements. Samples are produced by the normalizer, enriched by the
// unifier and aggregator, and consumed by the reshaper and writer.
//
// # Critical Patterns
//
// Immutable hand-off: each stage receives a slice of samples and returns a
// new slice; no stage mutates records owned by an earlier stage.
//
// Deterministic ordering: SortSamples defines the one canonical row order
// (date, site, sample type, source file, source row). Every artifact is
// emitted in this order so that re-runs are byte-identical.
//
// Zero versus absent: after normalization a taxon count is never null.
// Counts[t] is 0 both when the protocol recorded a zero and when the
// year's schema lacked the column; Observed[t] distinguishes the two, and
// only observed pairs survive into the long table.
package survey
