// Package loader reads one raw survey CSV per year and maps it onto the
// canonical column names.
//
// Vendor exports differ in header position (sequencing exports carry
// preamble rows), column naming, and row layout. The loader skips the
// configured number of preamble records, locates the header, verifies
// that every column referenced by the year's rename map is present, and
// emits rows keyed by canonical column name. Raw cell values are passed
// through untouched; coercion belongs to the normalizer.
//
// A column referenced by the rename map but absent from the header is a
// fatal SchemaError: downstream stages assume full coverage, so the whole
// run aborts with the offending file and column named. Explicitly
// excluded row indices (unfinished samples) are dropped here and counted.
package loader
