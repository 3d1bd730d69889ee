// Package normalize turns one year's raw rows into canonical samples.
//
// For every row it parses the date, coerces each observed taxon count to
// a number, zero-fills the canonical taxon columns the year's protocol
// did not record, divides counts by the year's sampling volume in liters
// (7.5 L dip protocols versus 70 L pump protocols), and applies the
// year's documented value overrides.
//
// Coercion is deliberately forgiving: a cell that fails to parse, or
// parses to NaN, contributes zero rather than dropping the row. Dates are
// the exception; a sample without a parseable date cannot be placed in a
// season or breach interval, so that is a fatal error naming the file
// and row.
package normalize
