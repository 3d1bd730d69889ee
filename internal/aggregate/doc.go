// Package aggregate computes the group-size denominators used to turn
// per-sample counts into mean-per-sample rates.
//
// Three groupings are computed over the unified table: samples sharing
// (season, sample_type, site_type), (year, sample_type, site_type), and
// (site, sample_type, site_type). Each group size is joined back onto
// every member row. Every row defines its own group, so a missing join
// key cannot occur and the minimum group size is 1.
package aggregate
