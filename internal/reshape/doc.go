// Package reshape pivots the wide per-sample table into the long
// (sample, taxon) table used for plotting and modeling downstream.
//
// Only observed pairs are emitted: a taxon the sample's survey-year
// protocol recorded is kept even at zero, while a taxon that year never
// measured is dropped rather than reported as a false zero. Each
// retained pair carries the raw rate, the three mean-per-sample rate
// variants (dividing by the season, year, and site group sizes), and a
// log(1+x) transform of each of the four.
//
// Unpivot is the exact inverse on populated cells, which the tests use
// to check the reshape round-trips.
package reshape
