// Package harness provides an end-to-end scenario framework for the
// survey pipeline.
//
// A scenario is a YAML file naming a config directory, a raw data
// directory, and the expectations to hold against the finished run:
// row counts, unmapped-code tallies, artifact manifests, and pinned
// (sample, taxon) rates from the long table.
//
// # Critical Patterns
//
//   - Every scenario runs into a fresh temp output directory, with a
//     fixed clock and run ID, so two runs of the same scenario produce
//     byte-identical artifacts. Replay tests compare manifest hashes.
//   - Scenario YAML is decoded with strict field checking; a typo in a
//     key is a load error, not a silently ignored assertion.
//   - Golden comparison covers the wide artifact only. The log
//     artifacts hold log1p values whose shortest decimal rendering is
//     asserted programmatically instead of byte-pinned.
package harness
