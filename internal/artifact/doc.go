// Package artifact persists pipeline outputs: the three CSV tables and
// the SQLite run catalog.
//
// CSV artifacts (wide, wide_log, long) are whole-file overwrites with a
// fixed column order and deterministic number formatting, so a re-run
// from the same raw inputs and config produces byte-identical files.
//
// The catalog records provenance for every run: run ID, config content
// hash, row counts, an artifact manifest with content hashes, and the
// unmapped categorical codes the unifier passed through. The codes table
// is the manual-review surface for spellings that have no canonical
// form yet.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package artifact
