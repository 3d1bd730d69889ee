// Package pipeline runs the survey ETL end to end.
//
// Stages execute strictly in dependency order, single-threaded: load
// config, load and normalize each survey year, unify, aggregate,
// reshape, write artifacts, record the run in the catalog. Each stage
// consumes an immutable snapshot from the previous one and produces a
// new one; there is no shared mutable state and no partial recovery. The
// run either completes or fails on the first fatal condition.
//
// Re-running from the same raw inputs and config produces byte-identical
// artifacts. The only nondeterministic outputs, the run ID and
// timestamp, go to the catalog, and both are injectable for tests.
package pipeline
