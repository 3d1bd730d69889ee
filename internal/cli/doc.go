// Package cli implements the invertflow command-line interface.
//
// Commands:
//
//   - run: execute the full pipeline against a config directory and a
//     raw-data directory, writing the CSV artifacts and recording the
//     run in the catalog
//   - validate: load and validate the CUE configuration without running
//   - codes: report the unmapped categorical codes recorded by a run,
//     for manual review
//
// All commands honor the global --format flag (text or json) and return
// structured exit codes: 0 success, 1 pipeline or validation failure,
// 2 command error.
package cli
