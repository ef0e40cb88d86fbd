// Package pipeline orchestrates enhancement runs over a directory tree.
//
// This package contains:
//   - Candidate enumeration under a root directory
//   - The per-file unit of work: read, parse, classify, enhance, serialize,
//     atomic replace
//   - Outcome records with a failure taxonomy, one per file per context
//   - Sequential and bounded-parallel execution
//
// The pipeline is a pure orchestrator: it never logs, never exits the
// process, and converts every per-file problem into a Failed outcome so one
// bad class can never abort the batch. Its single top-level error is a root
// that cannot be enumerated.
package pipeline
