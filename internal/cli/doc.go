// Package cli wires together the Cobra command tree for the tribunal binary.
//
// It defines the root command and all subcommands (audit, rubric, config,
// models, cache, version), binds flags, reads configuration, runs the audit
// pipeline, and returns deterministic exit codes for CI gating.
package cli
