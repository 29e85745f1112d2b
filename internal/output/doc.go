// Package output formats audit reports for display or machine consumption.
//
// Three formats are supported:
//   - text:     human-readable terminal output (default)
//   - markdown: full audit document with per-dimension breakdown
//   - json:     full structured JSON report
//
// Use [GetWriter] to obtain a [Writer] for a given format string, or
// [WriteReport] to handle destination selection (file path or stdout).
package output
