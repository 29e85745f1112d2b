// Package probes collects forensic evidence about an audit subject.
//
// The Runner clones the subject repository once, shallow and sandboxed in a
// temporary directory, then fans the probes out concurrently over the shared
// checkout. Each probe owns a disjoint evidence namespace and degrades to
// Evidence{Found: false} on any failure, including a failed clone, so the
// evidence set is always complete for the dimensions a probe owns.
//
// RepoInvestigator scans the checkout itself: commit history, state typing,
// graph wiring, tool safety, and structured-output usage. DocAnalyst reads
// the subject's markdown report and cross-checks its claims against the same
// checkout. Subject code is only ever read, never executed.
package probes
