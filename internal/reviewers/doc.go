// Package reviewers runs the three-persona bench that turns collected
// evidence into scored opinions.
//
// Each persona (Prosecutor, Defense, TechLead) carries a disjoint system
// prompt with a distinct analytical posture. Personas evaluate every rubric
// dimension that has evidence, concurrently, and see only sanitized evidence
// metadata. A response that fails to parse gets one retry; after that the
// persona falls back to a fixed opinion so the bench is always complete.
//
// The package also hosts the ProseNarrator used for mid-band remediation
// text. The narrator is advisory only and can never influence a score.
package reviewers
