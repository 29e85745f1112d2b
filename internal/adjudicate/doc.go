// Package adjudicate resolves independent, possibly conflicting reviewer
// opinions into one deterministic score per rubric dimension.
//
// The rule pipeline applies four rules in strict precedence order:
//
//  1. Security override: severe-violation markers in evidence rationale cap
//     the dimension score at 3. Only evidence text is scanned; reviewer
//     argument text can neither trigger nor suppress the cap.
//  2. Fact supremacy: a lenient-persona opinion citing a location with no
//     matching Found=true evidence is rewritten to the minimum score with an
//     explicit overruled marker.
//  3. Weighted resolution: arithmetic mean rounded half up, with the
//     tie-breaker dimension weighting the pragmatic reviewer at 50%. An empty
//     opinion set resolves to the fail-safe score of 1.
//  4. Dissent requirement: score variance above 2 across two or more opinions
//     mandates a dissent summary naming every reviewer.
//
// The pipeline is a pure function: no I/O, no randomness, identical inputs
// always produce identical outputs. Scores never leave [1,5]. The only
// external call in the package is the optional Narrator used for mid-band
// remediation prose, which can never affect a score.
package adjudicate
