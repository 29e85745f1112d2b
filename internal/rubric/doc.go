// Package rubric defines the audit rubric: the scored dimensions, which probe
// must produce evidence for each, the tie-breaker ownership used by weighted
// resolution, and the fixed low-score remediation instructions.
//
// The rubric is an explicitly constructed, read-only configuration object
// passed into the adjudicator; there is no ambient global rubric state. A
// custom rubric can be supplied as YAML or JSON via --rubric.
package rubric
