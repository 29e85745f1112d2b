package adjudicate

import (
	"fmt"
	"math"
	"strings"

	"github.com/dshills/tribunal/internal/evidence"
)

// securityMarkers is the fixed vocabulary of severe-violation phrases the
// security override scans for. Matching is case-insensitive substring.
var securityMarkers = []string{
	"os.system",
	"shell injection",
	"unsanitized input",
	"command injection",
	"security vulnerability",
	"security flaw",
	"security negligence",
}

const (
	// securityCap is the score ceiling imposed by the security override.
	securityCap = 3
	// failSafeScore is the score assigned when no opinions exist. Absence of
	// judgment is failure, never a neutral average.
	failSafeScore = 1
	// dissentThreshold is the score variance above which a dissent summary
	// becomes mandatory.
	dissentThreshold = 2

	overruledArgumentMax = 300
	dissentQuoteMax      = 150
)

// Outcome is the result of running the rule pipeline for one dimension.
type Outcome struct {
	FinalScore int
	Opinions   []Opinion
	Dissent    string
	Capped     bool
}

// runPipeline applies the four deterministic rules in precedence order. It is
// a pure function of its inputs: it never errors, and it never produces a
// score outside [1,5].
func runPipeline(dimensionID, tieBreakerID string, opinions []Opinion, store *evidence.Store) Outcome {
	ceiling, capped := securityOverride(store)

	opinions = applyFactSupremacy(dimensionID, opinions, store)

	score := weightedScore(opinions, dimensionID == tieBreakerID)
	if capped && ceiling < score {
		score = ceiling
	}
	score = ClampScore(score)

	return Outcome{
		FinalScore: score,
		Opinions:   opinions,
		Dissent:    dissentSummary(opinions),
		Capped:     capped,
	}
}

// securityOverride scans evidence rationale text for severe-violation
// markers. Opinion argument text is never scanned: reviewer commentary is
// untrusted and must be unable to either trigger the cap (a reviewer noting
// "no os.system call was found" is not a violation) or suppress it.
func securityOverride(store *evidence.Store) (int, bool) {
	for _, evs := range store.All() {
		for _, ev := range evs {
			if containsSecurityMarker(ev.Rationale) {
				return securityCap, true
			}
		}
	}
	return 0, false
}

func containsSecurityMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range securityMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// applyFactSupremacy overrules lenient-persona opinions whose citations are
// not backed by verified evidence. A citation is valid only if some evidence
// entry for the dimension has Found=true and an exactly matching location.
// Other personas pass through untouched.
func applyFactSupremacy(dimensionID string, opinions []Opinion, store *evidence.Store) []Opinion {
	out := make([]Opinion, 0, len(opinions))
	for _, op := range opinions {
		if op.Reviewer == PersonaLenient && len(op.CitedLocations) > 0 {
			for _, loc := range op.CitedLocations {
				if !store.Verified(dimensionID, loc) {
					op = overrule(op, loc)
					break
				}
			}
		}
		out = append(out, op)
	}
	return out
}

// overrule produces a new opinion forced to the minimum score, with an
// argument that records the override and why.
func overrule(op Opinion, badLocation string) Opinion {
	return Opinion{
		Reviewer:    op.Reviewer,
		DimensionID: op.DimensionID,
		Score:       MinScore,
		Argument: fmt.Sprintf(
			"[OVERRULED — FACT SUPREMACY] Cited location '%s' not found in probe evidence. Original argument: %s",
			badLocation, truncate(op.Argument, overruledArgumentMax)),
		CitedLocations: op.CitedLocations,
	}
}

// weightedScore resolves the numeric score from the rewritten opinion set.
// Default is the arithmetic mean, rounded half up. On the tie-breaker
// dimension, when both a pragmatic opinion and at least one other opinion
// exist, the pragmatic score carries 50% and the mean of the rest the other
// 50%.
func weightedScore(opinions []Opinion, tieBreaker bool) int {
	if len(opinions) == 0 {
		return failSafeScore
	}

	if tieBreaker {
		var ownerScore int
		var ownerFound bool
		var others []Opinion
		for _, op := range opinions {
			if op.Reviewer == PersonaPragmatic && !ownerFound {
				ownerScore = op.Score
				ownerFound = true
			} else {
				others = append(others, op)
			}
		}
		if ownerFound && len(others) > 0 {
			weighted := float64(ownerScore)*0.5 + meanScore(others)*0.5
			return ClampScore(roundHalfUp(weighted))
		}
	}

	return ClampScore(roundHalfUp(meanScore(opinions)))
}

func meanScore(opinions []Opinion) float64 {
	sum := 0
	for _, op := range opinions {
		sum += op.Score
	}
	return float64(sum) / float64(len(opinions))
}

// roundHalfUp rounds to the nearest integer with ties at .5 rounding up,
// applied uniformly everywhere a weighted mean is resolved.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// dissentSummary enforces the dissent requirement: when score variance across
// at least two opinions exceeds the threshold, a summary naming every
// reviewer with its score and quoting the extremes is mandatory.
func dissentSummary(opinions []Opinion) string {
	if len(opinions) < 2 {
		return ""
	}

	high, low := opinions[0], opinions[0]
	for _, op := range opinions[1:] {
		if op.Score > high.Score {
			high = op
		}
		if op.Score < low.Score {
			low = op
		}
	}
	variance := high.Score - low.Score
	if variance <= dissentThreshold {
		return ""
	}

	parts := make([]string, 0, len(opinions))
	for _, op := range opinions {
		parts = append(parts, fmt.Sprintf("%s=%d", op.Reviewer, op.Score))
	}

	return fmt.Sprintf(
		"Score variance of %d exceeds threshold of %d. Breakdown: [%s]. %s argued: '%s...' %s countered: '%s...'",
		variance, dissentThreshold, strings.Join(parts, ", "),
		high.Reviewer, truncate(high.Argument, dissentQuoteMax),
		low.Reviewer, truncate(low.Argument, dissentQuoteMax))
}
