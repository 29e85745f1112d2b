package adjudicate

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// Executive summary tiers by overall score.
const (
	tierHigh = "Master Thinker"
	tierMid  = "Competent Orchestrator"
	tierLow  = "Vibe Coder"

	// failSafeOverall is reported when zero dimensions were adjudicated.
	failSafeOverall = 1.0
)

// assembleReport aggregates dimension results into the final AuditReport.
func assembleReport(subject string, results []DimensionResult) AuditReport {
	overall := failSafeOverall
	if len(results) > 0 {
		sum := 0
		for _, r := range results {
			sum += r.FinalScore
		}
		overall = roundTo2(float64(sum) / float64(len(results)))
	}

	return AuditReport{
		Subject:          subject,
		RunID:            uuid.NewString(),
		ExecutiveSummary: buildExecutiveSummary(results, overall),
		OverallScore:     overall,
		Dimensions:       results,
		RemediationPlan:  buildRemediationPlan(results),
	}
}

func buildExecutiveSummary(results []DimensionResult, overall float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall score: %.1f/5 — %s.", overall, tierLabel(overall))

	if names := dimensionNames(results, func(r DimensionResult) bool { return r.FinalScore <= 2 }); len(names) > 0 {
		fmt.Fprintf(&b, " Critical gaps: %s.", strings.Join(names, ", "))
	}
	if names := dimensionNames(results, func(r DimensionResult) bool { return r.FinalScore >= 4 }); len(names) > 0 {
		fmt.Fprintf(&b, " Strengths: %s.", strings.Join(names, ", "))
	}

	return b.String()
}

func tierLabel(overall float64) string {
	switch {
	case overall >= 4.5:
		return tierHigh
	case overall >= 3.0:
		return tierMid
	default:
		return tierLow
	}
}

func buildRemediationPlan(results []DimensionResult) string {
	critical := make([]DimensionResult, 0)
	for _, r := range results {
		if r.FinalScore <= 2 {
			critical = append(critical, r)
		}
	}
	if len(critical) == 0 {
		return "No critical remediations required. Review individual dimension feedback for improvements."
	}

	lines := []string{"Priority remediations (score <= 2):"}
	for _, r := range critical {
		lines = append(lines, fmt.Sprintf("\n**%s** (score %d/5)", r.DimensionName, r.FinalScore))
		lines = append(lines, r.Remediation)
	}
	return strings.Join(lines, "\n")
}

func dimensionNames(results []DimensionResult, keep func(DimensionResult) bool) []string {
	var names []string
	for _, r := range results {
		if keep(r) {
			names = append(names, r.DimensionName)
		}
	}
	return names
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
