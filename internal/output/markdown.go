package output

import (
	"io"
	"strings"

	"github.com/dshills/tribunal/internal/adjudicate"
)

// MarkdownWriter outputs the full audit report as a markdown document.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *adjudicate.AuditReport) error {
	ew := &errWriter{w: w}

	ew.printf("# Audit Report: %s\n\n", report.Subject)
	ew.println("## Executive Summary")
	ew.println("")
	ew.println(report.ExecutiveSummary)
	ew.println("")
	ew.printf("**Overall Score:** %.1f / 5.0\n\n", report.OverallScore)
	ew.println("---")
	ew.println("")
	ew.println("## Criterion Breakdown")

	for _, d := range report.Dimensions {
		ew.printf("\n### %s\n\n", d.DimensionName)
		ew.printf("**Final Score:** %d / 5", d.FinalScore)
		if d.Capped {
			ew.printf(" *(capped by security override)*")
		}
		ew.println("")
		ew.println("")
		ew.println("**Reviewer Opinions:**")
		ew.println("")
		for _, op := range d.Opinions {
			ew.printf("- **%s** (score %d/5): %s\n", op.Reviewer, op.Score, op.Argument)
			if len(op.CitedLocations) > 0 {
				ew.printf("  - *Cited evidence:* %s\n", strings.Join(op.CitedLocations, ", "))
			}
		}

		if d.DissentSummary != "" {
			ew.println("")
			ew.printf("> **Dissent:** %s\n", d.DissentSummary)
		}

		ew.println("")
		ew.printf("**Remediation:** %s\n\n", d.Remediation)
	}

	ew.println("---")
	ew.println("")
	ew.println("## Remediation Plan")
	ew.println("")
	ew.println(report.RemediationPlan)

	return ew.err
}
