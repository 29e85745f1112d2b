package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/tribunal/internal/adjudicate"
)

// TextWriter outputs a human-readable terminal report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *adjudicate.AuditReport) error {
	ew := &errWriter{w: w}

	ew.printf("Tribunal Audit — %s\n", report.Subject)
	ew.printf("Run: %s\n", report.RunID)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Overall score: %.2f / 5.0\n", report.OverallScore)
	for _, line := range wrapText(report.ExecutiveSummary, 70) {
		ew.printf("%s\n", line)
	}
	ew.println(strings.Repeat("─", 60))

	for _, d := range report.Dimensions {
		ew.printf("\n%s  %d/5", d.DimensionName, d.FinalScore)
		if d.Capped {
			ew.printf("  [security cap]")
		}
		ew.println("")

		for _, op := range d.Opinions {
			ew.printf("  %-10s %d/5  ", op.Reviewer, op.Score)
			lines := wrapText(op.Argument, 56)
			ew.printf("%s\n", lines[0])
			for _, line := range lines[1:] {
				ew.printf("%s%s\n", strings.Repeat(" ", 21), line)
			}
		}

		if d.DissentSummary != "" {
			ew.println("  Dissent:")
			for _, line := range wrapText(d.DissentSummary, 66) {
				ew.printf("    %s\n", line)
			}
		}

		ew.println("  Remediation:")
		for _, line := range wrapText(d.Remediation, 66) {
			ew.printf("    %s\n", line)
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	for _, line := range strings.Split(report.RemediationPlan, "\n") {
		ew.printf("%s\n", line)
	}

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
