package probes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dshills/tribunal/internal/evidence"
)

const docProducer = "doc_analyst"

// theoreticalTerms is the rubric vocabulary the analyst looks for in the
// subject's written report.
var theoreticalTerms = []string{
	"dialectical synthesis",
	"fan-in",
	"fan-out",
	"metacognition",
	"state synchronization",
	"evidence aggregation",
	"adversarial",
	"persona collusion",
}

// explanationMarkers signal that a term appears in substantive context rather
// than a bare heading.
var explanationMarkers = []string{"because", "implement", "architecture", "design", "pattern", "ensure"}

// pathPattern matches source file paths a report may claim to contain.
var pathPattern = regexp.MustCompile(`(?:src/[\w/]+\.py|tests/[\w/]+\.py|rubric\.json|CLAUDE\.md)`)

// DocAnalyst reads the subject's markdown report and produces evidence for
// theoretical depth and report accuracy. Path claims are verified against the
// shared checkout; a failed clone degrades accuracy evidence rather than
// skipping it.
type DocAnalyst struct{}

func NewDocAnalyst() *DocAnalyst { return &DocAnalyst{} }

func (p *DocAnalyst) Name() string { return docProducer }

func (p *DocAnalyst) Collect(_ context.Context, sub Subject) map[string][]evidence.Evidence {
	if sub.DocPath == "" {
		return map[string][]evidence.Evidence{
			evidence.Key(docProducer, "theoretical_depth"): {missingDoc("Verify substantive theoretical vocabulary in the report", "No report document provided")},
			evidence.Key(docProducer, "report_accuracy"):   {missingDoc("Verify file paths claimed in the report exist", "No report document provided")},
		}
	}

	data, err := os.ReadFile(sub.DocPath)
	if err != nil {
		reason := "Report document unreadable: " + truncate(err.Error(), 200)
		return map[string][]evidence.Evidence{
			evidence.Key(docProducer, "theoretical_depth"): {missingDoc("Verify substantive theoretical vocabulary in the report", reason)},
			evidence.Key(docProducer, "report_accuracy"):   {missingDoc("Verify file paths claimed in the report exist", reason)},
		}
	}
	text := string(data)

	return map[string][]evidence.Evidence{
		evidence.Key(docProducer, "theoretical_depth"): {theoreticalDepth(text, sub.DocPath)},
		evidence.Key(docProducer, "report_accuracy"):   {reportAccuracy(text, sub)},
	}
}

func missingDoc(goal, reason string) evidence.Evidence {
	return evidence.Evidence{
		Goal: goal, Found: false, Location: evidence.LocationNA,
		Rationale: reason, Confidence: 1.0,
	}
}

// theoreticalDepth runs a term census over the report and checks whether each
// found term sits near explanation vocabulary.
func theoreticalDepth(text, docPath string) evidence.Evidence {
	const goal = "Verify substantive theoretical vocabulary in the report"

	found, missing, substantive := termCensus(text)

	var rationale string
	var confidence float64
	switch {
	case substantive >= 3:
		rationale = fmt.Sprintf("Substantive theoretical depth: %d/%d terms present, %d used in explanatory context. Found: [%s]",
			len(found), len(theoreticalTerms), substantive, strings.Join(found, ", "))
		confidence = 0.9
	case len(found) > 0:
		rationale = fmt.Sprintf("Terms present but shallow: %d/%d found, only %d in explanatory context. Missing: [%s]",
			len(found), len(theoreticalTerms), substantive, strings.Join(missing, ", "))
		confidence = 0.8
	default:
		rationale = "None of the expected theoretical terms appear in the report."
		confidence = 0.95
	}

	return evidence.Evidence{
		Goal: goal, Found: len(found) > 0, Location: docPath,
		Rationale: rationale, Confidence: confidence,
	}
}

// termCensus returns found terms, missing terms, and how many found terms
// appear within 200 characters of an explanation marker.
func termCensus(text string) (found, missing []string, substantive int) {
	lower := strings.ToLower(text)
	for _, term := range theoreticalTerms {
		idx := strings.Index(lower, term)
		if idx < 0 {
			missing = append(missing, term)
			continue
		}
		found = append(found, term)

		start := idx - 200
		if start < 0 {
			start = 0
		}
		end := idx + 200
		if end > len(lower) {
			end = len(lower)
		}
		window := lower[start:end]
		for _, marker := range explanationMarkers {
			if strings.Contains(window, marker) {
				substantive++
				break
			}
		}
	}
	return found, missing, substantive
}

// reportAccuracy cross-references every file path claimed in the report
// against the checkout.
func reportAccuracy(text string, sub Subject) evidence.Evidence {
	const goal = "Verify file paths claimed in the report exist"

	mentioned := mentionedPaths(text)
	if len(mentioned) == 0 {
		return evidence.Evidence{
			Goal: goal, Found: true, Location: sub.DocPath,
			Rationale:  "Report claims no verifiable file paths.",
			Confidence: 0.6,
		}
	}

	if sub.RepoDir == "" {
		return evidence.Evidence{
			Goal: goal, Found: false, Location: evidence.LocationNA,
			Rationale:  fmt.Sprintf("Cannot verify %d claimed paths: repository clone unavailable (%s)", len(mentioned), truncate(sub.CloneErr, 100)),
			Confidence: 1.0,
		}
	}

	var verified, hallucinated []string
	for _, p := range mentioned {
		if _, err := os.Stat(filepath.Join(sub.RepoDir, filepath.FromSlash(p))); err == nil {
			verified = append(verified, p)
		} else {
			hallucinated = append(hallucinated, p)
		}
	}

	if len(hallucinated) > 0 {
		return evidence.Evidence{
			Goal: goal, Found: false, Location: sub.DocPath,
			Rationale: fmt.Sprintf("Report references paths not found in the repository: [%s]. Verified: %d/%d.",
				strings.Join(hallucinated, ", "), len(verified), len(mentioned)),
			Confidence: 1.0,
		}
	}

	return evidence.Evidence{
		Goal: goal, Found: true, Location: sub.DocPath,
		Rationale:  fmt.Sprintf("All %d claimed file paths verified against the repository.", len(verified)),
		Confidence: 1.0,
	}
}

// mentionedPaths extracts the unique sorted file paths claimed in the report.
func mentionedPaths(text string) []string {
	seen := make(map[string]bool)
	for _, m := range pathPattern.FindAllString(text, -1) {
		seen[m] = true
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
