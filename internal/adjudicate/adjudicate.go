package adjudicate

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/tribunal/internal/evidence"
	"github.com/dshills/tribunal/internal/rubric"
)

const (
	narratorArgumentMax = 200
	narrativeMax        = 500
)

// Narrator generates remediation prose for mid-band scores. Implementations
// may be non-deterministic and may fail; the adjudicator always has a
// deterministic fallback and never lets a narrator touch a score.
type Narrator interface {
	Remediate(ctx context.Context, dimensionName string, score int, arguments []string) (string, error)
}

// Adjudicator applies the rule pipeline per rubric dimension and assembles
// the final report.
type Adjudicator struct {
	rubric   rubric.Rubric
	narrator Narrator // nil disables narrative remediation
}

// New builds an Adjudicator for the given rubric. narrator may be nil.
func New(r rubric.Rubric, narrator Narrator) *Adjudicator {
	return &Adjudicator{rubric: r, narrator: narrator}
}

// Run adjudicates every dimension that has at least one opinion, in rubric
// order, and assembles the AuditReport. A dimension with evidence but zero
// opinions is skipped: there is nothing to resolve. Opinions for dimensions
// not in the rubric are ignored.
//
// The evidence store must already have passed its completeness barrier; Run
// itself never fails.
func (a *Adjudicator) Run(ctx context.Context, subject string, opinions []Opinion, store *evidence.Store) AuditReport {
	byDimension := make(map[string][]Opinion)
	for _, op := range opinions {
		byDimension[op.DimensionID] = append(byDimension[op.DimensionID], op)
	}

	var results []DimensionResult
	for _, dim := range a.rubric.Dimensions {
		dimOpinions, ok := byDimension[dim.ID]
		if !ok {
			continue
		}
		results = append(results, a.adjudicateDimension(ctx, dim, dimOpinions, store))
	}

	return assembleReport(subject, results)
}

func (a *Adjudicator) adjudicateDimension(ctx context.Context, dim rubric.Dimension, opinions []Opinion, store *evidence.Store) DimensionResult {
	out := runPipeline(dim.ID, a.rubric.TieBreakerID(), opinions, store)

	return DimensionResult{
		DimensionID:    dim.ID,
		DimensionName:  dim.Name,
		FinalScore:     out.FinalScore,
		Opinions:       out.Opinions,
		DissentSummary: out.Dissent,
		Remediation:    a.remediation(ctx, dim, out),
		Capped:         out.Capped,
	}
}

// remediation selects the remediation text by score band. Only the middle
// band may consult the narrator, and the narrator receives only the final
// score and truncated opinion arguments, never raw evidence detail.
func (a *Adjudicator) remediation(ctx context.Context, dim rubric.Dimension, out Outcome) string {
	if out.Capped {
		return fmt.Sprintf(
			"[Rule of Security] Score capped at %d/5. Remove all direct shell-execution calls from the subject's tooling. "+
				"Replace them with sandboxed subprocess execution inside a temporary directory.",
			out.FinalScore)
	}

	if out.FinalScore <= 2 {
		return lowScoreRemediation(dim, out.FinalScore)
	}

	if out.FinalScore >= 4 {
		return fmt.Sprintf("Implementation meets rubric standards for %s.", dim.Name)
	}

	return a.narrativeRemediation(ctx, dim, out)
}

func lowScoreRemediation(dim rubric.Dimension, score int) string {
	if dim.Remediation != "" {
		return dim.Remediation
	}
	return fmt.Sprintf("Score %d/5: significant gaps detected. Review the rubric entry for %s.", score, dim.ID)
}

func (a *Adjudicator) narrativeRemediation(ctx context.Context, dim rubric.Dimension, out Outcome) string {
	fallback := fmt.Sprintf("Score %d/5: %s", out.FinalScore, lowScoreRemediation(dim, out.FinalScore))
	if a.narrator == nil {
		return fallback
	}

	args := make([]string, 0, len(out.Opinions))
	for _, op := range out.Opinions {
		args = append(args, fmt.Sprintf("- %s (score %d): %s", op.Reviewer, op.Score, truncate(op.Argument, narratorArgumentMax)))
	}

	text, err := a.narrator.Remediate(ctx, dim.Name, out.FinalScore, args)
	if err != nil {
		return fmt.Sprintf("%s [narrative generation unavailable: %s]", fallback, truncate(err.Error(), 100))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	return truncate(text, narrativeMax)
}
