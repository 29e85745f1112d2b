package adjudicate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/tribunal/internal/evidence"
	"github.com/dshills/tribunal/internal/rubric"
)

type stubNarrator struct {
	text  string
	err   error
	calls int
	args  []string
}

func (s *stubNarrator) Remediate(_ context.Context, _ string, _ int, arguments []string) (string, error) {
	s.calls++
	s.args = arguments
	return s.text, s.err
}

func testRubric() rubric.Rubric {
	return rubric.Rubric{Dimensions: []rubric.Dimension{
		{ID: "alpha", Name: "Alpha", Producer: "repo_investigator", Required: true, Remediation: "Fix alpha from the ground up."},
		{ID: "beta", Name: "Beta", Producer: "repo_investigator", Required: true, TieBreaker: true, Remediation: "Rebuild beta."},
		{ID: "gamma", Name: "Gamma", Producer: "doc_analyst", Remediation: "Document gamma."},
	}}
}

func TestRun_OnlyDimensionsWithOpinionsAppear(t *testing.T) {
	store := evidence.NewStore()
	// gamma has evidence but no opinion: it must not be adjudicated.
	store.Add("doc_analyst_gamma", evidence.Evidence{Found: true, Location: "README.md", Rationale: "doc present"})

	a := New(testRubric(), nil)
	report := a.Run(context.Background(), "https://example.com/repo.git", []Opinion{
		opinion(PersonaAdversarial, "alpha", 4, "solid"),
		opinion(PersonaLenient, "alpha", 4, "agreed"),
	}, store)

	if len(report.Dimensions) != 1 {
		t.Fatalf("Dimensions = %d, want 1", len(report.Dimensions))
	}
	if report.Dimensions[0].DimensionID != "alpha" {
		t.Errorf("dimension = %s, want alpha", report.Dimensions[0].DimensionID)
	}
}

func TestRun_RubricOrderPreserved(t *testing.T) {
	a := New(testRubric(), nil)
	// Opinions arrive out of rubric order.
	report := a.Run(context.Background(), "subject", []Opinion{
		opinion(PersonaAdversarial, "gamma", 3, "x"),
		opinion(PersonaAdversarial, "alpha", 3, "x"),
		opinion(PersonaAdversarial, "beta", 3, "x"),
	}, evidence.NewStore())

	var got []string
	for _, d := range report.Dimensions {
		got = append(got, d.DimensionID)
	}
	want := []string{"alpha", "beta", "gamma"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestRun_UnknownDimensionIgnored(t *testing.T) {
	a := New(testRubric(), nil)
	report := a.Run(context.Background(), "subject", []Opinion{
		opinion(PersonaAdversarial, "not_in_rubric", 5, "x"),
	}, evidence.NewStore())
	if len(report.Dimensions) != 0 {
		t.Errorf("Dimensions = %d, want 0", len(report.Dimensions))
	}
	if report.OverallScore != 1.0 {
		t.Errorf("OverallScore = %v, want fail-safe 1.0", report.OverallScore)
	}
}

func TestRemediation_CapFired(t *testing.T) {
	store := evidence.NewStore()
	store.Add("repo_investigator_alpha", evidence.Evidence{
		Found: true, Location: "src/tools/", Rationale: "os.system() detected",
	})
	a := New(testRubric(), nil)
	report := a.Run(context.Background(), "subject", []Opinion{
		opinion(PersonaAdversarial, "alpha", 5, "x"),
		opinion(PersonaLenient, "alpha", 5, "x"),
	}, store)

	d := report.Dimensions[0]
	if !d.Capped {
		t.Fatal("expected cap")
	}
	if !strings.Contains(d.Remediation, "[Rule of Security]") {
		t.Errorf("Remediation = %q, want security instruction", d.Remediation)
	}
}

func TestRemediation_LowScoreUsesLookup(t *testing.T) {
	a := New(testRubric(), nil)
	report := a.Run(context.Background(), "subject", []Opinion{
		opinion(PersonaAdversarial, "alpha", 1, "x"),
		opinion(PersonaPragmatic, "alpha", 2, "x"),
	}, evidence.NewStore())

	if got := report.Dimensions[0].Remediation; got != "Fix alpha from the ground up." {
		t.Errorf("Remediation = %q, want rubric lookup text", got)
	}
}

func TestRemediation_HighScoreAcknowledgment(t *testing.T) {
	a := New(testRubric(), nil)
	report := a.Run(context.Background(), "subject", []Opinion{
		opinion(PersonaAdversarial, "alpha", 4, "x"),
		opinion(PersonaLenient, "alpha", 5, "x"),
	}, evidence.NewStore())

	if got := report.Dimensions[0].Remediation; !strings.Contains(got, "meets rubric standards for Alpha") {
		t.Errorf("Remediation = %q", got)
	}
}

func TestRemediation_MidBandCallsNarrator(t *testing.T) {
	n := &stubNarrator{text: "Refactor the aggregator barrier into its own package."}
	a := New(testRubric(), n)
	report := a.Run(context.Background(), "subject", []Opinion{
		opinion(PersonaAdversarial, "alpha", 3, strings.Repeat("long argument ", 50)),
	}, evidence.NewStore())

	if n.calls != 1 {
		t.Fatalf("narrator calls = %d, want 1", n.calls)
	}
	if got := report.Dimensions[0].Remediation; got != n.text {
		t.Errorf("Remediation = %q, want narrator text", got)
	}
	// Arguments forwarded to the narrator are truncated.
	for _, arg := range n.args {
		if len(arg) > narratorArgumentMax+50 {
			t.Errorf("narrator argument too long (%d chars)", len(arg))
		}
	}
}

func TestRemediation_NarratorOnlyForMidBand(t *testing.T) {
	n := &stubNarrator{text: "never used"}
	a := New(testRubric(), n)
	a.Run(context.Background(), "subject", []Opinion{
		opinion(PersonaAdversarial, "alpha", 1, "x"),
		opinion(PersonaAdversarial, "beta", 5, "x"),
	}, evidence.NewStore())
	if n.calls != 0 {
		t.Errorf("narrator calls = %d, want 0 outside the mid band", n.calls)
	}
}

func TestRemediation_NarratorFailureFallsBack(t *testing.T) {
	n := &stubNarrator{err: errors.New("provider unreachable")}
	a := New(testRubric(), n)
	report := a.Run(context.Background(), "subject", []Opinion{
		opinion(PersonaAdversarial, "alpha", 3, "x"),
	}, evidence.NewStore())

	got := report.Dimensions[0].Remediation
	if !strings.Contains(got, "Score 3/5") || !strings.Contains(got, "Fix alpha from the ground up.") {
		t.Errorf("fallback remediation = %q", got)
	}
	if !strings.Contains(got, "narrative generation unavailable") {
		t.Errorf("fallback should note the failure: %q", got)
	}
}

func TestRemediation_NilNarratorDeterministicFallback(t *testing.T) {
	a := New(testRubric(), nil)
	report := a.Run(context.Background(), "subject", []Opinion{
		opinion(PersonaAdversarial, "alpha", 3, "x"),
	}, evidence.NewStore())

	if got := report.Dimensions[0].Remediation; got != "Score 3/5: Fix alpha from the ground up." {
		t.Errorf("Remediation = %q", got)
	}
}

func TestPersonaValid(t *testing.T) {
	for _, p := range Personas() {
		if !p.Valid() {
			t.Errorf("%s should be valid", p)
		}
	}
	if Persona("Auditor").Valid() {
		t.Error("unknown persona should be invalid")
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct{ in, want int }{
		{-3, 1}, {0, 1}, {1, 1}, {3, 3}, {5, 5}, {6, 5}, {42, 5},
	}
	for _, tt := range tests {
		if got := ClampScore(tt.in); got != tt.want {
			t.Errorf("ClampScore(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
