package adjudicate

import (
	"strings"
	"testing"

	"github.com/dshills/tribunal/internal/evidence"
)

func storeWith(entries map[string][]evidence.Evidence) *evidence.Store {
	s := evidence.NewStore()
	s.Merge(entries)
	return s
}

func opinion(p Persona, dim string, score int, arg string, cited ...string) Opinion {
	return Opinion{Reviewer: p, DimensionID: dim, Score: score, Argument: arg, CitedLocations: cited}
}

func TestRunPipeline_ScoreAlwaysInBounds(t *testing.T) {
	store := evidence.NewStore()
	sets := [][]Opinion{
		nil,
		{opinion(PersonaAdversarial, "d", 1, "a")},
		{opinion(PersonaAdversarial, "d", 5, "a"), opinion(PersonaLenient, "d", 5, "b"), opinion(PersonaPragmatic, "d", 5, "c")},
		{opinion(PersonaAdversarial, "d", 1, "a"), opinion(PersonaLenient, "d", 5, "b")},
	}
	for i, ops := range sets {
		out := runPipeline("d", "", ops, store)
		if out.FinalScore < MinScore || out.FinalScore > MaxScore {
			t.Errorf("set %d: FinalScore = %d, out of bounds", i, out.FinalScore)
		}
	}
}

func TestRunPipeline_EmptyOpinionsFailSafe(t *testing.T) {
	out := runPipeline("d", "", nil, evidence.NewStore())
	if out.FinalScore != 1 {
		t.Errorf("FinalScore = %d, want fail-safe 1", out.FinalScore)
	}
	if out.Dissent != "" {
		t.Errorf("Dissent = %q, want none", out.Dissent)
	}
}

func TestSecurityOverride_CapsDespiteUnanimousFives(t *testing.T) {
	store := storeWith(map[string][]evidence.Evidence{
		"repo_investigator_safe_tool_engineering": {{
			Goal:      "Verify sandboxed cloning",
			Found:     true,
			Location:  "src/tools/",
			Rationale: "SECURITY VIOLATION: os.system() call detected in src/tools/. This is a shell injection risk.",
		}},
	})
	ops := []Opinion{
		opinion(PersonaAdversarial, "safe_tool_engineering", 5, "fine"),
		opinion(PersonaLenient, "safe_tool_engineering", 5, "fine"),
		opinion(PersonaPragmatic, "safe_tool_engineering", 5, "fine"),
	}

	out := runPipeline("safe_tool_engineering", "", ops, store)
	if out.FinalScore > 3 {
		t.Errorf("FinalScore = %d, want <= 3 under security cap", out.FinalScore)
	}
	if !out.Capped {
		t.Error("expected Capped = true")
	}
}

func TestSecurityOverride_NeverLowersBelowWeightedResult(t *testing.T) {
	store := storeWith(map[string][]evidence.Evidence{
		"repo_investigator_safe_tool_engineering": {{
			Found: true, Location: "src/tools/", Rationale: "command injection risk via string concatenation",
		}},
	})
	ops := []Opinion{opinion(PersonaAdversarial, "safe_tool_engineering", 1, "bad")}

	out := runPipeline("safe_tool_engineering", "", ops, store)
	if out.FinalScore != 1 {
		t.Errorf("FinalScore = %d, want 1 (cap is a ceiling, not a floor)", out.FinalScore)
	}
	if !out.Capped {
		t.Error("expected Capped = true")
	}
}

func TestSecurityOverride_OpinionTextNeverTriggers(t *testing.T) {
	// A reviewer mentioning the marker in a negative sense ("no such call
	// found") must not trip the cap; only evidence can.
	store := storeWith(map[string][]evidence.Evidence{
		"repo_investigator_safe_tool_engineering": {{
			Found: true, Location: "src/tools/", Rationale: "Sandboxed cloning confirmed.",
		}},
	})
	ops := []Opinion{
		opinion(PersonaAdversarial, "safe_tool_engineering", 5, "I searched hard for an os.system call and found none."),
		opinion(PersonaLenient, "safe_tool_engineering", 5, "No shell injection anywhere."),
	}

	out := runPipeline("safe_tool_engineering", "", ops, store)
	if out.Capped {
		t.Error("opinion argument text triggered the security cap")
	}
	if out.FinalScore != 5 {
		t.Errorf("FinalScore = %d, want 5", out.FinalScore)
	}
}

func TestFactSupremacy_UnverifiedCitationOverruled(t *testing.T) {
	store := storeWith(map[string][]evidence.Evidence{
		"repo_investigator_state_management_rigor": {{
			Found: true, Location: "src/state.py", Rationale: "typed models confirmed",
		}},
	})
	ops := []Opinion{
		opinion(PersonaLenient, "state_management_rigor", 5, "beautiful typed state in src/fabricated.py", "src/fabricated.py"),
	}

	out := runPipeline("state_management_rigor", "", ops, store)
	got := out.Opinions[0]
	if got.Score != 1 {
		t.Errorf("overruled score = %d, want 1", got.Score)
	}
	if !strings.Contains(got.Argument, "[OVERRULED — FACT SUPREMACY]") {
		t.Errorf("argument missing overruled marker: %q", got.Argument)
	}
	if !strings.Contains(got.Argument, "src/fabricated.py") {
		t.Errorf("argument should name the offending citation: %q", got.Argument)
	}
	if !strings.Contains(got.Argument, "beautiful typed state") {
		t.Errorf("argument should quote the original: %q", got.Argument)
	}
}

func TestFactSupremacy_VerifiedCitationUntouched(t *testing.T) {
	store := storeWith(map[string][]evidence.Evidence{
		"repo_investigator_state_management_rigor": {{
			Found: true, Location: "src/state.py", Rationale: "typed models confirmed",
		}},
	})
	orig := opinion(PersonaLenient, "state_management_rigor", 4, "typed state present", "src/state.py")

	out := runPipeline("state_management_rigor", "", []Opinion{orig}, store)
	got := out.Opinions[0]
	if got.Score != orig.Score || got.Argument != orig.Argument {
		t.Errorf("verified opinion changed: %+v", got)
	}
}

func TestFactSupremacy_OnlyLenientPersonaTargeted(t *testing.T) {
	store := evidence.NewStore() // nothing verifiable
	ops := []Opinion{
		opinion(PersonaAdversarial, "d", 2, "fabricated cite", "no/such/file"),
		opinion(PersonaPragmatic, "d", 4, "fabricated cite", "no/such/file"),
	}

	out := runPipeline("d", "", ops, store)
	for _, op := range out.Opinions {
		if op.Score == 1 && strings.Contains(op.Argument, "OVERRULED") {
			t.Errorf("%s was overruled; only the lenient persona is subject to citation validation", op.Reviewer)
		}
	}
}

func TestFactSupremacy_EmptyCitationsPassThrough(t *testing.T) {
	out := runPipeline("d", "", []Opinion{
		opinion(PersonaLenient, "d", 4, "no citations offered"),
	}, evidence.NewStore())
	if out.Opinions[0].Score != 4 {
		t.Errorf("score = %d, want 4", out.Opinions[0].Score)
	}
}

func TestWeightedScore_MeanRoundsHalfUp(t *testing.T) {
	tests := []struct {
		scores []int
		want   int
	}{
		{[]int{1, 5}, 3},
		{[]int{2, 3}, 3}, // 2.5 rounds up
		{[]int{4, 5}, 5}, // 4.5 rounds up
		{[]int{3, 3, 3}, 3},
		{[]int{1, 1, 2}, 1}, // 1.33 rounds down
		{[]int{5, 5, 4}, 5},
	}
	for _, tt := range tests {
		var ops []Opinion
		for _, s := range tt.scores {
			ops = append(ops, opinion(PersonaAdversarial, "d", s, "x"))
		}
		if got := weightedScore(ops, false); got != tt.want {
			t.Errorf("weightedScore(%v) = %d, want %d", tt.scores, got, tt.want)
		}
	}
}

func TestWeightedScore_TieBreakerOwnerWeight(t *testing.T) {
	// Pragmatic 2, others average 4: round(2*0.5 + 4*0.5) = 3.
	ops := []Opinion{
		opinion(PersonaPragmatic, "graph_orchestration", 2, "bottleneck"),
		opinion(PersonaAdversarial, "graph_orchestration", 4, "ok"),
		opinion(PersonaLenient, "graph_orchestration", 4, "ok"),
	}
	if got := weightedScore(ops, true); got != 3 {
		t.Errorf("tie-breaker weighted score = %d, want 3", got)
	}
	// Same opinions on a non-tie-breaker dimension: mean(2,4,4)=3.33 -> 3.
	if got := weightedScore(ops, false); got != 3 {
		t.Errorf("plain mean = %d, want 3", got)
	}
}

func TestWeightedScore_TieBreakerWithoutOwnerFallsBackToMean(t *testing.T) {
	ops := []Opinion{
		opinion(PersonaAdversarial, "graph_orchestration", 4, "a"),
		opinion(PersonaLenient, "graph_orchestration", 5, "b"),
	}
	if got := weightedScore(ops, true); got != 5 {
		t.Errorf("score = %d, want 5 (4.5 rounds up)", got)
	}
}

func TestDissent_TriggeredAboveThreshold(t *testing.T) {
	ops := []Opinion{
		opinion(PersonaAdversarial, "d", 1, "total absence of typed state, bulk upload history"),
		opinion(PersonaLenient, "d", 5, "remarkable effort and clear understanding throughout"),
	}
	out := runPipeline("d", "", ops, evidence.NewStore())

	if out.FinalScore != 3 {
		t.Errorf("FinalScore = %d, want 3", out.FinalScore)
	}
	if out.Dissent == "" {
		t.Fatal("variance 4 must produce a dissent summary")
	}
	for _, want := range []string{"Prosecutor=1", "Defense=5", "total absence", "remarkable effort"} {
		if !strings.Contains(out.Dissent, want) {
			t.Errorf("dissent missing %q:\n%s", want, out.Dissent)
		}
	}
}

func TestDissent_NotTriggeredAtOrBelowThreshold(t *testing.T) {
	ops := []Opinion{
		opinion(PersonaAdversarial, "d", 2, "a"),
		opinion(PersonaLenient, "d", 4, "b"),
	}
	if out := runPipeline("d", "", ops, evidence.NewStore()); out.Dissent != "" {
		t.Errorf("variance 2 should not dissent, got %q", out.Dissent)
	}

	single := []Opinion{opinion(PersonaAdversarial, "d", 1, "a")}
	if out := runPipeline("d", "", single, evidence.NewStore()); out.Dissent != "" {
		t.Errorf("single opinion should never dissent, got %q", out.Dissent)
	}
}

func TestDissent_ComputedAfterRewrites(t *testing.T) {
	// Defense 5 is overruled to 1; Prosecutor 1 agrees. Post-rewrite variance
	// is 0, so no dissent even though raw scores diverged.
	store := evidence.NewStore()
	ops := []Opinion{
		opinion(PersonaAdversarial, "d", 1, "nothing found"),
		opinion(PersonaLenient, "d", 5, "great work in ghost.py", "ghost.py"),
	}
	out := runPipeline("d", "", ops, store)
	if out.Dissent != "" {
		t.Errorf("dissent should use rewritten scores, got %q", out.Dissent)
	}
	if out.FinalScore != 1 {
		t.Errorf("FinalScore = %d, want 1", out.FinalScore)
	}
}

func TestRunPipeline_Determinism(t *testing.T) {
	store := storeWith(map[string][]evidence.Evidence{
		"repo_investigator_d": {{Found: true, Location: "src/x.py", Rationale: "unsanitized input reaches shell"}},
	})
	ops := []Opinion{
		opinion(PersonaAdversarial, "d", 1, "argument one"),
		opinion(PersonaLenient, "d", 5, "argument two", "src/x.py"),
		opinion(PersonaPragmatic, "d", 3, "argument three"),
	}

	first := runPipeline("d", "d", ops, store)
	for i := 0; i < 10; i++ {
		again := runPipeline("d", "d", ops, store)
		if again.FinalScore != first.FinalScore || again.Dissent != first.Dissent || again.Capped != first.Capped {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
	}
}

func TestContainsSecurityMarker(t *testing.T) {
	positives := []string{
		"os.system call detected",
		"OS.SYSTEM() usage",
		"possible Shell Injection vector",
		"security negligence confirmed",
	}
	for _, s := range positives {
		if !containsSecurityMarker(s) {
			t.Errorf("containsSecurityMarker(%q) = false, want true", s)
		}
	}
	negatives := []string{
		"subprocess.run with captured output",
		"clean sandboxed clone",
		"",
	}
	for _, s := range negatives {
		if containsSecurityMarker(s) {
			t.Errorf("containsSecurityMarker(%q) = true, want false", s)
		}
	}
}
