package probes

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/tribunal/internal/evidence"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRepoInvestigator_CloneFailureCoversAllDimensions(t *testing.T) {
	p := NewRepoInvestigator()
	got := p.Collect(context.Background(), Subject{URL: "https://example.com/gone.git", CloneErr: "repository not found"})

	if len(got) != len(repoDimensions) {
		t.Fatalf("evidence keys = %d, want %d", len(got), len(repoDimensions))
	}
	for _, dim := range repoDimensions {
		evs := got[evidence.Key(repoProducer, dim)]
		if len(evs) != 1 {
			t.Fatalf("dimension %s has %d evidence entries, want 1", dim, len(evs))
		}
		ev := evs[0]
		if ev.Found {
			t.Errorf("%s: Found = true on clone failure", dim)
		}
		if ev.Location != evidence.LocationNA {
			t.Errorf("%s: Location = %q", dim, ev.Location)
		}
		if !strings.Contains(ev.Rationale, "repository not found") {
			t.Errorf("%s: rationale %q missing clone error", dim, ev.Rationale)
		}
	}
}

func TestStateManagement(t *testing.T) {
	t.Run("full compliance", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "src/state.py", "from pydantic import BaseModel\nimport operator\nx: Annotated[list, operator.add]\n")
		ev := stateManagement(dir)
		if !ev.Found || ev.Location != "src/state.py" {
			t.Errorf("Found=%t Location=%q", ev.Found, ev.Location)
		}
		if !strings.Contains(ev.Rationale, "Full compliance") {
			t.Errorf("rationale = %q", ev.Rationale)
		}
	})

	t.Run("typed without reducers", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "src/state.py", "class AgentState(TypedDict):\n    pass\n")
		ev := stateManagement(dir)
		if !strings.Contains(ev.Rationale, "reducers absent") {
			t.Errorf("rationale = %q", ev.Rationale)
		}
	})

	t.Run("missing files", func(t *testing.T) {
		ev := stateManagement(t.TempDir())
		if ev.Found {
			t.Error("Found should be false with no state files")
		}
		if ev.Location != evidence.LocationNA {
			t.Errorf("Location = %q", ev.Location)
		}
	})

	t.Run("falls back to graph.py", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "src/graph.py", "class S(BaseModel): pass\n")
		ev := stateManagement(dir)
		if ev.Location != "src/graph.py" {
			t.Errorf("Location = %q, want src/graph.py", ev.Location)
		}
	})
}

func TestGraphOrchestration(t *testing.T) {
	t.Run("fan-out with aggregator", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "src/graph.py", `
builder = StateGraph(AgentState)
builder.add_node("evidence_aggregator", agg)
builder.add_edge(START, "a")
builder.add_edge(START, "b")
builder.add_edge("a", "evidence_aggregator")
builder.add_edge("b", "evidence_aggregator")
`)
		ev := graphOrchestration(dir)
		if !ev.Found {
			t.Error("Found should be true")
		}
		if !strings.Contains(ev.Rationale, "fan-out architecture detected") {
			t.Errorf("rationale = %q", ev.Rationale)
		}
	})

	t.Run("linear pipeline", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "src/graph.py", "g = StateGraph(S)\ng.add_edge(START, \"a\")\n")
		ev := graphOrchestration(dir)
		if !strings.Contains(ev.Rationale, "linear pipeline") {
			t.Errorf("rationale = %q", ev.Rationale)
		}
	})

	t.Run("missing graph file", func(t *testing.T) {
		ev := graphOrchestration(t.TempDir())
		if ev.Found {
			t.Error("Found should be false")
		}
	})
}

func TestSafeTools(t *testing.T) {
	t.Run("os.system violation", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "src/tools/repo.py", "import os\nos.system(\"git clone \" + url)\n")
		ev := safeTools(dir)
		if !strings.Contains(ev.Rationale, "SECURITY VIOLATION") {
			t.Errorf("rationale = %q", ev.Rationale)
		}
		if !strings.Contains(ev.Rationale, "os.system") {
			t.Errorf("rationale must name the call: %q", ev.Rationale)
		}
	})

	t.Run("sandboxed clone", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "src/tools/repo.py", "import subprocess, tempfile\nsubprocess.run([\"git\"])\n")
		ev := safeTools(dir)
		if !strings.Contains(ev.Rationale, "Sandboxed cloning confirmed") {
			t.Errorf("rationale = %q", ev.Rationale)
		}
	})

	t.Run("comment mention is not a violation", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "src/tools/repo.py", "# never use os.system() here\nimport subprocess\nsubprocess.run([\"git\"])\n")
		ev := safeTools(dir)
		if strings.Contains(ev.Rationale, "SECURITY VIOLATION") {
			t.Errorf("comment-only mention flagged: %q", ev.Rationale)
		}
	})

	t.Run("missing tools dir", func(t *testing.T) {
		ev := safeTools(t.TempDir())
		if ev.Found {
			t.Error("Found should be false")
		}
	})
}

func TestStructuredOutput(t *testing.T) {
	t.Run("bound to opinion schema", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "src/nodes/judges.py", "llm.with_structured_output(JudicialOpinion)\n")
		ev := structuredOutput(dir)
		if !strings.Contains(ev.Rationale, "confirmed") {
			t.Errorf("rationale = %q", ev.Rationale)
		}
	})

	t.Run("freeform output", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "src/nodes/judges.py", "content = llm.invoke(prompt).content\n")
		ev := structuredOutput(dir)
		if !strings.Contains(ev.Rationale, "Freeform LLM output risk") {
			t.Errorf("rationale = %q", ev.Rationale)
		}
	})
}

func TestHasProgression(t *testing.T) {
	varied := []string{"a1 init", "b2 add tools", "c3 add graph", "d4 add judges"}
	if !hasProgression(varied) {
		t.Error("4 varied commits should show progression")
	}
	if hasProgression(varied[:3]) {
		t.Error("3 commits should not show progression")
	}
	duplicated := []string{"a1 wip", "b2 wip", "c3 wip", "d4 wip"}
	if hasProgression(duplicated) {
		t.Error("duplicated messages should not show progression")
	}
}

func TestTermCensus(t *testing.T) {
	text := "We implement dialectical synthesis in the architecture. " +
		"The fan-out pattern ensures parallel collection, and fan-in merges it. " +
		"Unrelated filler text."
	found, missing, substantive := termCensus(text)
	for _, want := range []string{"dialectical synthesis", "fan-out", "fan-in"} {
		if !contains(found, want) {
			t.Errorf("found %v missing %q", found, want)
		}
	}
	if contains(found, "metacognition") || !contains(missing, "metacognition") {
		t.Error("metacognition should be missing")
	}
	if substantive < 3 {
		t.Errorf("substantive = %d, want >= 3", substantive)
	}
}

func TestDocAnalyst_NoDocProvided(t *testing.T) {
	p := NewDocAnalyst()
	got := p.Collect(context.Background(), Subject{})
	for _, dim := range []string{"theoretical_depth", "report_accuracy"} {
		evs := got[evidence.Key(docProducer, dim)]
		if len(evs) != 1 || evs[0].Found {
			t.Errorf("%s: want single found=false evidence, got %+v", dim, evs)
		}
	}
}

func TestReportAccuracy(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, repo, "src/state.py", "x = 1\n")

	t.Run("hallucinated path", func(t *testing.T) {
		ev := reportAccuracy("See src/state.py and src/missing.py for details.", Subject{DocPath: "report.md", RepoDir: repo})
		if ev.Found {
			t.Error("Found should be false with hallucinated paths")
		}
		if !strings.Contains(ev.Rationale, "src/missing.py") {
			t.Errorf("rationale = %q", ev.Rationale)
		}
	})

	t.Run("all verified", func(t *testing.T) {
		ev := reportAccuracy("Implemented in src/state.py.", Subject{DocPath: "report.md", RepoDir: repo})
		if !ev.Found {
			t.Errorf("Found should be true: %q", ev.Rationale)
		}
	})

	t.Run("no claims", func(t *testing.T) {
		ev := reportAccuracy("A report with no path claims.", Subject{DocPath: "report.md", RepoDir: repo})
		if !ev.Found {
			t.Error("no claims should not count against the subject")
		}
	})

	t.Run("clone unavailable", func(t *testing.T) {
		ev := reportAccuracy("See src/state.py.", Subject{DocPath: "report.md", CloneErr: "timeout"})
		if ev.Found {
			t.Error("unverifiable claims should be found=false")
		}
	})
}

func TestMentionedPaths(t *testing.T) {
	text := "Check src/graph.py, then src/graph.py again, tests/test_graph.py, rubric.json and notes.txt."
	got := mentionedPaths(text)
	want := []string{"rubric.json", "src/graph.py", "tests/test_graph.py"}
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paths = %v, want %v", got, want)
		}
	}
}

func TestRunner_MergesProbeResults(t *testing.T) {
	store := evidence.NewStore()
	r := NewRunner(0, NewDocAnalyst())
	// Unreachable URL: clone fails fast and DocAnalyst still reports.
	r.Run(context.Background(), "/nonexistent/repo.git", "", store)

	if err := store.Require([]string{
		evidence.Key(docProducer, "theoretical_depth"),
		evidence.Key(docProducer, "report_accuracy"),
	}); err != nil {
		t.Errorf("Require: %v", err)
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
