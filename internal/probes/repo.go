package probes

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/tribunal/internal/evidence"
)

const (
	repoProducer  = "repo_investigator"
	gitLogTimeout = 15 * time.Second
)

// repoDimensions are the rubric dimensions this probe owns. Every Collect
// call produces evidence for all of them, found or not.
var repoDimensions = []string{
	"git_forensic_analysis",
	"state_management_rigor",
	"graph_orchestration",
	"safe_tool_engineering",
	"structured_output_enforcement",
}

// RepoInvestigator inspects the cloned subject repository. All checks are
// read-only scans of the checkout; nothing from the subject is ever executed.
type RepoInvestigator struct{}

func NewRepoInvestigator() *RepoInvestigator { return &RepoInvestigator{} }

func (p *RepoInvestigator) Name() string { return repoProducer }

func (p *RepoInvestigator) Collect(ctx context.Context, sub Subject) map[string][]evidence.Evidence {
	if sub.RepoDir == "" {
		return p.allFailure(sub.CloneErr)
	}
	return map[string][]evidence.Evidence{
		evidence.Key(repoProducer, "git_forensic_analysis"):         {gitForensics(ctx, sub.RepoDir)},
		evidence.Key(repoProducer, "state_management_rigor"):        {stateManagement(sub.RepoDir)},
		evidence.Key(repoProducer, "graph_orchestration"):           {graphOrchestration(sub.RepoDir)},
		evidence.Key(repoProducer, "safe_tool_engineering"):         {safeTools(sub.RepoDir)},
		evidence.Key(repoProducer, "structured_output_enforcement"): {structuredOutput(sub.RepoDir)},
	}
}

// allFailure covers the clone-failed path: found=false for every owned
// dimension keeps the completeness barrier satisfied.
func (p *RepoInvestigator) allFailure(reason string) map[string][]evidence.Evidence {
	out := make(map[string][]evidence.Evidence, len(repoDimensions))
	for _, dim := range repoDimensions {
		out[evidence.Key(repoProducer, dim)] = []evidence.Evidence{{
			Goal:       "Forensic check: " + dim,
			Found:      false,
			Location:   evidence.LocationNA,
			Rationale:  "Repository clone failed: " + truncate(reason, 200),
			Confidence: 1.0,
		}}
	}
	return out
}

// gitForensics analyzes commit history for iterative progression.
func gitForensics(ctx context.Context, repoDir string) evidence.Evidence {
	const goal = "Verify iterative commit history showing progression"

	logCtx, cancel := context.WithTimeout(ctx, gitLogTimeout)
	defer cancel()

	cmd := exec.CommandContext(logCtx, "git", "log", "--oneline", "--reverse")
	cmd.Dir = repoDir
	out, err := cmd.Output()
	if err != nil {
		return evidence.Evidence{
			Goal: goal, Found: false, Location: evidence.LocationNA,
			Rationale:  "git log failed: " + truncate(err.Error(), 200),
			Confidence: 1.0,
		}
	}

	commits := splitCommits(string(out))
	total := len(commits)
	preview := strings.Join(commits[:min(5, total)], "; ")

	var rationale string
	var confidence float64
	switch {
	case total <= 1:
		rationale = fmt.Sprintf("Bulk upload detected: only %d commit(s). Commits: [%s]", total, preview)
		confidence = 0.95
	case !hasProgression(commits):
		rationale = fmt.Sprintf("%d commits found but progression pattern unclear. Commits: [%s]", total, preview)
		confidence = 0.7
	default:
		rationale = fmt.Sprintf("%d commits with clear progression. Sample: [%s]", total, preview)
		confidence = 1.0
	}

	return evidence.Evidence{
		Goal: goal, Found: total > 0, Location: ".git/log",
		Rationale: rationale, Confidence: confidence,
	}
}

func splitCommits(log string) []string {
	var commits []string
	for _, line := range strings.Split(strings.TrimSpace(log), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			commits = append(commits, line)
		}
	}
	return commits
}

// hasProgression is true for more than 3 commits with meaningfully different
// messages. Duplicated messages across a long history still read as bulk work.
func hasProgression(commits []string) bool {
	if len(commits) <= 3 {
		return false
	}
	unique := make(map[string]bool)
	for _, c := range commits {
		parts := strings.SplitN(c, " ", 2)
		msg := parts[len(parts)-1]
		unique[strings.ToLower(strings.TrimSpace(msg))] = true
	}
	return len(unique) > 2
}

// stateManagement scans src/state.py then src/graph.py for typed state models
// and reducer annotations.
func stateManagement(repoDir string) evidence.Evidence {
	const goal = "Verify Pydantic/TypedDict AgentState with operator.add/ior reducers"

	for _, rel := range []string{"src/state.py", "src/graph.py"} {
		source, err := readRepoFile(repoDir, rel)
		if err != nil {
			continue
		}

		hasBaseModel := strings.Contains(source, "BaseModel")
		hasTypedDict := strings.Contains(source, "TypedDict")
		hasReducers := strings.Contains(source, "operator.add") || strings.Contains(source, "operator.ior")
		hasTyped := hasBaseModel || hasTypedDict

		var rationale string
		var confidence float64
		switch {
		case hasTyped && hasReducers:
			rationale = fmt.Sprintf("BaseModel=%t, TypedDict=%t, reducers(operator.add/ior)=True. Full compliance.", hasBaseModel, hasTypedDict)
			confidence = 1.0
		case hasTyped:
			rationale = fmt.Sprintf("Typed state found (BaseModel=%t, TypedDict=%t) but operator.add/ior reducers absent.", hasBaseModel, hasTypedDict)
			confidence = 0.7
		default:
			rationale = "No Pydantic BaseModel or TypedDict found. Plain dicts likely used."
			confidence = 0.9
		}

		return evidence.Evidence{
			Goal: goal, Found: true, Location: rel,
			Rationale: rationale, Confidence: confidence,
		}
	}

	return evidence.Evidence{
		Goal: goal, Found: false, Location: evidence.LocationNA,
		Rationale:  "No src/state.py or src/graph.py found in repository",
		Confidence: 1.0,
	}
}

// graphOrchestration scans src/graph.py for StateGraph wiring with parallel
// fan-out and an aggregator barrier.
func graphOrchestration(repoDir string) evidence.Evidence {
	const goal = "Verify parallel fan-out/fan-in StateGraph architecture"
	const rel = "src/graph.py"

	source, err := readRepoFile(repoDir, rel)
	if err != nil {
		return evidence.Evidence{
			Goal: goal, Found: false, Location: evidence.LocationNA,
			Rationale: "src/graph.py not found", Confidence: 1.0,
		}
	}

	hasStateGraph := strings.Contains(source, "StateGraph")
	edgeCount := strings.Count(source, ".add_edge(")
	hasFanOut := edgeCount >= 4
	hasAggregator := containsAnyFold(source, "evidence_aggregator", "aggregator", "evidenceaggregator")

	var rationale string
	var confidence float64
	switch {
	case hasStateGraph && hasFanOut && hasAggregator:
		rationale = fmt.Sprintf("StateGraph with fan-out architecture detected. %d edge calls. EvidenceAggregator present.", edgeCount)
		confidence = 1.0
	case hasStateGraph && !hasFanOut:
		rationale = fmt.Sprintf("StateGraph found but only %d edge calls - likely linear pipeline, not parallel fan-out.", edgeCount)
		confidence = 0.9
	case hasStateGraph:
		rationale = fmt.Sprintf("StateGraph found with %d edges but no EvidenceAggregator node detected.", edgeCount)
		confidence = 0.8
	default:
		rationale = "No StateGraph instantiation found in src/graph.py."
		confidence = 0.95
	}

	return evidence.Evidence{
		Goal: goal, Found: hasStateGraph, Location: rel,
		Rationale: rationale, Confidence: confidence,
	}
}

// safeTools scans every Python file under src/tools/ for sandboxed cloning
// and direct shell execution.
func safeTools(repoDir string) evidence.Evidence {
	const goal = "Verify sandboxed git cloning with subprocess.run and tempfile"
	const rel = "src/tools/"

	toolsDir := filepath.Join(repoDir, "src", "tools")
	entries, err := os.ReadDir(toolsDir)
	if err != nil {
		return evidence.Evidence{
			Goal: goal, Found: false, Location: evidence.LocationNA,
			Rationale: "src/tools/ directory not found", Confidence: 1.0,
		}
	}

	var combined strings.Builder
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".py" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(toolsDir, e.Name()))
		if err != nil {
			continue
		}
		combined.Write(data)
		combined.WriteString("\n")
	}
	source := combined.String()

	if strings.TrimSpace(source) == "" {
		return evidence.Evidence{
			Goal: goal, Found: true, Location: rel,
			Rationale: "No Python files found in src/tools/", Confidence: 0.9,
		}
	}

	usesTempfile := strings.Contains(source, "tempfile")
	usesSubprocess := strings.Contains(source, "subprocess.run") || strings.Contains(source, "subprocess.Popen")
	hasOSSystem := hasOSSystemCall(source)

	var rationale string
	var confidence float64
	switch {
	case hasOSSystem:
		rationale = "SECURITY VIOLATION: os.system() call detected in src/tools/. " +
			"This is a shell injection risk. subprocess.run() with sandboxed " +
			"tempfile.TemporaryDirectory() is required."
		confidence = 1.0
	case usesTempfile && usesSubprocess:
		rationale = "Sandboxed cloning confirmed: tempfile.TemporaryDirectory() and subprocess.run() present."
		confidence = 1.0
	case usesSubprocess:
		rationale = "subprocess.run() found but tempfile sandboxing not detected."
		confidence = 0.8
	default:
		rationale = "Neither subprocess.run() nor tempfile detected in src/tools/."
		confidence = 0.9
	}

	return evidence.Evidence{
		Goal: goal, Found: true, Location: rel,
		Rationale: rationale, Confidence: confidence,
	}
}

// hasOSSystemCall detects executable os.system() calls while skipping lines
// that only mention it in comments.
func hasOSSystemCall(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		code := line
		if i := strings.Index(code, "#"); i >= 0 {
			code = code[:i]
		}
		if strings.Contains(code, "os.system(") {
			return true
		}
	}
	return false
}

// structuredOutput scans src/nodes/judges.py for schema-constrained LLM calls.
func structuredOutput(repoDir string) evidence.Evidence {
	const goal = "Verify .with_structured_output(JudicialOpinion) in judge nodes"
	const rel = "src/nodes/judges.py"

	source, err := readRepoFile(repoDir, rel)
	if err != nil {
		return evidence.Evidence{
			Goal: goal, Found: false, Location: evidence.LocationNA,
			Rationale: "src/nodes/judges.py not found", Confidence: 1.0,
		}
	}

	hasStructured := strings.Contains(source, "with_structured_output") || strings.Contains(source, "bind_tools")
	hasBinding := strings.Contains(source, "JudicialOpinion")

	var rationale string
	var confidence float64
	switch {
	case hasStructured && hasBinding:
		rationale = "with_structured_output() bound to JudicialOpinion confirmed in judges.py."
		confidence = 1.0
	case hasStructured:
		rationale = "with_structured_output() found but JudicialOpinion binding not confirmed."
		confidence = 0.7
	default:
		rationale = "No with_structured_output() or bind_tools() detected. Freeform LLM output risk."
		confidence = 0.9
	}

	return evidence.Evidence{
		Goal: goal, Found: true, Location: rel,
		Rationale: rationale, Confidence: confidence,
	}
}

func readRepoFile(repoDir, rel string) (string, error) {
	data, err := os.ReadFile(filepath.Join(repoDir, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func containsAnyFold(source string, needles ...string) bool {
	lower := strings.ToLower(source)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
