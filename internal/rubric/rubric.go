package rubric

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dimension is one scored axis of the rubric.
type Dimension struct {
	ID             string `yaml:"id" json:"id"`
	Name           string `yaml:"name" json:"name"`
	Producer       string `yaml:"producer" json:"producer"`
	SuccessPattern string `yaml:"success_pattern" json:"successPattern"`
	FailurePattern string `yaml:"failure_pattern" json:"failurePattern"`
	// Required marks dimensions whose evidence key must exist before
	// adjudication may start.
	Required bool `yaml:"required" json:"required"`
	// TieBreaker marks the single dimension where the pragmatic reviewer's
	// score carries 50% of the weighted result.
	TieBreaker bool `yaml:"tie_breaker" json:"tieBreaker"`
	// Remediation is the fixed instruction attached when the final score
	// lands at 2 or below.
	Remediation string `yaml:"remediation" json:"remediation"`
}

// Rubric is the read-only audit configuration: dimension order here is report
// order.
type Rubric struct {
	Dimensions []Dimension `yaml:"dimensions" json:"dimensions"`
}

// Default returns the built-in rubric for auditing multi-agent auditor
// repositories.
func Default() Rubric {
	return Rubric{Dimensions: []Dimension{
		{
			ID:             "git_forensic_analysis",
			Name:           "Git Forensic Analysis",
			Producer:       "repo_investigator",
			SuccessPattern: "Commit history shows iterative progression: more than 3 commits with distinct messages covering setup, tooling, and orchestration phases.",
			FailurePattern: "A single bulk-upload commit, or a handful of commits with duplicated messages.",
			Required:       true,
			Remediation: "Commit history shows bulk upload. Make atomic commits for each phase: " +
				"environment setup, tool engineering, graph orchestration. Aim for >3 meaningful commits.",
		},
		{
			ID:             "state_management_rigor",
			Name:           "State Management Rigor",
			Producer:       "repo_investigator",
			SuccessPattern: "Typed state models (Pydantic BaseModel or TypedDict) with operator.add/ior reducers guarding parallel writes.",
			FailurePattern: "Plain dicts mutated in place; no reducer annotations; state collisions possible under fan-out.",
			Required:       true,
			Remediation: "No Pydantic BaseModel or TypedDict found. Create src/state.py with typed " +
				"Evidence and Opinion models and a state definition using Annotated reducers.",
		},
		{
			ID:             "graph_orchestration",
			Name:           "Graph Orchestration",
			Producer:       "repo_investigator",
			SuccessPattern: "StateGraph with parallel fan-out for collectors, an aggregator fan-in barrier, parallel fan-out for reviewers, and a single synthesis node.",
			FailurePattern: "A linear pipeline with no fan-out, or no graph construction at all.",
			Required:       true,
			TieBreaker:     true,
			Remediation: "No StateGraph instantiation found. Implement src/graph.py with parallel " +
				"fan-out for detectives, an aggregator fan-in, parallel fan-out for judges, and a synthesis node.",
		},
		{
			ID:             "safe_tool_engineering",
			Name:           "Safe Tool Engineering",
			Producer:       "repo_investigator",
			SuccessPattern: "Repository cloning sandboxed in a temporary directory using subprocess.run with captured output and timeouts.",
			FailurePattern: "os.system() shell execution, unsanitized input reaching a shell, or cloning into the live working directory.",
			Required:       true,
			Remediation: "Tools implementation incomplete or unsafe. Implement sandboxed cloning with " +
				"a temporary directory and subprocess.run with captured output. Remove all os.system() calls.",
		},
		{
			ID:             "structured_output_enforcement",
			Name:           "Structured Output Enforcement",
			Producer:       "repo_investigator",
			SuccessPattern: "Every reviewer call is schema-constrained (with_structured_output bound to the opinion model); no free-text fallback parsing.",
			FailurePattern: "Freeform LLM output parsed by hand or not validated at all.",
			Required:       true,
			Remediation: "Structured output binding incomplete. Ensure all judge nodes bind the LLM " +
				"to the opinion schema so every call is schema-constrained with no free-text fallback.",
		},
		{
			ID:             "theoretical_depth",
			Name:           "Theoretical Depth",
			Producer:       "doc_analyst",
			SuccessPattern: "The written report explains dialectical synthesis, fan-out/fan-in, and state synchronization tied to concrete implementation decisions.",
			FailurePattern: "Buzzword mentions with no connection to the implementation, or no report at all.",
			Remediation: "Report lacks theoretical depth. Include substantive explanations of " +
				"dialectical synthesis, fan-in/fan-out, and state synchronization tied to actual implementation decisions.",
		},
		{
			ID:             "report_accuracy",
			Name:           "Report Accuracy",
			Producer:       "doc_analyst",
			SuccessPattern: "Every file path and feature claimed in the report exists in the repository.",
			FailurePattern: "The report references files or features absent from the code.",
			Remediation: "Report references file paths not found in the repository. Ensure all " +
				"claimed file paths exist and feature claims match code evidence.",
		},
	}}
}

// Load reads a rubric from a YAML or JSON file. An empty path returns the
// default rubric.
func Load(path string) (Rubric, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rubric{}, fmt.Errorf("reading rubric file: %w", err)
	}
	var r Rubric
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &r); err != nil {
			return Rubric{}, fmt.Errorf("parsing rubric file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &r); err != nil {
			return Rubric{}, fmt.Errorf("parsing rubric file: %w", err)
		}
	}
	if err := r.Validate(); err != nil {
		return Rubric{}, err
	}
	return r, nil
}

// Validate checks structural invariants of the rubric.
func (r Rubric) Validate() error {
	if len(r.Dimensions) == 0 {
		return fmt.Errorf("rubric has no dimensions")
	}
	seen := make(map[string]bool, len(r.Dimensions))
	tieBreakers := 0
	for _, d := range r.Dimensions {
		if d.ID == "" {
			return fmt.Errorf("rubric dimension with empty id")
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate rubric dimension id: %s", d.ID)
		}
		seen[d.ID] = true
		if d.Name == "" {
			return fmt.Errorf("rubric dimension %s has no name", d.ID)
		}
		if d.Producer == "" {
			return fmt.Errorf("rubric dimension %s has no producer", d.ID)
		}
		if d.TieBreaker {
			tieBreakers++
		}
	}
	if tieBreakers > 1 {
		return fmt.Errorf("rubric declares %d tie-breaker dimensions, at most 1 allowed", tieBreakers)
	}
	return nil
}

// ByID returns the dimension with the given id.
func (r Rubric) ByID(id string) (Dimension, bool) {
	for _, d := range r.Dimensions {
		if d.ID == id {
			return d, true
		}
	}
	return Dimension{}, false
}

// Name returns the display name for a dimension id, falling back to the id
// itself for unknown dimensions.
func (r Rubric) Name(id string) string {
	if d, ok := r.ByID(id); ok {
		return d.Name
	}
	return id
}

// TieBreakerID returns the id of the tie-breaker dimension, or "" if the
// rubric declares none.
func (r Rubric) TieBreakerID() string {
	for _, d := range r.Dimensions {
		if d.TieBreaker {
			return d.ID
		}
	}
	return ""
}

// RequiredEvidenceKeys lists the evidence keys that must be present before
// adjudication may start: one per required dimension, namespaced by its
// producer.
func (r Rubric) RequiredEvidenceKeys() []string {
	var keys []string
	for _, d := range r.Dimensions {
		if d.Required {
			keys = append(keys, d.Producer+"_"+d.ID)
		}
	}
	return keys
}

// Marshal renders the rubric as YAML, used by the rubric show command.
func (r Rubric) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}
