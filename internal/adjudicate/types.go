package adjudicate

// Persona identifies one of the fixed reviewer personas. The set is closed:
// rule behavior branches on it and an unknown persona would silently bypass
// the citation-validation and tie-breaker rules.
type Persona string

const (
	// PersonaAdversarial assumes negligence until evidence proves otherwise.
	PersonaAdversarial Persona = "Prosecutor"
	// PersonaLenient rewards effort and intent; the only persona subject to
	// citation validation, because it is the one most likely to reward
	// unverifiable claims.
	PersonaLenient Persona = "Defense"
	// PersonaPragmatic judges the artifact as built; owns the tie-breaker
	// dimension's weighted resolution.
	PersonaPragmatic Persona = "TechLead"
)

// Personas returns every persona in bench order.
func Personas() []Persona {
	return []Persona{PersonaAdversarial, PersonaLenient, PersonaPragmatic}
}

// Valid reports whether p is one of the known personas.
func (p Persona) Valid() bool {
	switch p {
	case PersonaAdversarial, PersonaLenient, PersonaPragmatic:
		return true
	}
	return false
}

// Score bounds.
const (
	MinScore = 1
	MaxScore = 5
)

// ClampScore bounds a score to [MinScore, MaxScore].
func ClampScore(n int) int {
	if n < MinScore {
		return MinScore
	}
	if n > MaxScore {
		return MaxScore
	}
	return n
}

// Opinion is one reviewer's scored judgment for one dimension. Opinions are
// immutable: a rule that overrules an opinion produces a new value.
type Opinion struct {
	Reviewer    Persona `json:"reviewer"`
	DimensionID string  `json:"dimensionId"`
	Score       int     `json:"score"`
	Argument    string  `json:"argument"`
	// CitedLocations holds Evidence.Location strings the reviewer claims
	// support its score. May be empty, may be fabricated.
	CitedLocations []string `json:"citedLocations,omitempty"`
}

// DimensionResult is the adjudicated outcome for one rubric dimension.
type DimensionResult struct {
	DimensionID   string    `json:"dimensionId"`
	DimensionName string    `json:"dimensionName"`
	FinalScore    int       `json:"finalScore"`
	Opinions      []Opinion `json:"opinions"`
	// DissentSummary is present iff the variance rule triggered.
	DissentSummary string `json:"dissentSummary,omitempty"`
	Remediation    string `json:"remediation"`
	// Capped records that the security override limited the final score.
	Capped bool `json:"capped,omitempty"`
}

// AuditReport is the terminal output of an audit run.
type AuditReport struct {
	Subject          string            `json:"subject"`
	RunID            string            `json:"runId"`
	ExecutiveSummary string            `json:"executiveSummary"`
	OverallScore     float64           `json:"overallScore"`
	Dimensions       []DimensionResult `json:"dimensions"`
	RemediationPlan  string            `json:"remediationPlan"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
