package reviewers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/tribunal/internal/adjudicate"
)

type rawOpinion struct {
	Reviewer       string   `json:"reviewer"`
	DimensionID    string   `json:"dimensionId"`
	Score          int      `json:"score"`
	Argument       string   `json:"argument"`
	CitedLocations []string `json:"citedLocations"`
}

// parseOpinion decodes one reviewer response. The persona and dimension are
// forced to the requested values: a model that mislabels its own verdict must
// not be able to impersonate another reviewer or score a different dimension.
func parseOpinion(content string, persona adjudicate.Persona, dimensionID string) (adjudicate.Opinion, error) {
	content = stripCodeFences(content)

	var raw rawOpinion
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return adjudicate.Opinion{}, fmt.Errorf("invalid opinion JSON: %w", err)
	}
	if raw.Argument == "" {
		return adjudicate.Opinion{}, fmt.Errorf("opinion missing argument")
	}

	return adjudicate.Opinion{
		Reviewer:       persona,
		DimensionID:    dimensionID,
		Score:          adjudicate.ClampScore(raw.Score),
		Argument:       raw.Argument,
		CitedLocations: raw.CitedLocations,
	}, nil
}

// stripCodeFences removes a surrounding markdown code fence if present.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[1:end], "\n")
}
