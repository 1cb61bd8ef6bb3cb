package ai

import "context"

// Gap priority levels, as reported in skill gap analysis.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// SkillGap describes a single required skill missing from a CV, with guidance
// on how to close the gap.
type SkillGap struct {
	Skill       string   `json:"skill"`
	Priority    string   `json:"priority"`
	Reason      string   `json:"reason"`
	Suggestions []string `json:"suggestions"`
}

// Scorer provides AI-assisted scoring over CV and job description texts.
// Implementations return an error only when the backend is unreachable;
// malformed but received output is mapped to neutral defaults instead.
type Scorer interface {
	SemanticSimilarity(ctx context.Context, cvText, jdText string) (float64, error)
	SkillGapAnalysis(ctx context.Context, cvSkills, jdSkills []string) ([]SkillGap, error)
}

// PriorityRank maps a priority label to its sort rank. High sorts first,
// unrecognized labels sort last.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}
