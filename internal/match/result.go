package match

import "github.com/spigell/cv-matcher/internal/ai"

// Score component names, as reported in the score breakdown.
const (
	ComponentSkillOverlap       = "skill_overlap"
	ComponentSemanticSimilarity = "semantic_similarity"
	ComponentExperienceMatch    = "experience_match"
	ComponentEducationMatch     = "education_match"
)

// Result is the terminal record of a CV/JD match analysis. It is fully
// populated on every call and owned by the caller; renderers consume it
// without further computation.
type Result struct {
	// MatchScore is the weighted composite score, 0-100, two decimals.
	MatchScore float64 `json:"match_score"`

	SkillsMatched       int `json:"skills_matched"`
	TotalRequiredSkills int `json:"total_required_skills"`

	// MissingSkills is sorted by priority, High first.
	MissingSkills []ai.SkillGap `json:"missing_skills"`

	// MatchedSkills holds the title-cased intersection of CV and JD skills.
	MatchedSkills []string `json:"matched_skills"`

	// ScoreBreakdown maps component name to its percentage value.
	ScoreBreakdown map[string]float64 `json:"score_breakdown"`

	// CVContributions maps CV section names to the percentage of JD
	// keywords they cover.
	CVContributions map[string]float64 `json:"cv_contributions"`

	// JDMatches maps JD requirement sentence prefixes to whether the CV
	// covers them.
	JDMatches map[string]bool `json:"jd_matches"`

	// AIAssisted reports whether an AI scorer was configured for this
	// analysis. Rule-based fallbacks within a call do not clear it.
	AIAssisted bool `json:"ai_assisted"`
}
