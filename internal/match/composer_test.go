package match

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/scoring"
	"go.uber.org/zap"
)

type stubScorer struct {
	similarity    float64
	similarityErr error
	gaps          []ai.SkillGap
	gapsErr       error
	calls         int
}

func (s *stubScorer) SemanticSimilarity(context.Context, string, string) (float64, error) {
	s.calls++
	if s.similarityErr != nil {
		return 0, s.similarityErr
	}
	return s.similarity, nil
}

func (s *stubScorer) SkillGapAnalysis(context.Context, []string, []string) ([]ai.SkillGap, error) {
	s.calls++
	if s.gapsErr != nil {
		return nil, s.gapsErr
	}
	return s.gaps, nil
}

func newRuleBasedMatcher(t *testing.T) *Matcher {
	t.Helper()

	matcher, err := NewMatcher(nil, zap.NewNop(), DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return matcher
}

func TestWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights must validate: %v", err)
	}

	bad := Weights{SkillOverlap: 0.5, SemanticSimilarity: 0.5, ExperienceMatch: 0.5}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for weights not summing to 1.0")
	}

	negative := Weights{SkillOverlap: -0.1, SemanticSimilarity: 0.6, ExperienceMatch: 0.3, EducationMatch: 0.2}
	if err := negative.Validate(); err == nil {
		t.Fatalf("expected error for negative weight")
	}

	if _, err := NewMatcher(nil, zap.NewNop(), bad); err == nil {
		t.Fatalf("expected constructor to reject bad weights")
	}
}

func TestComputeMatchScenario(t *testing.T) {
	matcher := newRuleBasedMatcher(t)

	result := matcher.ComputeMatch(context.Background(),
		"Skills: Python, SQL. 3 years experience in data teams.",
		"We need Python, SQL and AWS. 5+ years experience required.",
		[]string{"Python", "SQL"},
		[]string{"Python", "SQL", "AWS"},
	)

	if !reflect.DeepEqual(result.MatchedSkills, []string{"Python", "Sql"}) {
		t.Fatalf("unexpected matched skills: %v", result.MatchedSkills)
	}

	if result.SkillsMatched != 2 || result.TotalRequiredSkills != 3 {
		t.Fatalf("unexpected counts: %d/%d", result.SkillsMatched, result.TotalRequiredSkills)
	}

	overlap := result.ScoreBreakdown[ComponentSkillOverlap]
	if math.Abs(overlap-200.0/3.0) > 1e-6 {
		t.Fatalf("expected overlap ~66.67, got %v", overlap)
	}

	if len(result.MissingSkills) != 1 {
		t.Fatalf("expected one missing skill, got %v", result.MissingSkills)
	}

	gap := result.MissingSkills[0]
	if gap.Skill != "Aws" || gap.Priority != ai.PriorityHigh {
		t.Fatalf("unexpected gap: %+v", gap)
	}
	if gap.Reason != "Required skill 'aws' not found in CV" {
		t.Fatalf("unexpected reason: %q", gap.Reason)
	}
	if len(gap.Suggestions) != 3 {
		t.Fatalf("expected three suggestions, got %v", gap.Suggestions)
	}

	if result.AIAssisted {
		t.Fatalf("expected rule-based result")
	}
}

func TestComputeMatchScoreRanges(t *testing.T) {
	matcher := newRuleBasedMatcher(t)

	inputs := []struct {
		cvText, jdText     string
		cvSkills, jdSkills []string
	}{
		{"", "", nil, nil},
		{"python", "python needed", []string{"Python"}, []string{"Python"}},
		{"nothing relevant", "java spring mba 9 years experience", nil, []string{"Java", "Spring"}},
	}

	for _, in := range inputs {
		result := matcher.ComputeMatch(context.Background(), in.cvText, in.jdText, in.cvSkills, in.jdSkills)

		if result.MatchScore < 0 || result.MatchScore > 100 {
			t.Fatalf("composite score out of range: %v", result.MatchScore)
		}
		if len(result.ScoreBreakdown) != 4 {
			t.Fatalf("expected four components, got %v", result.ScoreBreakdown)
		}
		for name, pct := range result.ScoreBreakdown {
			if pct < 0 || pct > 100 {
				t.Fatalf("component %s out of range: %v", name, pct)
			}
		}
	}
}

func TestComputeMatchDeterministic(t *testing.T) {
	matcher := newRuleBasedMatcher(t)

	cvText := "Skills: Python, Docker. 4 years experience. Bachelor degree."
	jdText := "Looking for Python and Docker. Bachelor required. 3 years experience."
	cvSkills := []string{"Python", "Docker"}
	jdSkills := []string{"Python", "Docker", "Kubernetes"}

	first := matcher.ComputeMatch(context.Background(), cvText, jdText, cvSkills, jdSkills)
	second := matcher.ComputeMatch(context.Background(), cvText, jdText, cvSkills, jdSkills)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results for identical inputs")
	}
}

func TestComputeMatchMissingDisjointFromMatched(t *testing.T) {
	matcher := newRuleBasedMatcher(t)

	result := matcher.ComputeMatch(context.Background(), "cv", "jd",
		[]string{"Python", "SQL", "Git"},
		[]string{"Python", "AWS", "SQL", "Terraform"},
	)

	matched := make(map[string]struct{})
	for _, skill := range result.MatchedSkills {
		matched[skill] = struct{}{}
	}

	for _, gap := range result.MissingSkills {
		if _, ok := matched[gap.Skill]; ok {
			t.Fatalf("skill %q appears in both matched and missing", gap.Skill)
		}
	}
}

func TestComputeMatchAIFailureFallsBackToLexical(t *testing.T) {
	scorer := &stubScorer{
		similarityErr: errors.New("network down"),
		gapsErr:       errors.New("network down"),
	}

	matcher, err := NewMatcher(scorer, zap.NewNop(), DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cvText := "python developer with docker experience"
	jdText := "python and docker required for this role"

	result := matcher.ComputeMatch(context.Background(), cvText, jdText,
		[]string{"Python"}, []string{"Python", "AWS"})

	expected := scoring.LexicalSimilarity(cvText, jdText) * 100
	if math.Abs(result.ScoreBreakdown[ComponentSemanticSimilarity]-expected) > 1e-9 {
		t.Fatalf("expected lexical fallback value %v, got %v",
			expected, result.ScoreBreakdown[ComponentSemanticSimilarity])
	}

	// Rule-based gap derivation must kick in.
	if len(result.MissingSkills) != 1 || result.MissingSkills[0].Skill != "Aws" {
		t.Fatalf("expected rule-based gap for Aws, got %v", result.MissingSkills)
	}

	// Availability is a construction-time property.
	if !result.AIAssisted {
		t.Fatalf("expected AIAssisted to reflect configured scorer")
	}
}

func TestComputeMatchPrefersAIGaps(t *testing.T) {
	scorer := &stubScorer{
		similarity: 0.9,
		gaps: []ai.SkillGap{
			{Skill: "Terraform", Priority: ai.PriorityLow, Reason: "Nice to have"},
			{Skill: "AWS", Priority: ai.PriorityHigh, Reason: "Core requirement"},
			{Skill: "Docker", Priority: ai.PriorityMedium, Reason: "Deployment"},
		},
	}

	matcher, err := NewMatcher(scorer, zap.NewNop(), DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := matcher.ComputeMatch(context.Background(), "cv", "jd",
		[]string{"Python"}, []string{"Python", "AWS", "Docker", "Terraform"})

	if len(result.MissingSkills) != 3 {
		t.Fatalf("expected AI gaps, got %v", result.MissingSkills)
	}

	// AI entries are re-sorted by priority, High first.
	order := []string{"AWS", "Docker", "Terraform"}
	for i, gap := range result.MissingSkills {
		if gap.Skill != order[i] {
			t.Fatalf("expected priority order %v, got %+v", order, result.MissingSkills)
		}
	}

	if result.ScoreBreakdown[ComponentSemanticSimilarity] != 90.0 {
		t.Fatalf("expected AI similarity 90, got %v", result.ScoreBreakdown[ComponentSemanticSimilarity])
	}
}

func TestComputeMatchEmptyAIGapsDerivedByRule(t *testing.T) {
	scorer := &stubScorer{similarity: 0.5}

	matcher, err := NewMatcher(scorer, zap.NewNop(), DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := matcher.ComputeMatch(context.Background(), "cv", "jd",
		[]string{"Python"}, []string{"Python", "AWS"})

	if len(result.MissingSkills) != 1 || result.MissingSkills[0].Skill != "Aws" {
		t.Fatalf("expected rule-derived gap, got %v", result.MissingSkills)
	}
}

func TestComputeMatchPartialSkillNotMissing(t *testing.T) {
	matcher := newRuleBasedMatcher(t)

	// "react" is a substring of "react native": it earns partial credit and
	// is not reported missing.
	result := matcher.ComputeMatch(context.Background(), "cv", "jd",
		[]string{"React Native"}, []string{"React"})

	if len(result.MissingSkills) != 0 {
		t.Fatalf("expected no missing skills, got %v", result.MissingSkills)
	}

	// Not a direct match either, so it is not in the matched list.
	if len(result.MatchedSkills) != 0 {
		t.Fatalf("expected no matched skills, got %v", result.MatchedSkills)
	}
}

func TestCVContributions(t *testing.T) {
	matcher := newRuleBasedMatcher(t)

	result := matcher.ComputeMatch(context.Background(),
		"Skills: python and docker\nExperience: built services",
		"python docker services",
		nil, nil)

	if len(result.CVContributions) != 4 {
		t.Fatalf("expected four sections, got %v", result.CVContributions)
	}

	if result.CVContributions["Skills Section"] <= 0 {
		t.Fatalf("expected skills section contribution, got %v", result.CVContributions)
	}

	if result.CVContributions["Education Section"] != 0 {
		t.Fatalf("expected zero education contribution, got %v", result.CVContributions)
	}
}

func TestJDMatches(t *testing.T) {
	matcher := newRuleBasedMatcher(t)

	jdText := "We are looking for a python developer with docker skills. " +
		"Must enjoy quantum basket weaving and underwater chess tournaments. " +
		"ok."

	result := matcher.ComputeMatch(context.Background(),
		"Seasoned python developer, strong docker and kubernetes skills.",
		jdText, nil, nil)

	if len(result.JDMatches) != 2 {
		t.Fatalf("expected two traced sentences, got %v", result.JDMatches)
	}

	matchedAny := false
	for key, matched := range result.JDMatches {
		if len([]rune(key)) > requirementKeyLength+3 {
			t.Fatalf("key too long: %q", key)
		}
		if matched {
			matchedAny = true
		}
	}

	if !matchedAny {
		t.Fatalf("expected at least one matched requirement: %v", result.JDMatches)
	}
}
