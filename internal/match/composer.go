// Package match composes the rule-based scoring primitives and the optional
// AI scorer into a single match result with an explainability trace.
package match

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/scoring"
	"github.com/spigell/cv-matcher/internal/taxonomy"
	"go.uber.org/zap"
)

// Weights holds the per-component coefficients of the composite score.
type Weights struct {
	SkillOverlap       float64
	SemanticSimilarity float64
	ExperienceMatch    float64
	EducationMatch     float64
}

// DefaultWeights returns the fixed production weighting.
func DefaultWeights() Weights {
	return Weights{
		SkillOverlap:       0.35,
		SemanticSimilarity: 0.40,
		ExperienceMatch:    0.15,
		EducationMatch:     0.10,
	}
}

// Validate rejects malformed weight configurations. A bad configuration is a
// build-time defect, so this is the one place the composer fails loudly.
func (w Weights) Validate() error {
	for name, value := range map[string]float64{
		ComponentSkillOverlap:       w.SkillOverlap,
		ComponentSemanticSimilarity: w.SemanticSimilarity,
		ComponentExperienceMatch:    w.ExperienceMatch,
		ComponentEducationMatch:     w.EducationMatch,
	} {
		if value < 0 {
			return fmt.Errorf("weight %s is negative: %v", name, value)
		}
	}

	sum := w.SkillOverlap + w.SemanticSimilarity + w.ExperienceMatch + w.EducationMatch
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}

	return nil
}

var (
	wordRe     = regexp.MustCompile(`\b\w+\b`)
	longWordRe = regexp.MustCompile(`\b\w{4,}\b`)
	sentenceRe = regexp.MustCompile(`[.!?]\s+`)
)

const (
	// maxRequirementSentences bounds the JD requirement trace.
	maxRequirementSentences = 10
	// minRequirementLength filters out fragments when tracing requirements.
	minRequirementLength = 20
	// requirementMatchRatio is the token coverage needed to mark a JD
	// requirement sentence as matched by the CV.
	requirementMatchRatio = 0.3
	// requirementKeyLength is the sentence prefix length used as map key.
	requirementKeyLength = 50
)

// Matcher computes match results. The scorer is selected once at
// construction: nil means rule-based scoring for the matcher's lifetime.
// Matchers are reentrant; each ComputeMatch call is self-contained.
type Matcher struct {
	weights  Weights
	scorer   ai.Scorer
	sections SectionLocator
	logger   *zap.Logger
}

// NewMatcher creates a Matcher. Pass a nil scorer to run purely rule-based.
func NewMatcher(scorer ai.Scorer, log *zap.Logger, weights Weights) (*Matcher, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Matcher{
		weights:  weights,
		scorer:   scorer,
		sections: NewRegexSectionLocator(),
		logger:   log,
	}, nil
}

// SetSectionLocator replaces the CV section heuristic used for the
// explainability trace.
func (m *Matcher) SetSectionLocator(locator SectionLocator) {
	if locator != nil {
		m.sections = locator
	}
}

// AIAssisted reports whether an AI scorer is configured.
func (m *Matcher) AIAssisted() bool {
	return m.scorer != nil
}

// ComputeMatch scores the CV against the job description and assembles the
// full result record. It never fails: AI errors fall back to rule-based
// scoring, and empty inputs produce neutral or zero component scores.
func (m *Matcher) ComputeMatch(ctx context.Context, cvText, jdText string, cvSkills, jdSkills []string) *Result {
	cvNorm := lowerAll(cvSkills)
	jdNorm := lowerAll(jdSkills)

	overlap := scoring.SkillOverlap(cvNorm, jdNorm)
	semantic := m.semanticSimilarity(ctx, cvText, jdText)
	experience := scoring.ExperienceMatch(cvText, jdText)
	education := scoring.EducationMatch(cvText, jdText)

	composite := (overlap*m.weights.SkillOverlap +
		semantic*m.weights.SemanticSimilarity +
		experience*m.weights.ExperienceMatch +
		education*m.weights.EducationMatch) * 100

	missing := m.missingSkills(ctx, cvSkills, jdSkills, cvNorm, jdNorm)
	matched := matchedSkills(cvNorm, jdNorm)

	return &Result{
		MatchScore:          math.Round(composite*100) / 100,
		SkillsMatched:       len(matched),
		TotalRequiredSkills: len(jdSkills),
		MissingSkills:       missing,
		MatchedSkills:       matched,
		ScoreBreakdown: map[string]float64{
			ComponentSkillOverlap:       overlap * 100,
			ComponentSemanticSimilarity: semantic * 100,
			ComponentExperienceMatch:    experience * 100,
			ComponentEducationMatch:     education * 100,
		},
		CVContributions: m.cvContributions(cvText, jdText),
		JDMatches:       jdMatches(cvText, jdText),
		AIAssisted:      m.AIAssisted(),
	}
}

func (m *Matcher) semanticSimilarity(ctx context.Context, cvText, jdText string) float64 {
	if m.scorer == nil {
		return scoring.LexicalSimilarity(cvText, jdText)
	}

	score, err := m.scorer.SemanticSimilarity(ctx, cvText, jdText)
	if err != nil {
		m.logger.Warn("ai semantic similarity failed, falling back to lexical",
			zap.Error(err),
		)
		return scoring.LexicalSimilarity(cvText, jdText)
	}

	return score
}

func (m *Matcher) missingSkills(ctx context.Context, cvSkills, jdSkills, cvNorm, jdNorm []string) []ai.SkillGap {
	if m.scorer != nil {
		gaps, err := m.scorer.SkillGapAnalysis(ctx, cvSkills, jdSkills)
		if err != nil {
			m.logger.Warn("ai skill gap analysis failed, deriving by rule",
				zap.Error(err),
			)
		} else if len(gaps) > 0 {
			sortGaps(gaps)
			return gaps
		}
	}

	gaps := deriveMissingSkills(cvNorm, jdNorm)
	sortGaps(gaps)
	return gaps
}

// deriveMissingSkills lists JD skills with neither a direct nor a substring
// partial match in the CV. Everything the rule path emits is High priority;
// finer tiers exist only in AI-returned entries.
func deriveMissingSkills(cvNorm, jdNorm []string) []ai.SkillGap {
	cvSet := toSet(cvNorm)

	gaps := make([]ai.SkillGap, 0)
	seen := make(map[string]struct{})
	for _, jdSkill := range jdNorm {
		if _, ok := seen[jdSkill]; ok {
			continue
		}
		seen[jdSkill] = struct{}{}

		if _, ok := cvSet[jdSkill]; ok {
			continue
		}
		if hasPartialMatch(cvSet, jdSkill) {
			continue
		}

		gaps = append(gaps, ai.SkillGap{
			Skill:    taxonomy.Title(jdSkill),
			Priority: ai.PriorityHigh,
			Reason:   fmt.Sprintf("Required skill '%s' not found in CV", jdSkill),
			Suggestions: []string{
				fmt.Sprintf("Consider learning %s", jdSkill),
				fmt.Sprintf("Add %s to your skills section if you have experience", jdSkill),
				fmt.Sprintf("Look for courses or certifications in %s", jdSkill),
			},
		})
	}

	return gaps
}

func sortGaps(gaps []ai.SkillGap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		return ai.PriorityRank(gaps[i].Priority) < ai.PriorityRank(gaps[j].Priority)
	})
}

func matchedSkills(cvNorm, jdNorm []string) []string {
	jdSet := toSet(jdNorm)

	matched := make([]string, 0)
	seen := make(map[string]struct{})
	for _, cvSkill := range cvNorm {
		if _, ok := jdSet[cvSkill]; !ok {
			continue
		}
		if _, ok := seen[cvSkill]; ok {
			continue
		}
		seen[cvSkill] = struct{}{}
		matched = append(matched, taxonomy.Title(cvSkill))
	}

	return matched
}

func hasPartialMatch(cvSet map[string]struct{}, jdSkill string) bool {
	for cvSkill := range cvSet {
		if strings.Contains(cvSkill, jdSkill) || strings.Contains(jdSkill, cvSkill) {
			return true
		}
	}
	return false
}

// cvContributions reports, per located CV section, the percentage of JD word
// tokens the section covers. Sections the locator cannot find contribute 0.
func (m *Matcher) cvContributions(cvText, jdText string) map[string]float64 {
	contributions := make(map[string]float64)
	for _, name := range m.sections.Sections() {
		contributions[name] = 0.0
	}

	jdTokens := toSet(wordRe.FindAllString(strings.ToLower(jdText), -1))
	if len(jdTokens) == 0 {
		return contributions
	}

	for name, span := range m.sections.Locate(cvText) {
		spanTokens := wordRe.FindAllString(strings.ToLower(span), -1)

		common := 0
		counted := make(map[string]struct{})
		for _, token := range spanTokens {
			if _, ok := counted[token]; ok {
				continue
			}
			counted[token] = struct{}{}
			if _, ok := jdTokens[token]; ok {
				common++
			}
		}

		contributions[name] = float64(common) / float64(len(jdTokens)) * 100
	}

	return contributions
}

// jdMatches traces which JD requirement sentences the CV covers: a sentence
// counts as matched when at least 30% of its 4+ letter tokens occur in the CV.
func jdMatches(cvText, jdText string) map[string]bool {
	matches := make(map[string]bool)

	cvTokens := toSet(longWordRe.FindAllString(strings.ToLower(cvText), -1))

	sentences := sentenceRe.Split(jdText, -1)
	if len(sentences) > maxRequirementSentences {
		sentences = sentences[:maxRequirementSentences]
	}

	for _, sentence := range sentences {
		if len(sentence) <= minRequirementLength {
			continue
		}

		tokens := longWordRe.FindAllString(strings.ToLower(sentence), -1)
		tokenSet := toSet(tokens)
		if len(tokenSet) == 0 {
			matches[requirementKey(sentence)] = false
			continue
		}

		common := 0
		for token := range tokenSet {
			if _, ok := cvTokens[token]; ok {
				common++
			}
		}

		ratio := float64(common) / float64(len(tokenSet))
		matches[requirementKey(sentence)] = ratio >= requirementMatchRatio
	}

	return matches
}

func requirementKey(sentence string) string {
	runes := []rune(sentence)
	if len(runes) > requirementKeyLength {
		runes = runes[:requirementKeyLength]
	}
	return string(runes) + "..."
}

func lowerAll(items []string) []string {
	lowered := make([]string, len(items))
	for i, item := range items {
		lowered[i] = strings.ToLower(item)
	}
	return lowered
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
