package gemini

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

//go:embed prompt_similarity.md
var similarityPromptTemplate string

//go:embed prompt_skill_gap.md
var skillGapPromptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Models() []string
}

const (
	// maxExcerptRunes bounds the document excerpt embedded in a prompt.
	maxExcerptRunes = 2000
	// maxSkillsPerSide bounds the skill lists embedded in a prompt.
	maxSkillsPerSide = 50
	// neutralSimilarity is returned when a model responds but its output
	// cannot be parsed even after the fallback attempt.
	neutralSimilarity = 0.5

	defaultMaxLogLength = 200
)

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Scorer implements ai.Scorer on top of a Gemini content generator.
//
// Transport failures across the whole model list surface as errors so the
// caller can fall back to rule-based scoring. A reachable model whose output
// is malformed yields neutral defaults instead: 0.5 similarity, empty gap
// list.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewScorer creates a Scorer. A zero maxLogLength selects the default
// preview size for prompt/response debug logging.
func NewScorer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	model := ""
	if models := generator.Models(); len(models) > 0 {
		model = models[0]
	}

	return &Scorer{
		generator: generator,
		logger:    logger.WithAIFields(log, "gemini", model),
		maxLogLen: maxLogLength,
	}
}

// SemanticSimilarity asks the model to rate CV/JD fit as a number in [0,1].
func (s *Scorer) SemanticSimilarity(ctx context.Context, cvText, jdText string) (float64, error) {
	prompt := strings.ReplaceAll(similarityPromptTemplate, "{{CV_TEXT}}", excerpt(cvText))
	prompt = strings.ReplaceAll(prompt, "{{JD_TEXT}}", excerpt(jdText))

	raw, err := s.generate(ctx, "semantic similarity", prompt)
	if err != nil {
		return 0, err
	}

	score, ok := parseScore(raw)
	if !ok {
		s.logger.Warn("unparseable similarity response, using neutral default",
			zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
		)
		return neutralSimilarity, nil
	}

	return clamp01(score), nil
}

// SkillGapAnalysis asks the model for a prioritized list of missing skills.
// Malformed output yields an empty list so the caller can derive gaps by rule.
func (s *Scorer) SkillGapAnalysis(ctx context.Context, cvSkills, jdSkills []string) ([]ai.SkillGap, error) {
	prompt := strings.ReplaceAll(skillGapPromptTemplate, "{{CV_SKILLS}}", joinSkills(cvSkills))
	prompt = strings.ReplaceAll(prompt, "{{JD_SKILLS}}", joinSkills(jdSkills))

	raw, err := s.generate(ctx, "skill gap analysis", prompt)
	if err != nil {
		return nil, err
	}

	gaps := parseGaps(raw)
	if gaps == nil {
		s.logger.Warn("unparseable skill gap response, using empty list",
			zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
		)
	}

	return gaps, nil
}

func (s *Scorer) generate(ctx context.Context, operation, prompt string) (string, error) {
	s.logger.Debug("gemini request",
		zap.String("operation", operation),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	s.logger.Debug("gemini response",
		zap.String("operation", operation),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
	)

	return raw, nil
}

func parseScore(raw string) (float64, bool) {
	cleaned := stripFences(raw)

	match := numberRe.FindString(cleaned)
	if match == "" {
		return 0, false
	}

	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}

	return score, true
}

func parseGaps(raw string) []ai.SkillGap {
	cleaned := stripFences(raw)

	parsed := gjson.Parse(cleaned)
	if !parsed.IsArray() {
		return nil
	}

	gaps := make([]ai.SkillGap, 0)
	parsed.ForEach(func(_, item gjson.Result) bool {
		skill := strings.TrimSpace(item.Get("skill").String())
		if skill == "" {
			return true
		}

		gap := ai.SkillGap{
			Skill:    skill,
			Priority: normalizePriority(item.Get("priority").String()),
			Reason:   strings.TrimSpace(item.Get("reason").String()),
		}

		for _, suggestion := range item.Get("suggestions").Array() {
			if text := strings.TrimSpace(suggestion.String()); text != "" {
				gap.Suggestions = append(gap.Suggestions, text)
			}
		}

		gaps = append(gaps, gap)
		return true
	})

	return gaps
}

func normalizePriority(priority string) string {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "high":
		return ai.PriorityHigh
	case "low":
		return ai.PriorityLow
	default:
		return ai.PriorityMedium
	}
}

// stripFences removes markdown code fences around a model payload.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func excerpt(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= maxExcerptRunes {
		return text
	}
	return string(runes[:maxExcerptRunes])
}

func joinSkills(skills []string) string {
	if len(skills) > maxSkillsPerSide {
		skills = skills[:maxSkillsPerSide]
	}
	return strings.Join(skills, ", ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
