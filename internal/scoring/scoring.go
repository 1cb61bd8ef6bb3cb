// Package scoring provides the rule-based scoring primitives used to compare
// a CV against a job description. Every primitive maps its inputs to a score
// in [0,1] and treats empty or missing input as a policy decision rather than
// an error.
package scoring

import (
	"regexp"
	"strings"
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

// EducationKeywords is the fixed keyword set consulted by EducationMatch.
var EducationKeywords = []string{
	"bachelor", "master", "phd", "degree", "diploma", "bsc", "msc", "mba",
}

var (
	wordRe  = regexp.MustCompile(`\b\w+\b`)
	yearsRe = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\+?\s*years?\s*(?:of\s*)?experience`),
		regexp.MustCompile(`(\d+)\+?\s*years?\s*in`),
	}
)

// SkillOverlap scores how many JD-required skills appear in the CV skill set.
// Comparison is case-insensitive. A JD skill without a direct match still
// earns 0.5 when it is a substring of some CV skill or vice versa (first such
// CV skill only). The substring heuristic is known to produce false positives
// for very short skill names; that behavior is intentional and kept as is.
// An empty JD skill set scores 0.
func SkillOverlap(cvSkills, jdSkills []string) float64 {
	jdSet := lowerSet(jdSkills)
	if len(jdSet) == 0 {
		return 0.0
	}

	cvSet := lowerSet(cvSkills)

	direct := 0
	partial := 0.0
	for jdSkill := range jdSet {
		if _, ok := cvSet[jdSkill]; ok {
			direct++
			continue
		}
		for cvSkill := range cvSet {
			if strings.Contains(cvSkill, jdSkill) || strings.Contains(jdSkill, cvSkill) {
				partial += 0.5
				break
			}
		}
	}

	score := (float64(direct) + partial) / float64(len(jdSet))
	return min(score, 1.0)
}

// LexicalSimilarity is the rule-based fallback for semantic similarity: the
// fraction of JD word tokens (stop words removed) that also occur in the CV.
// An empty JD token set scores 0.
func LexicalSimilarity(cvText, jdText string) float64 {
	jdWords := tokenSet(jdText)
	if len(jdWords) == 0 {
		return 0.0
	}

	cvWords := tokenSet(cvText)

	common := 0
	for word := range jdWords {
		if _, ok := cvWords[word]; ok {
			common++
		}
	}

	return min(float64(common)/float64(len(jdWords)), 1.0)
}

// ExperienceMatch compares stated years of experience. A JD without a stated
// requirement earns full credit; a CV without stated years against a concrete
// requirement earns none; otherwise the score is the capped ratio.
func ExperienceMatch(cvText, jdText string) float64 {
	cvYears := extractYears(cvText)
	jdYears := extractYears(jdText)

	if jdYears == 0 {
		return 1.0
	}
	if cvYears == 0 {
		return 0.0
	}

	return min(float64(cvYears)/float64(jdYears), 1.0)
}

// EducationMatch returns the fraction of JD-mentioned education keywords also
// present in the CV. A JD mentioning none earns full credit.
func EducationMatch(cvText, jdText string) float64 {
	cvLower := strings.ToLower(cvText)
	jdLower := strings.ToLower(jdText)

	jdMentions := 0
	matches := 0
	for _, keyword := range EducationKeywords {
		if !strings.Contains(jdLower, keyword) {
			continue
		}
		jdMentions++
		if strings.Contains(cvLower, keyword) {
			matches++
		}
	}

	if jdMentions == 0 {
		return 1.0
	}

	return float64(matches) / float64(jdMentions)
}

func extractYears(text string) int {
	lower := strings.ToLower(text)

	years := 0
	for _, pattern := range yearsRe {
		for _, match := range pattern.FindAllStringSubmatch(lower, -1) {
			value := 0
			for _, digit := range match[1] {
				value = value*10 + int(digit-'0')
			}
			if value > years {
				years = value
			}
		}
	}

	return years
}

func tokenSet(text string) map[string]struct{} {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		if _, stop := stopWords[word]; stop {
			continue
		}
		set[word] = struct{}{}
	}
	return set
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = struct{}{}
	}
	return set
}
