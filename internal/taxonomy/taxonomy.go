package taxonomy

import (
	"regexp"
	"strings"
	"unicode"
)

// vocabulary is the fixed set of recognized skill labels. Order matters: the
// extraction output preserves first-seen order, which for the direct scan is
// the order below.
var vocabulary = []string{
	// Programming languages
	"python", "java", "javascript", "typescript", "c++", "c#", "go", "rust", "ruby", "php",
	"swift", "kotlin", "scala", "r", "matlab", "perl", "shell", "bash",

	// Web technologies
	"html", "css", "react", "angular", "vue", "node.js", "express", "django", "flask",
	"spring", "asp.net", "laravel", "rails", "next.js", "nuxt",

	// Databases
	"sql", "mysql", "postgresql", "mongodb", "redis", "oracle", "sqlite", "cassandra",
	"elasticsearch", "dynamodb", "neo4j",

	// Cloud & devops
	"aws", "azure", "gcp", "docker", "kubernetes", "jenkins", "git", "ci/cd", "terraform",
	"ansible", "chef", "puppet", "linux", "unix",

	// Data science & ML
	"machine learning", "deep learning", "tensorflow", "pytorch", "keras", "scikit-learn",
	"pandas", "numpy", "data analysis", "data visualization", "tableau", "power bi",
	"statistics", "nlp", "computer vision",

	// Mobile
	"android", "ios", "react native", "flutter", "xamarin",

	// Soft skills
	"agile", "scrum", "project management", "leadership", "communication", "teamwork",
	"problem solving", "analytical thinking", "time management",
}

var educationKeywords = []string{
	"bachelor", "master", "phd", "doctorate", "degree", "diploma", "certification",
	"bsc", "msc", "mba", "ba", "ma",
}

var (
	skillPatterns    = compilePatterns(vocabulary)
	vocabularySet    = toSet(vocabulary)
	skillsSectionRe  = regexp.MustCompile(`(?i)skills?[:\-]?\s*([^.\n]+)`)
	sectionDelimiter = regexp.MustCompile("[,;|•\\-\n]")
	eduSectionRe     = regexp.MustCompile(`(?i)education[:\-]?\s*([^.\n]+)`)
	eduPatterns      = compilePatterns(educationKeywords)
	yearsPatterns    = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\+?\s*years?\s*(?:of\s*)?experience`),
		regexp.MustCompile(`(\d+)\+?\s*years?\s*in`),
		regexp.MustCompile(`experience[:\-]?\s*(\d+)\+?\s*years?`),
	}
)

func compilePatterns(entries []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(entries))
	for i, entry := range entries {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(entry) + `\b`)
	}
	return patterns
}

func toSet(entries []string) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		set[entry] = struct{}{}
	}
	return set
}

// Extract returns the known skills found in the text. It scans the whole text
// against the vocabulary with word-boundary matching, then re-scans the
// delimited tokens of a "skills:"-style section. Labels are title-cased and
// deduplicated case-insensitively, preserving first-seen order. Unknown text
// yields an empty result, never an error.
func Extract(text string) []string {
	lower := strings.ToLower(text)

	found := make([]string, 0)
	seen := make(map[string]struct{})

	for i, pattern := range skillPatterns {
		if pattern.MatchString(lower) {
			skill := vocabulary[i]
			if _, ok := seen[skill]; !ok {
				seen[skill] = struct{}{}
				found = append(found, Title(skill))
			}
		}
	}

	if section := skillsSectionRe.FindStringSubmatch(lower); section != nil {
		for _, token := range sectionDelimiter.Split(section[1], -1) {
			token = strings.TrimSpace(token)
			if len(token) <= 2 {
				continue
			}
			if _, ok := vocabularySet[token]; !ok {
				continue
			}
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			found = append(found, Title(token))
		}
	}

	return found
}

// ExtractEducation returns education mentions: the labeled education section,
// if any, followed by short context snippets around each education keyword.
func ExtractEducation(text string) []string {
	lower := strings.ToLower(text)

	education := make([]string, 0)
	if section := eduSectionRe.FindStringSubmatch(lower); section != nil {
		education = append(education, strings.TrimSpace(section[1]))
	}

	for _, pattern := range eduPatterns {
		for _, loc := range pattern.FindAllStringIndex(lower, -1) {
			start := max(0, loc[0]-50)
			end := min(len(text), loc[1]+50)
			context := strings.TrimSpace(text[start:end])
			if context != "" && !contains(education, context) {
				education = append(education, context)
			}
		}
	}

	return education
}

// ExtractExperienceYears returns the largest stated years-of-experience figure
// in the text, or 0 when none is stated.
func ExtractExperienceYears(text string) int {
	lower := strings.ToLower(text)

	years := 0
	for _, pattern := range yearsPatterns {
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

// Title renders a label in title case: the first letter of every word is
// uppercased, the rest lowercased. Word boundaries are non-letter characters,
// so "node.js" becomes "Node.Js" and "ci/cd" becomes "Ci/Cd".
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}

	return b.String()
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
