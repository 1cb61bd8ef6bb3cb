package match

import "regexp"

// SectionLocator finds labeled spans in a CV. It is a pluggable strategy so
// the regex heuristic below can later be replaced by a real document parser
// without touching scoring logic.
type SectionLocator interface {
	// Sections returns the section names the locator knows about, in
	// report order.
	Sections() []string
	// Locate returns the text span found for each section. Sections with
	// no located span are absent from the map.
	Locate(text string) map[string]string
}

type sectionPattern struct {
	name    string
	pattern *regexp.Regexp
}

// regexSectionLocator is the default heuristic: a labeled span starts at a
// header keyword and runs to the end of the sentence or line. Education and
// summary sections are declared but have no reliable header heuristic yet,
// so they are never located and always contribute zero.
type regexSectionLocator struct {
	sections []sectionPattern
}

// NewRegexSectionLocator returns the default regex-based locator.
func NewRegexSectionLocator() SectionLocator {
	return &regexSectionLocator{
		sections: []sectionPattern{
			{name: "Skills Section", pattern: regexp.MustCompile(`(?i)skills?[:\-]?\s*([^.\n]+)`)},
			{name: "Experience Section", pattern: regexp.MustCompile(`(?i)experience[:\-]?\s*([^.\n]+)`)},
			{name: "Education Section"},
			{name: "Summary Section"},
		},
	}
}

func (l *regexSectionLocator) Sections() []string {
	names := make([]string, len(l.sections))
	for i, section := range l.sections {
		names[i] = section.name
	}
	return names
}

func (l *regexSectionLocator) Locate(text string) map[string]string {
	spans := make(map[string]string)
	for _, section := range l.sections {
		if section.pattern == nil {
			continue
		}
		if match := section.pattern.FindStringSubmatch(text); match != nil {
			spans[section.name] = match[1]
		}
	}
	return spans
}
