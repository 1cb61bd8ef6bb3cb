// Package report renders match results and batch summaries into flat output
// formats. Renderers only read the records they are given; no scoring happens
// here.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spigell/cv-matcher/internal/batch"
	"github.com/spigell/cv-matcher/internal/match"
)

// componentOrder fixes the rendering order of the score breakdown.
var componentOrder = []string{
	match.ComponentSkillOverlap,
	match.ComponentSemanticSimilarity,
	match.ComponentExperienceMatch,
	match.ComponentEducationMatch,
}

// NewID returns a fresh report identifier.
func NewID() string {
	return uuid.NewString()
}

// MatchCSV renders a match result as CSV: a summary section, the score
// breakdown, matched skills, and one detail row per missing skill.
func MatchCSV(result *match.Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"section", "field", "value"},
		{"summary", "match_score", fmt.Sprintf("%.2f", result.MatchScore)},
		{"summary", "skills_matched", fmt.Sprintf("%d", result.SkillsMatched)},
		{"summary", "total_required_skills", fmt.Sprintf("%d", result.TotalRequiredSkills)},
		{"summary", "ai_assisted", fmt.Sprintf("%t", result.AIAssisted)},
	}

	for _, component := range componentOrder {
		records = append(records, []string{
			"score_breakdown", component, fmt.Sprintf("%.2f", result.ScoreBreakdown[component]),
		})
	}

	for _, skill := range result.MatchedSkills {
		records = append(records, []string{"matched_skill", skill, ""})
	}

	for _, gap := range result.MissingSkills {
		records = append(records, []string{
			"missing_skill", gap.Skill,
			fmt.Sprintf("priority=%s; reason=%s; suggestions=%s",
				gap.Priority, gap.Reason, strings.Join(gap.Suggestions, " | ")),
		})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("writing csv: %w", err)
	}

	return buf.Bytes(), nil
}

// MatchMarkdown renders a match result as a Markdown report.
func MatchMarkdown(reportID string, result *match.Result) string {
	if strings.TrimSpace(reportID) == "" {
		reportID = NewID()
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# CV Match Report %s\n\n", reportID)
	fmt.Fprintf(&b, "**Match score: %.2f / 100**\n\n", result.MatchScore)
	fmt.Fprintf(&b, "Skills matched: %d of %d required.\n\n", result.SkillsMatched, result.TotalRequiredSkills)

	b.WriteString("## Score breakdown\n\n")
	b.WriteString("| Component | Score |\n|---|---|\n")
	for _, component := range componentOrder {
		fmt.Fprintf(&b, "| %s | %.2f%% |\n", component, result.ScoreBreakdown[component])
	}
	b.WriteString("\n")

	if len(result.MatchedSkills) > 0 {
		b.WriteString("## Matched skills\n\n")
		for _, skill := range result.MatchedSkills {
			fmt.Fprintf(&b, "- %s\n", skill)
		}
		b.WriteString("\n")
	}

	if len(result.MissingSkills) > 0 {
		b.WriteString("## Missing skills\n\n")
		for _, gap := range result.MissingSkills {
			fmt.Fprintf(&b, "### %s (%s)\n\n%s\n\n", gap.Skill, gap.Priority, gap.Reason)
			for _, suggestion := range gap.Suggestions {
				fmt.Fprintf(&b, "- %s\n", suggestion)
			}
			b.WriteString("\n")
		}
	}

	if len(result.CVContributions) > 0 {
		b.WriteString("## CV section contributions\n\n")
		for _, name := range sortedKeys(result.CVContributions) {
			fmt.Fprintf(&b, "- %s: %.1f%%\n", name, result.CVContributions[name])
		}
		b.WriteString("\n")
	}

	if len(result.JDMatches) > 0 {
		b.WriteString("## Requirement coverage\n\n")
		for _, sentence := range sortedBoolKeys(result.JDMatches) {
			marker := "MISSING"
			if result.JDMatches[sentence] {
				marker = "covered"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", marker, sentence)
		}
	}

	return b.String()
}

// BatchMarkdown renders the prioritized batch table with its metrics header.
// Documents are rendered in the order given; callers sort first.
func BatchMarkdown(batchID string, docs []*batch.Document, metrics batch.Metrics) string {
	if strings.TrimSpace(batchID) == "" {
		batchID = NewID()
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# Batch Report %s\n\n", batchID)
	fmt.Fprintf(&b, "Status: **%s**\n\n", metrics.BatchStatus)
	fmt.Fprintf(&b, "- Documents: %d (%d need action)\n", metrics.TotalDocuments, metrics.DocsWithAction)
	fmt.Fprintf(&b, "- Issues: %d (%d critical)\n", metrics.TotalIssues, metrics.CriticalErrors)
	fmt.Fprintf(&b, "- Average risk score: %.0f / 100\n\n", metrics.AvgRiskScore)

	b.WriteString("| ID | Type | Party | Risk | Status | Primary action |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, doc := range docs {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s |\n",
			doc.ID, doc.Type, doc.Party, doc.RiskScore, doc.Status, doc.PrimaryAction)
	}

	return b.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedBoolKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
