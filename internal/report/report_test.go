package report

import (
	"strings"
	"testing"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/batch"
	"github.com/spigell/cv-matcher/internal/match"
)

func sampleResult() *match.Result {
	return &match.Result{
		MatchScore:          72.5,
		SkillsMatched:       2,
		TotalRequiredSkills: 3,
		MatchedSkills:       []string{"Python", "Sql"},
		MissingSkills: []ai.SkillGap{{
			Skill:       "Aws",
			Priority:    ai.PriorityHigh,
			Reason:      "Required skill 'aws' not found in CV",
			Suggestions: []string{"Consider learning aws"},
		}},
		ScoreBreakdown: map[string]float64{
			match.ComponentSkillOverlap:       66.67,
			match.ComponentSemanticSimilarity: 80.0,
			match.ComponentExperienceMatch:    60.0,
			match.ComponentEducationMatch:     100.0,
		},
		CVContributions: map[string]float64{"Skills Section": 40.0},
		JDMatches:       map[string]bool{"We need Python...": true},
	}
}

func TestMatchCSV(t *testing.T) {
	data, err := MatchCSV(sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := string(data)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "section,field,value" {
		t.Fatalf("unexpected header: %q", lines[0])
	}

	if !strings.Contains(out, "summary,match_score,72.50") {
		t.Fatalf("missing summary row:\n%s", out)
	}
	if !strings.Contains(out, "score_breakdown,skill_overlap,66.67") {
		t.Fatalf("missing breakdown row:\n%s", out)
	}
	if !strings.Contains(out, "matched_skill,Python,") {
		t.Fatalf("missing matched skill row:\n%s", out)
	}
	if !strings.Contains(out, "missing_skill,Aws") {
		t.Fatalf("missing gap row:\n%s", out)
	}
}

func TestMatchMarkdown(t *testing.T) {
	out := MatchMarkdown("test-report", sampleResult())

	for _, want := range []string{
		"# CV Match Report test-report",
		"**Match score: 72.50 / 100**",
		"| semantic_similarity | 80.00% |",
		"- Python",
		"### Aws (High)",
		"- Consider learning aws",
		"[covered] We need Python...",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}

func TestMatchMarkdownGeneratesID(t *testing.T) {
	out := MatchMarkdown("  ", sampleResult())
	if strings.Contains(out, "# CV Match Report \n") {
		t.Fatalf("expected generated id in title")
	}
}

func TestBatchMarkdown(t *testing.T) {
	docs := batch.Sort([]*batch.Document{
		batch.NewDocument("INV-2", "Invoice", "Globex", 10, 20, nil),
		batch.NewDocument("INV-1", "Invoice", "Acme", 99, 90, []batch.Issue{{Priority: 1}}),
	})
	metrics := batch.ComputeMetrics(docs)

	out := BatchMarkdown("batch-7", docs, metrics)

	if !strings.Contains(out, "# Batch Report batch-7") {
		t.Fatalf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "Status: **CRITICAL ERROR**") {
		t.Fatalf("missing status:\n%s", out)
	}

	// Sorted order: the critical document renders first.
	if strings.Index(out, "INV-1") > strings.Index(out, "INV-2") {
		t.Fatalf("expected INV-1 before INV-2:\n%s", out)
	}
	if !strings.Contains(out, "| INV-1 | Invoice | Acme | 90 | Error | Reject / Escalate |") {
		t.Fatalf("missing table row:\n%s", out)
	}
}
