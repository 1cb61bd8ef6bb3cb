// Package batch prioritizes a set of processed documents by urgency and
// computes aggregate metrics for the batch report. It is independent of the
// CV/JD matching pipeline.
package batch

import "sort"

// Issue priorities run from 1 (critical) to 5 (informational).
const (
	PriorityCritical = 1
	PriorityInfo     = 5
)

// Batch status markers, worst condition first.
const (
	StatusCritical     = "CRITICAL ERROR"
	StatusHighPriority = "High Priority"
	StatusComplete     = "Complete"
)

// Issue is a single finding attached to a document.
type Issue struct {
	Priority          int    `mapstructure:"priority" json:"priority"`
	Type              string `mapstructure:"type" json:"type"`
	Detail            string `mapstructure:"detail" json:"detail"`
	RecommendedAction string `mapstructure:"action" json:"action"`
}

// Document is a processed document with its issues and derived urgency
// fields. Construct it with NewDocument; the derived fields are computed once
// and the document is treated as immutable afterwards.
type Document struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Party     string  `json:"party"`
	Amount    float64 `json:"amount"`
	RiskScore int     `json:"risk_score"`
	Issues    []Issue `json:"issues"`

	// Derived at construction.
	HasAction        bool   `json:"has_action"`
	MaxIssuePriority int    `json:"max_issue_priority"`
	PrimaryAction    string `json:"primary_action"`
	Status           string `json:"status"`
}

// NewDocument builds a Document and computes its derived fields. Callers that
// mutate Issues afterwards must rebuild the document.
func NewDocument(id, docType, party string, amount float64, riskScore int, issues []Issue) *Document {
	doc := &Document{
		ID:        id,
		Type:      docType,
		Party:     party,
		Amount:    amount,
		RiskScore: riskScore,
		Issues:    issues,
	}

	doc.HasAction = len(issues) > 0
	doc.MaxIssuePriority = PriorityInfo
	for _, issue := range issues {
		if issue.Priority < doc.MaxIssuePriority {
			doc.MaxIssuePriority = issue.Priority
		}
	}

	doc.PrimaryAction = primaryAction(issues)
	doc.Status = documentStatus(doc)

	return doc
}

// primaryAction is the concise label of the most urgent issue.
func primaryAction(issues []Issue) string {
	if len(issues) == 0 {
		return "None (Auto-Approved)"
	}

	top := issues[0]
	for _, issue := range issues[1:] {
		if issue.Priority < top.Priority {
			top = issue
		}
	}

	switch top.Priority {
	case 1:
		return "Reject / Escalate"
	case 2:
		return "Manual Review"
	case 3:
		return "Verify Data"
	default:
		return "Acknowledge"
	}
}

func documentStatus(doc *Document) string {
	switch {
	case doc.MaxIssuePriority <= 2:
		return "Error"
	case doc.HasAction:
		return "Pending"
	default:
		return "Complete"
	}
}

// Sort orders documents by urgency, most urgent first: documents needing
// action before those that do not, then by most urgent issue priority
// (1 first), then by descending risk score, with the document id as a final
// deterministic tie-break. The input slice is not modified.
func Sort(docs []*Document) []*Document {
	sorted := make([]*Document, len(docs))
	copy(sorted, docs)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]

		if a.HasAction != b.HasAction {
			return a.HasAction
		}
		if a.MaxIssuePriority != b.MaxIssuePriority {
			return a.MaxIssuePriority < b.MaxIssuePriority
		}
		if a.RiskScore != b.RiskScore {
			return a.RiskScore > b.RiskScore
		}
		return a.ID < b.ID
	})

	return sorted
}

// Metrics are the aggregate figures for a batch dashboard.
type Metrics struct {
	TotalDocuments int     `json:"total_documents"`
	DocsWithAction int     `json:"docs_with_action"`
	TotalIssues    int     `json:"total_issues"`
	AvgRiskScore   float64 `json:"avg_risk_score"`
	CriticalErrors int     `json:"critical_errors"`
	BatchStatus    string  `json:"batch_status"`
}

// ComputeMetrics aggregates batch figures. The batch status reflects the
// worst observed condition: critical issues, then any pending action, then
// complete.
func ComputeMetrics(docs []*Document) Metrics {
	metrics := Metrics{
		TotalDocuments: len(docs),
		BatchStatus:    StatusComplete,
	}

	totalRisk := 0
	for _, doc := range docs {
		if doc.HasAction {
			metrics.DocsWithAction++
		}
		metrics.TotalIssues += len(doc.Issues)
		totalRisk += doc.RiskScore
		if doc.MaxIssuePriority == PriorityCritical {
			metrics.CriticalErrors++
		}
	}

	if metrics.TotalDocuments > 0 {
		metrics.AvgRiskScore = float64(totalRisk) / float64(metrics.TotalDocuments)
	}

	switch {
	case metrics.CriticalErrors > 0:
		metrics.BatchStatus = StatusCritical
	case metrics.DocsWithAction > 0:
		metrics.BatchStatus = StatusHighPriority
	}

	return metrics
}
