package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/quillflow/quill/pkg/domain"
	"github.com/quillflow/quill/pkg/ports"
)

// Static implements ports.AnalysisProvider with canned responses, routed by
// the shape each system prompt asks for. It backs demos and offline runs.
type Static struct {
	Scan     string
	Summary  string
	KeyTerms string
}

// NewStatic creates a Static provider with plausible default responses
// covering the default clause playbook.
func NewStatic() *Static {
	findings := make([]domain.ClauseFinding, 0, len(domain.DefaultClauses))
	for _, clause := range domain.DefaultClauses {
		findings = append(findings, domain.ClauseFinding{
			Clause:        clause,
			Present:       true,
			Risk:          domain.RiskLow,
			Confidence:    0.8,
			Justification: "standard language detected",
		})
	}
	scan, _ := json.Marshal(domain.ClauseScan{Findings: findings, OverallRisk: domain.RiskLow})
	terms, _ := json.Marshal(map[string]any{
		"key_terms": []domain.KeyTerm{
			{Name: "Term", Value: "24 months", Kind: "obligation"},
			{Name: "Governing Law", Value: "Delaware", Kind: "obligation"},
		},
	})

	return &Static{
		Scan:     string(scan),
		Summary:  "A standard commercial agreement with customary protective clauses and no unusual risk allocation.",
		KeyTerms: string(terms),
	}
}

// Generate routes the prompt to the matching canned response.
func (s *Static) Generate(ctx context.Context, prompt ports.Prompt) (string, error) {
	switch {
	case strings.Contains(prompt.System, `"findings"`):
		return s.Scan, nil
	case strings.Contains(prompt.System, `"key_terms"`):
		return s.KeyTerms, nil
	default:
		return s.Summary, nil
	}
}
