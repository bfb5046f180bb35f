package domain

import "sort"

// DefaultClauses is the playbook clause list scanned when a request supplies none.
var DefaultClauses = []string{
	"Confidentiality",
	"Limitation of Liability",
	"Governing Law",
	"Termination for Cause",
	"Indemnification",
	"Intellectual Property",
	"Dispute Resolution",
	"Force Majeure",
}

// AnalysisParams carries every input that influences an analysis result.
// Two parameter sets that differ only in list ordering are equivalent.
type AnalysisParams struct {
	Clauses          []string `json:"clauses,omitempty" mapstructure:"clauses"`
	RiskAppetite     string   `json:"risk_appetite,omitempty" mapstructure:"risk_appetite"`
	CounterpartyType string   `json:"counterparty_type,omitempty" mapstructure:"counterparty_type"`
	Regulations      []string `json:"regulations,omitempty" mapstructure:"regulations"`
	PlaybookRules    []string `json:"playbook_rules,omitempty" mapstructure:"playbook_rules"`
	PolicyText       string   `json:"policy_text,omitempty" mapstructure:"policy_text"`
}

// Normalized returns a copy with list-valued fields sorted and defaults filled,
// so that logically identical parameter sets fingerprint identically.
func (p AnalysisParams) Normalized() AnalysisParams {
	c := p.clone()
	if len(c.Clauses) == 0 {
		c.Clauses = append([]string(nil), DefaultClauses...)
	}
	sort.Strings(c.Clauses)
	sort.Strings(c.Regulations)
	sort.Strings(c.PlaybookRules)
	return c
}

func (p AnalysisParams) clone() AnalysisParams {
	c := p
	c.Clauses = append([]string(nil), p.Clauses...)
	c.Regulations = append([]string(nil), p.Regulations...)
	c.PlaybookRules = append([]string(nil), p.PlaybookRules...)
	return c
}
