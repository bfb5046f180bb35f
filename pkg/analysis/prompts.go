package analysis

import (
	"fmt"
	"strings"

	"github.com/quillflow/quill/pkg/domain"
	"github.com/quillflow/quill/pkg/ports"
)

// Sub-analysis kinds. Each kind has its own prompt and fingerprint namespace.
const (
	kindClauseScan = "clause_scan"
	kindSummary    = "summary"
	kindKeyTerms   = "key_terms"
)

const scanSystemPrompt = `You are a contract review assistant. Respond with JSON only, matching this shape:
{"findings":[{"clause":"...","present":true,"risk":"low|medium|high","confidence":0.0,"justification":"...","cited_text":"..."}],"overall_risk":"low|medium|high"}`

const summarySystemPrompt = `You are a contract review assistant. Write a concise executive summary of the document in plain prose. No markdown, no JSON.`

const keyTermsSystemPrompt = `You are a contract review assistant. Respond with JSON only, matching this shape:
{"key_terms":[{"name":"...","value":"...","kind":"party|date|amount|obligation"}]}`

func scanPrompt(document string, p domain.AnalysisParams) ports.Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Review the document for these clauses: %s.\n", strings.Join(p.Clauses, ", "))
	if p.RiskAppetite != "" {
		fmt.Fprintf(&b, "Risk appetite: %s.\n", p.RiskAppetite)
	}
	if p.CounterpartyType != "" {
		fmt.Fprintf(&b, "Counterparty type: %s.\n", p.CounterpartyType)
	}
	if len(p.Regulations) > 0 {
		fmt.Fprintf(&b, "Applicable regulations: %s.\n", strings.Join(p.Regulations, ", "))
	}
	if len(p.PlaybookRules) > 0 {
		fmt.Fprintf(&b, "Playbook rules:\n- %s\n", strings.Join(p.PlaybookRules, "\n- "))
	}
	if p.PolicyText != "" {
		fmt.Fprintf(&b, "Company policy:\n%s\n", p.PolicyText)
	}
	fmt.Fprintf(&b, "\nDocument:\n%s", document)

	return ports.Prompt{System: scanSystemPrompt, User: b.String()}
}

func summaryPrompt(document string, p domain.AnalysisParams) ports.Prompt {
	var b strings.Builder
	b.WriteString("Summarize the document for an executive audience.\n")
	if p.CounterpartyType != "" {
		fmt.Fprintf(&b, "Counterparty type: %s.\n", p.CounterpartyType)
	}
	fmt.Fprintf(&b, "\nDocument:\n%s", document)

	return ports.Prompt{System: summarySystemPrompt, User: b.String()}
}

func keyTermsPrompt(document string, p domain.AnalysisParams) ports.Prompt {
	return ports.Prompt{
		System: keyTermsSystemPrompt,
		User:   fmt.Sprintf("Extract the key terms from the document.\n\nDocument:\n%s", document),
	}
}
