package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillflow/quill/pkg/domain"
)

func TestFingerprintDeterminism(t *testing.T) {
	params := domain.AnalysisParams{
		Clauses:      []string{"Confidentiality", "Governing Law"},
		RiskAppetite: "low",
		Regulations:  []string{"GDPR"},
	}

	a := Fingerprint(kindClauseScan, "document body", params)
	b := Fingerprint(kindClauseScan, "document body", params)
	assert.Equal(t, a, b)
}

func TestFingerprintOrderIndependence(t *testing.T) {
	a := Fingerprint(kindClauseScan, "doc", domain.AnalysisParams{
		Clauses:     []string{"Governing Law", "Confidentiality"},
		Regulations: []string{"GDPR", "CCPA"},
	})
	b := Fingerprint(kindClauseScan, "doc", domain.AnalysisParams{
		Clauses:     []string{"Confidentiality", "Governing Law"},
		Regulations: []string{"CCPA", "GDPR"},
	})
	assert.Equal(t, a, b)
}

func TestFingerprintSensitivity(t *testing.T) {
	base := domain.AnalysisParams{Clauses: []string{"Confidentiality"}}

	doc := Fingerprint(kindClauseScan, "doc", base)

	assert.NotEqual(t, doc, Fingerprint(kindSummary, "doc", base), "kind is part of the key")
	assert.NotEqual(t, doc, Fingerprint(kindClauseScan, "other doc", base))
	assert.NotEqual(t, doc, Fingerprint(kindClauseScan, "doc", domain.AnalysisParams{
		Clauses:      []string{"Confidentiality"},
		RiskAppetite: "high",
	}))
}

func TestFingerprintFieldBoundaries(t *testing.T) {
	// Length-prefixing must keep adjacent fields from bleeding into each other.
	a := Fingerprint("k", "ab", domain.AnalysisParams{Clauses: []string{"c"}})
	b := Fingerprint("k", "a", domain.AnalysisParams{Clauses: []string{"bc"}})
	assert.NotEqual(t, a, b)
}
