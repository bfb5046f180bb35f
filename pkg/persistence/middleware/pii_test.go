package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillflow/quill/pkg/adapters/memory"
	"github.com/quillflow/quill/pkg/domain"
)

const emailPattern = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`

func TestPIIMasksPersistedDocument(t *testing.T) {
	backing := memory.NewStore()
	store := NewPIIMiddleware([]string{emailPattern})(backing)
	ctx := context.Background()

	s := domain.NewSession("s1", "user-1")
	s.DocumentText = "Notices go to legal@acme.example and cfo@example.org."
	require.NoError(t, store.Save(ctx, s))

	stored, err := backing.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Notices go to *** and ***.", stored.DocumentText)

	// The engine's in-memory session is untouched.
	assert.Contains(t, s.DocumentText, "legal@acme.example")
}

func TestPIIMasksAnalysisCitations(t *testing.T) {
	backing := memory.NewStore()
	store := NewPIIMiddleware([]string{emailPattern})(backing)
	ctx := context.Background()

	s := domain.NewSession("s1", "user-1")
	s.RiskAssessment = &domain.RiskAssessment{
		ClauseScan: &domain.ClauseScan{
			Findings: []domain.ClauseFinding{{
				Clause:        "Confidentiality",
				Present:       true,
				Justification: "notice clause names legal@acme.example",
				CitedText:     "send notices to legal@acme.example",
			}},
			OverallRisk: domain.RiskLow,
		},
		Risk: domain.RiskLow,
	}
	require.NoError(t, store.Save(ctx, s))

	stored, err := backing.Load(ctx, "s1")
	require.NoError(t, err)
	finding := stored.RiskAssessment.ClauseScan.Findings[0]
	assert.Equal(t, "notice clause names ***", finding.Justification)
	assert.Equal(t, "send notices to ***", finding.CitedText)
}

func TestPIIChainsWithEncryption(t *testing.T) {
	backing := memory.NewStore()
	// Masking runs before encryption so the ciphertext never contains PII.
	store := NewPIIMiddleware([]string{emailPattern})(
		NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey(1)})(backing),
	)
	ctx := context.Background()

	s := domain.NewSession("s1", "user-1")
	s.DocumentText = "contact legal@acme.example"
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "contact ***", loaded.DocumentText)
}
