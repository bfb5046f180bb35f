// Package local provides in-process implementations of the signing and
// scheduling collaborators. They simulate the external services and are
// idempotent per session, which keeps retried stages safe.
package local

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/quillflow/quill/pkg/domain"
)

// Signer implements ports.Signer with a deterministic simulated signature.
type Signer struct {
	mu     sync.Mutex
	signed map[string]*domain.SigningResult
}

// NewSigner creates a simulated signer.
func NewSigner() *Signer {
	return &Signer{signed: make(map[string]*domain.SigningResult)}
}

// Sign records a signature for the session. Repeated calls for the same
// session return the original record.
func (s *Signer) Sign(ctx context.Context, sessionID, userID string) (*domain.SigningResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res, ok := s.signed[sessionID]; ok {
		r := *res
		return &r, nil
	}

	sum := sha256.Sum256([]byte(sessionID + ":" + userID))
	res := &domain.SigningResult{
		SignatureID: "sig-" + hex.EncodeToString(sum[:8]),
		Signer:      userID,
		SignedAt:    time.Now().UTC(),
		Signed:      true,
	}
	s.signed[sessionID] = res

	r := *res
	return &r, nil
}
