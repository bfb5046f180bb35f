package ports

import (
	"context"

	"github.com/quillflow/quill/pkg/domain"
)

// SessionStore defines the interface for persisting session checkpoints.
// This allows for durable execution, enabling "Stop & Resume" workflows.
type SessionStore interface {
	// Save persists the session snapshot. The write is atomic per session ID.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session for a given ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all known sessions.
	List(ctx context.Context) ([]string, error)
}
