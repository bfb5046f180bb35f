package ports

import (
	"context"

	"github.com/quillflow/quill/pkg/domain"
)

// Signer executes the document signing step for an approved session.
// Implementations must be idempotent per session ID.
type Signer interface {
	Sign(ctx context.Context, sessionID, userID string) (*domain.SigningResult, error)
}

// Scheduler books the review meeting for a signed document.
// Implementations must be idempotent per session ID.
type Scheduler interface {
	Schedule(ctx context.Context, sessionID, meetingDate string) (*domain.SchedulingResult, error)
}
