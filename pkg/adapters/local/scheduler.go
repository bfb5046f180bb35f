package local

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/quillflow/quill/pkg/domain"
)

// Scheduler implements ports.Scheduler with a simulated confirmed booking.
type Scheduler struct {
	mu       sync.Mutex
	bookings map[string]*domain.SchedulingResult
}

// NewScheduler creates a simulated scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{bookings: make(map[string]*domain.SchedulingResult)}
}

// Schedule books the review meeting. Repeated calls for the same session
// return the original booking.
func (s *Scheduler) Schedule(ctx context.Context, sessionID, meetingDate string) (*domain.SchedulingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res, ok := s.bookings[sessionID]; ok {
		r := *res
		return &r, nil
	}

	sum := sha256.Sum256([]byte(sessionID + ":" + meetingDate))
	res := &domain.SchedulingResult{
		BookingID:   "mtg-" + hex.EncodeToString(sum[:8]),
		MeetingDate: meetingDate,
		Confirmed:   true,
		BookedAt:    time.Now().UTC(),
	}
	s.bookings[sessionID] = res

	r := *res
	return &r, nil
}
