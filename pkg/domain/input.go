package domain

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// HumanInput is the payload a caller supplies when resuming a paused session.
// Exactly the fields relevant to the pending InputKind are consulted.
type HumanInput struct {
	Approved    *bool  `json:"approved,omitempty" mapstructure:"approved"`
	MeetingDate string `json:"meeting_date,omitempty" mapstructure:"meeting_date"`
}

// DecodeHumanInput builds a HumanInput from a loose JSON-decoded map.
func DecodeHumanInput(raw map[string]any) (*HumanInput, error) {
	var input HumanInput
	if err := mapstructure.Decode(raw, &input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &input, nil
}

// Validate checks the input against the interrupt kind the session is paused on.
func (h *HumanInput) Validate(kind InputKind) error {
	switch kind {
	case InputApproval:
		if h.Approved == nil {
			return fmt.Errorf("%w: approval decision requires an 'approved' boolean", ErrInvalidInput)
		}
	case InputMeetingDate:
		if h.MeetingDate == "" {
			return fmt.Errorf("%w: 'meeting_date' is required", ErrInvalidInput)
		}
		if _, err := time.Parse("2006-01-02", h.MeetingDate); err != nil {
			return fmt.Errorf("%w: meeting_date must be YYYY-MM-DD", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown input kind %q", ErrInvalidInput, kind)
	}
	return nil
}

// MergeInto writes the field matching the pending interrupt kind onto the
// session. Fields for other interrupts are ignored: each one validates and
// consumes its own input when its turn comes.
func (h *HumanInput) MergeInto(s *Session, kind InputKind) {
	switch kind {
	case InputApproval:
		if h.Approved != nil {
			v := *h.Approved
			s.Approved = &v
		}
	case InputMeetingDate:
		if h.MeetingDate != "" {
			s.MeetingDate = h.MeetingDate
		}
	}
}
