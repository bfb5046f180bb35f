package domain

import (
	"time"
)

// Stage identifies one node of the workflow graph.
type Stage string

const (
	StageAnalyze          Stage = "analyze"
	StageAwaitApproval    Stage = "await_approval"
	StageSign             Stage = "sign"
	StageAwaitMeetingDate Stage = "await_meeting_date"
	StageSchedule         Stage = "schedule"
	StageReject           Stage = "reject"
	StageComplete         Stage = "complete"
)

// InputKind tags the kind of human input a paused session is waiting for.
type InputKind string

const (
	InputApproval    InputKind = "approval"
	InputMeetingDate InputKind = "meeting_date"
)

// FinalStatus is the terminal outcome of a workflow.
type FinalStatus string

const (
	StatusSuccess  FinalStatus = "SUCCESS"
	StatusFailed   FinalStatus = "FAILED"
	StatusRejected FinalStatus = "REJECTED"
)

// Session is the unit of work: one end-to-end document approval flow.
// It is mutated exclusively by the engine through stage patches.
type Session struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	PageCount   int    `json:"page_count,omitempty"`

	// DocumentText is the extracted text; persisted so a resumed session can
	// re-run analysis stages without the original upload.
	DocumentText   string          `json:"document_text,omitempty"`
	AnalysisParams *AnalysisParams `json:"analysis_params,omitempty"`

	RiskAssessment   *RiskAssessment   `json:"risk_assessment,omitempty"`
	Approved         *bool             `json:"approved,omitempty"`
	MeetingDate      string            `json:"meeting_date,omitempty"`
	SigningResult    *SigningResult    `json:"signing_result,omitempty"`
	SchedulingResult *SchedulingResult `json:"scheduling_result,omitempty"`

	CurrentStage  Stage     `json:"current_stage"`
	AwaitingInput bool      `json:"awaiting_input"`
	InputKind     InputKind `json:"input_kind,omitempty"`

	WorkflowComplete bool        `json:"workflow_complete"`
	FinalStatus      FinalStatus `json:"final_status,omitempty"`
	Error            string      `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a fresh session positioned at the entry stage.
func NewSession(id, userID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           id,
		UserID:       userID,
		CurrentStage: StageAnalyze,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Terminal reports whether the session has reached a sink stage.
func (s *Session) Terminal() bool {
	return s.WorkflowComplete
}

// Clone returns a deep copy so stores and callers cannot mutate shared state.
func (s *Session) Clone() *Session {
	c := *s
	if s.Approved != nil {
		v := *s.Approved
		c.Approved = &v
	}
	if s.AnalysisParams != nil {
		p := s.AnalysisParams.clone()
		c.AnalysisParams = &p
	}
	if s.RiskAssessment != nil {
		ra := s.RiskAssessment.clone()
		c.RiskAssessment = &ra
	}
	if s.SigningResult != nil {
		sr := *s.SigningResult
		c.SigningResult = &sr
	}
	if s.SchedulingResult != nil {
		sc := *s.SchedulingResult
		c.SchedulingResult = &sc
	}
	return &c
}

// Patch is the partial state update a stage handler produces.
// Only non-nil / non-zero fields are applied.
type Patch struct {
	RiskAssessment   *RiskAssessment
	SigningResult    *SigningResult
	SchedulingResult *SchedulingResult

	// AwaitInput pauses the session on the given input kind.
	AwaitInput InputKind

	// Complete marks the session terminal with the given status.
	Complete    bool
	FinalStatus FinalStatus
	Error       string
}

// Apply merges a stage patch into the session. Terminal sessions reject mutation.
func (s *Session) Apply(p Patch) error {
	if s.Terminal() {
		return ErrSessionComplete
	}
	if p.RiskAssessment != nil {
		s.RiskAssessment = p.RiskAssessment
	}
	if p.SigningResult != nil {
		s.SigningResult = p.SigningResult
	}
	if p.SchedulingResult != nil {
		s.SchedulingResult = p.SchedulingResult
	}
	if p.AwaitInput != "" {
		s.AwaitingInput = true
		s.InputKind = p.AwaitInput
	}
	if p.Error != "" {
		s.Error = p.Error
	}
	if p.Complete {
		s.WorkflowComplete = true
		s.FinalStatus = p.FinalStatus
		s.AwaitingInput = false
		s.InputKind = ""
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// View is the observable projection of a session returned to callers.
// The raw document text is deliberately omitted.
type View struct {
	ID               string            `json:"session_id"`
	UserID           string            `json:"user_id"`
	Filename         string            `json:"filename,omitempty"`
	CurrentStage     Stage             `json:"current_stage"`
	AwaitingInput    bool              `json:"awaiting_input"`
	InputKind        InputKind         `json:"input_kind,omitempty"`
	RiskAssessment   *RiskAssessment   `json:"risk_assessment,omitempty"`
	Approved         *bool             `json:"approved,omitempty"`
	MeetingDate      string            `json:"meeting_date,omitempty"`
	SigningResult    *SigningResult    `json:"signing_result,omitempty"`
	SchedulingResult *SchedulingResult `json:"scheduling_result,omitempty"`
	WorkflowComplete bool              `json:"workflow_complete"`
	FinalStatus      FinalStatus       `json:"final_status,omitempty"`
	Error            string            `json:"error,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// View builds the caller-facing snapshot from a session.
func (s *Session) View() *View {
	c := s.Clone()
	return &View{
		ID:               c.ID,
		UserID:           c.UserID,
		Filename:         c.Filename,
		CurrentStage:     c.CurrentStage,
		AwaitingInput:    c.AwaitingInput,
		InputKind:        c.InputKind,
		RiskAssessment:   c.RiskAssessment,
		Approved:         c.Approved,
		MeetingDate:      c.MeetingDate,
		SigningResult:    c.SigningResult,
		SchedulingResult: c.SchedulingResult,
		WorkflowComplete: c.WorkflowComplete,
		FinalStatus:      c.FinalStatus,
		Error:            c.Error,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
