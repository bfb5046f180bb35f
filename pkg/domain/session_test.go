package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	s := NewSession("abc", "user-1")

	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, "user-1", s.UserID)
	assert.Equal(t, StageAnalyze, s.CurrentStage)
	assert.False(t, s.Terminal())
	assert.False(t, s.AwaitingInput)
}

func TestApplyPatch(t *testing.T) {
	s := NewSession("abc", "user-1")

	err := s.Apply(Patch{AwaitInput: InputApproval})
	require.NoError(t, err)
	assert.True(t, s.AwaitingInput)
	assert.Equal(t, InputApproval, s.InputKind)

	err = s.Apply(Patch{Complete: true, FinalStatus: StatusRejected})
	require.NoError(t, err)
	assert.True(t, s.Terminal())
	assert.Equal(t, StatusRejected, s.FinalStatus)
	assert.False(t, s.AwaitingInput, "terminal sessions are not paused")
	assert.Empty(t, s.InputKind)
}

func TestApplyRejectsTerminalSession(t *testing.T) {
	s := NewSession("abc", "user-1")
	require.NoError(t, s.Apply(Patch{Complete: true, FinalStatus: StatusSuccess}))

	err := s.Apply(Patch{AwaitInput: InputMeetingDate})
	assert.ErrorIs(t, err, ErrSessionComplete)
}

func TestCloneIsolation(t *testing.T) {
	approved := true
	s := NewSession("abc", "user-1")
	s.Approved = &approved
	s.RiskAssessment = &RiskAssessment{
		Risk: RiskHigh,
		ClauseScan: &ClauseScan{
			Findings:    []ClauseFinding{{Clause: "Confidentiality", Present: true, Risk: RiskLow}},
			OverallRisk: RiskHigh,
		},
	}

	c := s.Clone()
	*c.Approved = false
	c.RiskAssessment.ClauseScan.Findings[0].Risk = RiskHigh

	assert.True(t, *s.Approved)
	assert.Equal(t, RiskLow, s.RiskAssessment.ClauseScan.Findings[0].Risk)
}

func TestViewOmitsDocumentText(t *testing.T) {
	s := NewSession("abc", "user-1")
	s.DocumentText = "secret contract body"
	s.Filename = "contract.pdf"

	v := s.View()
	assert.Equal(t, "abc", v.ID)
	assert.Equal(t, "contract.pdf", v.Filename)
	// View has no document text field at all; sanity check the projection.
	assert.Equal(t, s.CurrentStage, v.CurrentStage)
}

func TestHumanInputValidate(t *testing.T) {
	approved := true

	tests := []struct {
		name    string
		input   HumanInput
		kind    InputKind
		wantErr bool
	}{
		{"approval ok", HumanInput{Approved: &approved}, InputApproval, false},
		{"approval missing", HumanInput{}, InputApproval, true},
		{"meeting date ok", HumanInput{MeetingDate: "2026-03-15"}, InputMeetingDate, false},
		{"meeting date missing", HumanInput{}, InputMeetingDate, true},
		{"meeting date malformed", HumanInput{MeetingDate: "15/03/2026"}, InputMeetingDate, true},
		{"unknown kind", HumanInput{Approved: &approved}, InputKind("other"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate(tt.kind)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHumanInputMergeScopedToKind(t *testing.T) {
	approved := true

	s := NewSession("abc", "user-1")
	in := HumanInput{Approved: &approved, MeetingDate: "2026-03-15"}
	in.MergeInto(s, InputApproval)
	require.NotNil(t, s.Approved)
	assert.True(t, *s.Approved)
	assert.Empty(t, s.MeetingDate, "meeting date is not consumed at the approval gate")

	denied := false
	in = HumanInput{Approved: &denied, MeetingDate: "2026-03-15"}
	in.MergeInto(s, InputMeetingDate)
	assert.Equal(t, "2026-03-15", s.MeetingDate)
	assert.True(t, *s.Approved, "a meeting-date payload cannot rewrite the approval")
}

func TestDecodeHumanInput(t *testing.T) {
	input, err := DecodeHumanInput(map[string]any{"approved": true})
	require.NoError(t, err)
	require.NotNil(t, input.Approved)
	assert.True(t, *input.Approved)

	input, err = DecodeHumanInput(map[string]any{"meeting_date": "2026-03-15"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", input.MeetingDate)

	_, err = DecodeHumanInput(map[string]any{"approved": "yes"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnalysisParamsNormalized(t *testing.T) {
	a := AnalysisParams{
		Clauses:     []string{"Governing Law", "Confidentiality"},
		Regulations: []string{"GDPR", "CCPA"},
	}
	b := AnalysisParams{
		Clauses:     []string{"Confidentiality", "Governing Law"},
		Regulations: []string{"CCPA", "GDPR"},
	}

	assert.Equal(t, a.Normalized(), b.Normalized())

	// Defaults fill in when no clause list is supplied.
	d := AnalysisParams{}.Normalized()
	assert.Len(t, d.Clauses, len(DefaultClauses))
}
