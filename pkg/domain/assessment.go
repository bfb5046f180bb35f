package domain

import "time"

// RiskLevel grades a clause finding or the document as a whole.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ClauseFinding is one entry of the structured clause scan.
type ClauseFinding struct {
	Clause        string    `json:"clause"`
	Present       bool      `json:"present"`
	Risk          RiskLevel `json:"risk"`
	Confidence    float64   `json:"confidence"`
	Justification string    `json:"justification,omitempty"`
	CitedText     string    `json:"cited_text,omitempty"`
}

// ClauseScan aggregates per-clause findings for a document.
type ClauseScan struct {
	Findings    []ClauseFinding `json:"findings"`
	OverallRisk RiskLevel       `json:"overall_risk"`
}

// KeyTerm is one structured extraction result (party, date, amount, obligation).
type KeyTerm struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Kind  string `json:"kind,omitempty"`
}

// SubFailure records why one sub-analysis degraded instead of producing a result.
type SubFailure struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// RiskAssessment is the aggregate of the three analysis sub-tasks.
// Each sub-result is independently nullable; a missing result carries an
// explicit failure marker rather than a silent nil.
type RiskAssessment struct {
	ClauseScan      *ClauseScan `json:"clause_scan,omitempty"`
	ClauseScanError *SubFailure `json:"clause_scan_error,omitempty"`

	Summary      string      `json:"summary,omitempty"`
	SummaryError *SubFailure `json:"summary_error,omitempty"`

	KeyTerms      []KeyTerm   `json:"key_terms,omitempty"`
	KeyTermsError *SubFailure `json:"key_terms_error,omitempty"`

	Risk RiskLevel `json:"risk"`
}

func (r RiskAssessment) clone() RiskAssessment {
	c := r
	if r.ClauseScan != nil {
		cs := *r.ClauseScan
		cs.Findings = append([]ClauseFinding(nil), r.ClauseScan.Findings...)
		c.ClauseScan = &cs
	}
	if r.ClauseScanError != nil {
		e := *r.ClauseScanError
		c.ClauseScanError = &e
	}
	if r.SummaryError != nil {
		e := *r.SummaryError
		c.SummaryError = &e
	}
	if r.KeyTermsError != nil {
		e := *r.KeyTermsError
		c.KeyTermsError = &e
	}
	c.KeyTerms = append([]KeyTerm(nil), r.KeyTerms...)
	return c
}

// SigningResult is the record produced by the signing collaborator.
type SigningResult struct {
	SignatureID string    `json:"signature_id"`
	Signer      string    `json:"signer"`
	SignedAt    time.Time `json:"signed_at"`
	Signed      bool      `json:"signed"`
}

// SchedulingResult is the record produced by the scheduling collaborator.
type SchedulingResult struct {
	BookingID   string    `json:"booking_id"`
	MeetingDate string    `json:"meeting_date"`
	Confirmed   bool      `json:"confirmed"`
	BookedAt    time.Time `json:"booked_at"`
}
