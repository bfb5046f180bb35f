package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quillflow/quill/internal/logging"
	"github.com/quillflow/quill/pkg/analysis"
	"github.com/quillflow/quill/pkg/domain"
	"github.com/quillflow/quill/pkg/ports"
)

// Runtime bundles the collaborators stage handlers depend on.
type Runtime struct {
	Analyzer  *analysis.Pipeline
	Signer    ports.Signer
	Scheduler ports.Scheduler
	Logger    *slog.Logger
}

func (rt *Runtime) logger() *slog.Logger {
	if rt.Logger == nil {
		return logging.NewNop()
	}
	return rt.Logger
}

// failed builds the terminal FAILED patch for an unmet precondition.
// Preconditions are domain outcomes, not request errors: they mark the
// session FAILED instead of raising to the caller.
func failed(reason string) domain.Patch {
	return domain.Patch{
		Complete:    true,
		FinalStatus: domain.StatusFailed,
		Error:       reason,
	}
}

func runAnalyze(ctx context.Context, rt *Runtime, s *domain.Session) (domain.Patch, error) {
	params := domain.AnalysisParams{}
	if s.AnalysisParams != nil {
		params = *s.AnalysisParams
	}

	agg, err := rt.Analyzer.Analyze(ctx, s.DocumentText, params)
	if err != nil {
		return domain.Patch{}, fmt.Errorf("analysis failed: %w", err)
	}

	rt.logger().Info("document analyzed",
		"session_id", s.ID,
		"risk", agg.Risk,
	)
	return domain.Patch{RiskAssessment: agg}, nil
}

func runSign(ctx context.Context, rt *Runtime, s *domain.Session) (domain.Patch, error) {
	if s.Approved == nil || !*s.Approved {
		return failed("signing requires an approved document"), nil
	}
	if s.RiskAssessment == nil {
		return failed("signing requires a completed risk assessment"), nil
	}

	res, err := rt.Signer.Sign(ctx, s.ID, s.UserID)
	if err != nil {
		return domain.Patch{}, fmt.Errorf("signing failed: %w", err)
	}
	if !res.Signed {
		p := failed("document was not signed")
		p.SigningResult = res
		return p, nil
	}

	rt.logger().Info("document signed",
		"session_id", s.ID,
		"signature_id", res.SignatureID,
	)
	return domain.Patch{SigningResult: res}, nil
}

// checkSchedulePreconditions runs when the meeting-date interrupt is released:
// scheduling a review for an unsigned document fails the workflow.
func checkSchedulePreconditions(ctx context.Context, rt *Runtime, s *domain.Session) (domain.Patch, error) {
	if s.SigningResult == nil || !s.SigningResult.Signed {
		return failed("meeting scheduling requires a signed document"), nil
	}
	return domain.Patch{}, nil
}

func runSchedule(ctx context.Context, rt *Runtime, s *domain.Session) (domain.Patch, error) {
	res, err := rt.Scheduler.Schedule(ctx, s.ID, s.MeetingDate)
	if err != nil {
		return domain.Patch{}, fmt.Errorf("scheduling failed: %w", err)
	}

	rt.logger().Info("review meeting scheduled",
		"session_id", s.ID,
		"booking_id", res.BookingID,
		"meeting_date", res.MeetingDate,
	)
	return domain.Patch{SchedulingResult: res}, nil
}

func runReject(ctx context.Context, rt *Runtime, s *domain.Session) (domain.Patch, error) {
	rt.logger().Info("document rejected", "session_id", s.ID)
	return domain.Patch{
		Complete:    true,
		FinalStatus: domain.StatusRejected,
	}, nil
}

func runComplete(ctx context.Context, rt *Runtime, s *domain.Session) (domain.Patch, error) {
	if s.SchedulingResult == nil || !s.SchedulingResult.Confirmed {
		return failed("workflow finished without a confirmed meeting"), nil
	}
	return domain.Patch{
		Complete:    true,
		FinalStatus: domain.StatusSuccess,
	}, nil
}
