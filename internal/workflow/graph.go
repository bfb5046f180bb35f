package workflow

import (
	"context"
	"fmt"

	"github.com/quillflow/quill/pkg/domain"
)

// handlerFunc is the unit of work bound to one stage. It consumes the session
// and produces a partial state update; it never writes the store itself.
type handlerFunc func(ctx context.Context, rt *Runtime, s *domain.Session) (domain.Patch, error)

// decideFunc maps current session state to the next stage on a conditional
// edge. It must be total: an unmapped condition is domain.ErrMalformedTransition.
type decideFunc func(s *domain.Session) (domain.Stage, error)

// stageSpec declares one node of the static workflow graph.
type stageSpec struct {
	handler handlerFunc

	// Exactly one of next or decide is set on non-terminal stages.
	next    domain.Stage
	decide  decideFunc
	targets []domain.Stage // declared targets of decide, for validation

	// interrupt stages pause the engine until input of the given kind arrives.
	interrupt bool
	kind      domain.InputKind

	terminal bool
}

// entryStage is where every new session begins.
const entryStage = domain.StageAnalyze

// newGraph builds the static stage table:
//
//	analyze -> await_approval [interrupt]
//	await_approval --(approved)--> sign | --(rejected)--> reject
//	sign -> await_meeting_date [interrupt]
//	await_meeting_date -> schedule -> complete
//	reject, complete: terminal
func newGraph() map[domain.Stage]stageSpec {
	return map[domain.Stage]stageSpec{
		domain.StageAnalyze: {
			handler: runAnalyze,
			next:    domain.StageAwaitApproval,
		},
		domain.StageAwaitApproval: {
			interrupt: true,
			kind:      domain.InputApproval,
			decide:    decideApproval,
			targets:   []domain.Stage{domain.StageSign, domain.StageReject},
		},
		domain.StageSign: {
			handler: runSign,
			next:    domain.StageAwaitMeetingDate,
		},
		domain.StageAwaitMeetingDate: {
			interrupt: true,
			kind:      domain.InputMeetingDate,
			handler:   checkSchedulePreconditions,
			next:      domain.StageSchedule,
		},
		domain.StageSchedule: {
			handler: runSchedule,
			next:    domain.StageComplete,
		},
		domain.StageReject: {
			handler:  runReject,
			terminal: true,
		},
		domain.StageComplete: {
			handler:  runComplete,
			terminal: true,
		},
	}
}

// validateGraph checks the stage table at engine construction: the entry stage
// exists, every transition target is declared, interrupt stages carry an input
// kind, terminal stages have no outgoing edges, and every stage is reachable.
func validateGraph(graph map[domain.Stage]stageSpec) error {
	if _, ok := graph[entryStage]; !ok {
		return fmt.Errorf("workflow graph: entry stage %q not declared", entryStage)
	}

	for stage, spec := range graph {
		if spec.terminal {
			if spec.next != "" || spec.decide != nil {
				return fmt.Errorf("workflow graph: terminal stage %q declares transitions", stage)
			}
			continue
		}

		hasNext := spec.next != ""
		hasDecide := spec.decide != nil
		if hasNext == hasDecide {
			return fmt.Errorf("workflow graph: stage %q must declare exactly one of next or decide", stage)
		}
		if hasDecide && len(spec.targets) == 0 {
			return fmt.Errorf("workflow graph: stage %q has a decision but no declared targets", stage)
		}

		if spec.interrupt && spec.kind == "" {
			return fmt.Errorf("workflow graph: interrupt stage %q has no input kind", stage)
		}

		for _, target := range outgoing(spec) {
			if _, ok := graph[target]; !ok {
				return fmt.Errorf("workflow graph: stage %q targets undeclared stage %q", stage, target)
			}
		}
	}

	// Reachability from the entry stage.
	seen := map[domain.Stage]bool{entryStage: true}
	queue := []domain.Stage{entryStage}
	for len(queue) > 0 {
		stage := queue[0]
		queue = queue[1:]
		for _, target := range outgoing(graph[stage]) {
			if !seen[target] {
				seen[target] = true
				queue = append(queue, target)
			}
		}
	}
	for stage := range graph {
		if !seen[stage] {
			return fmt.Errorf("workflow graph: stage %q is unreachable from %q", stage, entryStage)
		}
	}

	return nil
}

func outgoing(spec stageSpec) []domain.Stage {
	if spec.decide != nil {
		return spec.targets
	}
	if spec.next != "" {
		return []domain.Stage{spec.next}
	}
	return nil
}

// decideApproval routes the approval gate. It is total over session state:
// a missing decision is a malformed transition, never a silent default.
func decideApproval(s *domain.Session) (domain.Stage, error) {
	switch {
	case s.Approved == nil:
		return "", fmt.Errorf("%w: approval gate reached without a decision", domain.ErrMalformedTransition)
	case *s.Approved:
		return domain.StageSign, nil
	default:
		return domain.StageReject, nil
	}
}

// inputSatisfied reports whether the session already carries the input an
// interrupt stage is waiting for.
func inputSatisfied(s *domain.Session, kind domain.InputKind) bool {
	switch kind {
	case domain.InputApproval:
		return s.Approved != nil
	case domain.InputMeetingDate:
		return s.MeetingDate != ""
	}
	return false
}
