package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillflow/quill/pkg/domain"
)

func TestGraphIsValid(t *testing.T) {
	assert.NoError(t, validateGraph(newGraph()))
}

func TestValidateGraphMissingEntry(t *testing.T) {
	g := newGraph()
	delete(g, domain.StageAnalyze)
	assert.Error(t, validateGraph(g))
}

func TestValidateGraphUndeclaredTarget(t *testing.T) {
	g := newGraph()
	spec := g[domain.StageSchedule]
	spec.next = domain.Stage("nonexistent")
	g[domain.StageSchedule] = spec
	assert.Error(t, validateGraph(g))
}

func TestValidateGraphInterruptNeedsKind(t *testing.T) {
	g := newGraph()
	spec := g[domain.StageAwaitApproval]
	spec.kind = ""
	g[domain.StageAwaitApproval] = spec
	assert.Error(t, validateGraph(g))
}

func TestValidateGraphTerminalHasNoEdges(t *testing.T) {
	g := newGraph()
	spec := g[domain.StageComplete]
	spec.next = domain.StageAnalyze
	g[domain.StageComplete] = spec
	assert.Error(t, validateGraph(g))
}

func TestValidateGraphUnreachableStage(t *testing.T) {
	g := newGraph()
	g[domain.Stage("orphan")] = stageSpec{handler: runReject, terminal: true}
	assert.Error(t, validateGraph(g))
}

func TestValidateGraphDecisionNeedsTargets(t *testing.T) {
	g := newGraph()
	spec := g[domain.StageAwaitApproval]
	spec.targets = nil
	g[domain.StageAwaitApproval] = spec
	assert.Error(t, validateGraph(g))
}

func TestDecideApprovalIsTotal(t *testing.T) {
	s := domain.NewSession("s1", "user-1")

	_, err := decideApproval(s)
	require.ErrorIs(t, err, domain.ErrMalformedTransition, "missing decision never defaults silently")

	approved := true
	s.Approved = &approved
	next, err := decideApproval(s)
	require.NoError(t, err)
	assert.Equal(t, domain.StageSign, next)

	approved = false
	next, err = decideApproval(s)
	require.NoError(t, err)
	assert.Equal(t, domain.StageReject, next)
}

func TestStagesAdvanceAlongDeclaredEdgesOnly(t *testing.T) {
	g := newGraph()

	// Every stage the engine can reach from analyze is declared, and each
	// interrupt sits on the path it guards.
	assert.Equal(t, domain.StageAwaitApproval, g[domain.StageAnalyze].next)
	assert.True(t, g[domain.StageAwaitApproval].interrupt)
	assert.Equal(t, domain.StageAwaitMeetingDate, g[domain.StageSign].next)
	assert.True(t, g[domain.StageAwaitMeetingDate].interrupt)
	assert.True(t, g[domain.StageReject].terminal)
	assert.True(t, g[domain.StageComplete].terminal)
}
