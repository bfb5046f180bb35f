package quill_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillflow/quill"
	"github.com/quillflow/quill/pkg/adapters/memory"
	"github.com/quillflow/quill/pkg/cache"
	"github.com/quillflow/quill/pkg/domain"
)

func boolPtr(b bool) *bool { return &b }

func TestEndToEndApprovalFlow(t *testing.T) {
	engine, err := quill.New()
	require.NoError(t, err)
	ctx := context.Background()

	view, err := engine.Start(ctx, quill.StartRequest{
		UserID:      "user-1",
		Filename:    "contract.txt",
		ContentType: "text/plain",
		Document:    []byte("Agreement between Acme Corp and Example LLC."),
	})
	require.NoError(t, err)
	assert.True(t, view.AwaitingInput)
	assert.Equal(t, domain.InputApproval, view.InputKind)
	assert.NotEmpty(t, view.ID)

	view, err = engine.Resume(ctx, view.ID, &domain.HumanInput{Approved: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, domain.InputMeetingDate, view.InputKind)

	view, err = engine.Resume(ctx, view.ID, &domain.HumanInput{MeetingDate: "2026-04-01"})
	require.NoError(t, err)
	assert.True(t, view.WorkflowComplete)
	assert.Equal(t, domain.StatusSuccess, view.FinalStatus)
}

func TestResumeSurvivesEngineRestart(t *testing.T) {
	// Both engines share one store, simulating a process restart between
	// the interrupt and the resume.
	store := memory.NewStore()
	ctx := context.Background()

	first, err := quill.New(quill.WithStore(store))
	require.NoError(t, err)

	view, err := first.Start(ctx, quill.StartRequest{
		UserID:      "user-1",
		ContentType: "text/plain",
		Document:    []byte("Agreement body."),
	})
	require.NoError(t, err)
	require.True(t, view.AwaitingInput)

	second, err := quill.New(quill.WithStore(store))
	require.NoError(t, err)

	resumed, err := second.Resume(ctx, view.ID, &domain.HumanInput{Approved: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, resumed.FinalStatus)
}

func TestStartRequiresUser(t *testing.T) {
	engine, err := quill.New()
	require.NoError(t, err)

	_, err = engine.Start(context.Background(), quill.StartRequest{
		ContentType: "text/plain",
		Document:    []byte("body"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStartUnsupportedContentType(t *testing.T) {
	engine, err := quill.New()
	require.NoError(t, err)

	_, err = engine.Start(context.Background(), quill.StartRequest{
		UserID:      "user-1",
		ContentType: "application/msword",
		Document:    []byte{0x01},
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestCacheHooksObserveAnalysis(t *testing.T) {
	var hits, misses atomic.Int32
	engine, err := quill.New(
		quill.WithResultCache(16, time.Minute),
		quill.WithCacheHooks(cache.Hooks{
			OnHit:  func(string) { hits.Add(1) },
			OnMiss: func(string) { misses.Add(1) },
		}),
	)
	require.NoError(t, err)

	_, err = engine.Start(context.Background(), quill.StartRequest{
		UserID:      "user-1",
		ContentType: "text/plain",
		Document:    []byte("Agreement body."),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), misses.Load(), "three sub-analyses on first run")
	assert.Zero(t, hits.Load())
}
