package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerIdempotent(t *testing.T) {
	s := NewSigner()
	ctx := context.Background()

	first, err := s.Sign(ctx, "sess-1", "user-1")
	require.NoError(t, err)
	assert.True(t, first.Signed)
	assert.Equal(t, "user-1", first.Signer)
	assert.NotEmpty(t, first.SignatureID)

	second, err := s.Sign(ctx, "sess-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, first, second, "repeated sign returns the original record")

	other, err := s.Sign(ctx, "sess-2", "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.SignatureID, other.SignatureID)
}

func TestSchedulerIdempotent(t *testing.T) {
	s := NewScheduler()
	ctx := context.Background()

	first, err := s.Schedule(ctx, "sess-1", "2026-03-15")
	require.NoError(t, err)
	assert.True(t, first.Confirmed)
	assert.Equal(t, "2026-03-15", first.MeetingDate)

	second, err := s.Schedule(ctx, "sess-1", "2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
