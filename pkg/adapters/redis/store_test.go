package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/quillflow/quill/pkg/adapters/redis"
	"github.com/quillflow/quill/pkg/domain"
	"github.com/quillflow/quill/pkg/ports/tests"
)

func TestRedisStore_Contract(t *testing.T) {
	// Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	// Initialize client
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	// Run contract
	store := redis.NewFromClient(client)
	tests.SessionStoreContractTest(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	// Create store with 1s TTL
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	sess := domain.NewSession("session-ttl", "user-1")
	sess.AwaitingInput = true
	sess.InputKind = domain.InputApproval

	// 1. Save
	err = store.Save(ctx, sess)
	assert.NoError(t, err)

	// 2. Verify List (immediately)
	sessions, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, sessions, "session-ttl")

	// 3. Fast Forward time in miniredis (for Key Expiration)
	mr.FastForward(2 * time.Second)

	// 4. Verify Load (should fail)
	_, err = store.Load(ctx, "session-ttl")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// 5. Verify List (lazily cleaned up)
	// The index prune relies on time.Now() for the ZRemRangeByScore cutoff,
	// so we wait past the TTL before listing.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	// Custom Prefix
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err = store.Save(ctx, domain.NewSession("my-session", "user-1"))
	assert.NoError(t, err)

	// Verify keys in Redis directly
	// Key should be "custom:app:my-session"
	exists := mr.Exists("custom:app:my-session")
	assert.True(t, exists, "Expected key with custom prefix to exist")

	// Index should be "custom:app:index"
	existsIndex := mr.Exists("custom:app:index")
	assert.True(t, existsIndex, "Expected index with custom prefix to exist")

	// Verify List works
	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, list, "my-session")
}

func TestRedisStore_RoundTripPreservesAssessment(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client)
	ctx := context.Background()

	sess := domain.NewSession("rt-1", "user-1")
	sess.RiskAssessment = &domain.RiskAssessment{
		Risk:    domain.RiskMedium,
		Summary: "short summary",
		ClauseScan: &domain.ClauseScan{
			Findings:    []domain.ClauseFinding{{Clause: "Indemnification", Present: true, Risk: domain.RiskMedium}},
			OverallRisk: domain.RiskMedium,
		},
	}

	assert.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx, "rt-1")
	assert.NoError(t, err)
	assert.Equal(t, sess.RiskAssessment, loaded.RiskAssessment)
}
