package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillflow/quill/pkg/domain"
)

// SessionStoreContractTest is a reusable test suite that verifies if an adapter
// complies with ports.SessionStore. Run it against every store implementation.
func SessionStoreContractTest(t *testing.T, store interface {
	Save(ctx context.Context, session *domain.Session) error
	Load(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}) {
	t.Helper()
	ctx := context.Background()

	t.Run("SaveAndLoad", func(t *testing.T) {
		s := domain.NewSession("contract-1", "user-1")
		s.DocumentText = "body"
		s.AwaitingInput = true
		s.InputKind = domain.InputApproval
		require.NoError(t, store.Save(ctx, s))

		loaded, err := store.Load(ctx, "contract-1")
		require.NoError(t, err)
		assert.Equal(t, s.ID, loaded.ID)
		assert.Equal(t, s.UserID, loaded.UserID)
		assert.Equal(t, s.DocumentText, loaded.DocumentText)
		assert.True(t, loaded.AwaitingInput)
		assert.Equal(t, domain.InputApproval, loaded.InputKind)
	})

	t.Run("LoadIsolatedFromCallerMutation", func(t *testing.T) {
		s := domain.NewSession("contract-2", "user-1")
		require.NoError(t, store.Save(ctx, s))

		first, err := store.Load(ctx, "contract-2")
		require.NoError(t, err)
		first.UserID = "mutated"

		second, err := store.Load(ctx, "contract-2")
		require.NoError(t, err)
		assert.Equal(t, "user-1", second.UserID)
	})

	t.Run("Overwrite", func(t *testing.T) {
		s := domain.NewSession("contract-3", "user-1")
		require.NoError(t, store.Save(ctx, s))

		s.CurrentStage = domain.StageSign
		require.NoError(t, store.Save(ctx, s))

		loaded, err := store.Load(ctx, "contract-3")
		require.NoError(t, err)
		assert.Equal(t, domain.StageSign, loaded.CurrentStage)
	})

	t.Run("LoadNotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "does-not-exist")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		s := domain.NewSession("contract-4", "user-1")
		require.NoError(t, store.Save(ctx, s))
		require.NoError(t, store.Delete(ctx, "contract-4"))

		_, err := store.Load(ctx, "contract-4")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession("contract-5", "user-1")))
		require.NoError(t, store.Save(ctx, domain.NewSession("contract-6", "user-2")))

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, "contract-5")
		assert.Contains(t, ids, "contract-6")
	})
}
