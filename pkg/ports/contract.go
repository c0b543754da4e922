package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")
	equations := []domain.EquationID{"f1", "f2"}

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, equations)
		state.Batches = append(state.Batches, domain.NewGuessBatch("f1", []float64{1, -2.5}))
		state.RecordRoot("f1", 1.1701)
		state.Pending = &domain.Guess{Equation: "f1", Value: -2.5, Index: 2}
		state.Phase = domain.PhaseAwaitConfirmation
		state.Outbox = []domain.ActionRequest{domain.Content("Root near to guess #1 for f1: 1.1701")}

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Phase, loaded.Phase)
		assert.Equal(t, state.Equations, loaded.Equations)
		assert.Equal(t, state.Batches, loaded.Batches)
		assert.Equal(t, state.Pending, loaded.Pending)
		assert.Equal(t, state.Roots, loaded.Roots)
		require.NotNil(t, loaded.LastRoot["f1"])
		assert.Equal(t, 1.1701, *loaded.LastRoot["f1"])
		assert.Nil(t, loaded.LastRoot["f2"])
		assert.Equal(t, state.Outbox, loaded.Outbox)
	})

	t.Run("Loaded state is isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Phase = domain.PhaseDone
		loaded.Roots["f1"][0] = 42

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.PhaseAwaitConfirmation, again.Phase)
		assert.Equal(t, 1.1701, again.Roots["f1"][0])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, equations))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, equations))
		_ = store.Save(ctx, id2, domain.NewState(id2, equations))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
