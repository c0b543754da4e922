package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/rootseek"
	"github.com/aretw0/rootseek/pkg/adapters/memory"
	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/ports"
	"github.com/aretw0/rootseek/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore adds latency to provoke races if locking is missing.
type slowStore struct {
	*memory.Store
}

func (s slowStore) Load(ctx context.Context, id string) (*domain.State, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Load(ctx, id)
}

func (s slowStore) Save(ctx context.Context, id string, state *domain.State) error {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Save(ctx, id, state)
}

// countingLocker records lock usage.
type countingLocker struct {
	mu       sync.Mutex
	locks    int
	unlocks  int
	failWith error
}

func (c *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return nil, c.failWith
	}
	c.locks++
	return func(context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.unlocks++
		return nil
	}, nil
}

func newEngine(t *testing.T) *rootseek.Engine {
	t.Helper()
	eng, err := rootseek.New(rootseek.WithPlotSettings(rootseek.PlotSettings{}))
	require.NoError(t, err)
	return eng
}

func TestManager_LoadOrStart_Atomic(t *testing.T) {
	manager := session.NewManager(slowStore{memory.NewStore()})
	eng := newEngine(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		resumed int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, ok, err := manager.LoadOrStart(ctx, eng, "atomic-init")
			assert.NoError(t, err)
			assert.NotNil(t, state)
			if ok {
				mu.Lock()
				resumed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, resumed, "exactly one caller creates the session")
	state, err := manager.Load(ctx, "atomic-init")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitGuesses, state.Phase)
}

func TestManager_Navigate(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	eng := newEngine(t)
	ctx := context.Background()

	_, _, err := manager.LoadOrStart(ctx, eng, "nav")
	require.NoError(t, err)

	state, err := manager.Navigate(ctx, eng, "nav", "1.0")
	require.NoError(t, err)
	assert.Equal(t, "AwaitGuessesEq2", state.Step())

	stored, err := manager.Load(ctx, "nav")
	require.NoError(t, err)
	assert.Equal(t, state, stored)

	_, err = manager.Navigate(ctx, eng, "nav", "abc,2")
	assert.ErrorIs(t, err, domain.ErrNumericInput)
	stored, err = manager.Load(ctx, "nav")
	require.NoError(t, err)
	assert.Equal(t, "AwaitGuessesEq2", stored.Step(), "failed navigation must not persist")

	_, err = manager.Navigate(ctx, eng, "missing", "1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_SerializesNavigation(t *testing.T) {
	manager := session.NewManager(slowStore{memory.NewStore()})
	eng := newEngine(t)
	ctx := context.Background()

	_, _, err := manager.LoadOrStart(ctx, eng, "race")
	require.NoError(t, err)

	// Two guess lists advance two equations only if no update is lost.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Navigate(ctx, eng, "race", "1.0")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := manager.Load(ctx, "race")
	require.NoError(t, err)
	assert.Len(t, state.Batches, 2)
	assert.Equal(t, domain.PhaseProcessGuesses, state.Phase)
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, "a", domain.NewState("a", []domain.EquationID{"f1", "f2"})))
	_, err := manager.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, locker.locks)
	assert.Equal(t, 2, locker.unlocks)

	locker.failWith = errors.New("redis down")
	err = manager.Delete(ctx, "a")
	assert.ErrorContains(t, err, "redis down")
}
