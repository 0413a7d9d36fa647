package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/orca/pkg/adapters/memory"
	"github.com/aretw0/orca/pkg/adapters/redis"
	"github.com/aretw0/orca/pkg/domain"
	"github.com/aretw0/orca/pkg/session"
)

// slowStore adds latency so unsynchronized read-modify-write loses updates.
type slowStore struct {
	*memory.Store
}

func (s slowStore) Load(ctx context.Context, id string) (*domain.State, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, id)
}

func (s slowStore) Save(ctx context.Context, id string, state *domain.State) error {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, id, state)
}

func newState(_ context.Context, id string) (*domain.State, error) {
	return domain.NewState(id), nil
}

func incrementQuantity(t *testing.T, mgr *session.Manager, id string, workers int) {
	t.Helper()
	ctx := context.Background()
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Update(ctx, id, func(s *domain.State) (*domain.State, error) {
				next := s.Snapshot()
				next.Draft.Product.Quantity++
				return next, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestManager_UpdateSerializesEdits(t *testing.T) {
	mgr := session.NewManager(slowStore{memory.NewStore()})
	ctx := context.Background()

	_, err := mgr.LoadOrStart(ctx, "s1", newState)
	require.NoError(t, err)

	incrementQuantity(t, mgr, "s1", 20)

	state, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 20, state.Draft.Product.Quantity)
}

func TestManager_LoadOrStart(t *testing.T) {
	mgr := session.NewManager(slowStore{memory.NewStore()})
	ctx := context.Background()

	var starts atomic.Int32
	start := func(ctx context.Context, id string) (*domain.State, error) {
		starts.Add(1)
		return newState(ctx, id)
	}

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := mgr.LoadOrStart(ctx, "atomic-init", start)
			assert.NoError(t, err)
			assert.NotNil(t, state)
		}()
	}
	wg.Wait()

	state, err := mgr.Load(ctx, "atomic-init")
	require.NoError(t, err)
	assert.Equal(t, domain.ScreenWelcome, state.Screen)
	assert.Equal(t, "atomic-init", state.SessionID)
	assert.Equal(t, int32(1), starts.Load())

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"atomic-init"}, ids)
}

func TestManager_LoadOrStartFailure(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	failed := errors.New("catalog unavailable")
	_, err := mgr.LoadOrStart(ctx, "s1", func(context.Context, string) (*domain.State, error) { return nil, failed })
	assert.ErrorIs(t, err, failed)

	_, err = mgr.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "a failed start stores nothing")
}

func TestManager_UpdateReturnsErrors(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, err := mgr.Update(ctx, "missing", func(s *domain.State) (*domain.State, error) { return s, nil })
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = mgr.LoadOrStart(ctx, "s1", newState)
	require.NoError(t, err)

	rejected := errors.New("rejected")
	state, err := mgr.Update(ctx, "s1", func(s *domain.State) (*domain.State, error) {
		next := s.Snapshot()
		next.Errors = []string{"Ad Soyad gerekli"}
		return next, rejected
	})
	assert.ErrorIs(t, err, rejected)
	require.NotNil(t, state)

	saved, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ad Soyad gerekli"}, saved.Errors, "a returned state is saved even with an error")

	_, err = mgr.Update(ctx, "s1", func(*domain.State) (*domain.State, error) { return nil, rejected })
	assert.ErrorIs(t, err, rejected)
	saved, err = mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ad Soyad gerekli"}, saved.Errors)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := slowStore{memory.NewStore()}
	locker := redis.NewLocker(client, "orca:")

	// Two managers model two replicas sharing one store.
	a := session.NewManager(store, session.WithLocker(locker), session.WithLockTTL(5*time.Second))
	b := session.NewManager(store, session.WithLocker(locker), session.WithLockTTL(5*time.Second))

	ctx := context.Background()
	_, err := a.LoadOrStart(ctx, "shared", newState)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, mgr := range []*session.Manager{a, b} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			incrementQuantity(t, mgr, "shared", 5)
		}()
	}
	wg.Wait()

	state, err := a.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, 10, state.Draft.Product.Quantity)
	assert.False(t, mr.Exists("orca:lock:session:shared"), "lock must be released")
}

func TestManager_LockTimeout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set("orca:lock:session:busy", "other-replica"))
	mgr := session.NewManager(memory.NewStore(), session.WithLocker(redis.NewLocker(client, "orca:")))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := mgr.Save(ctx, "busy", domain.NewState("busy"))
	assert.Error(t, err)
}
