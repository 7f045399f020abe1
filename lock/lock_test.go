package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/forbearing/gstore/adapter/memstore"
	"github.com/forbearing/gstore/lock"
	"github.com/forbearing/gstore/types"
	"github.com/stretchr/testify/require"
)

// fixtureBackend adapts memstore.Store (an Adapter) into the lock.Backend
// shape by defining the one collection locks live in, matching how
// facade.Facade itself would present Create/FindAll/Destroy.
type fixtureBackend struct {
	store      *memstore.Store
	collection string
}

func newFixtureBackend(t *testing.T) *fixtureBackend {
	t.Helper()
	s := memstore.New(types.Config{})
	require.NoError(t, s.Define(context.Background(), "locks", types.Attributes{
		"uuid": {Name: "uuid", Type: "string"},
		"name": {Name: "name", Type: "string"},
	}))
	return &fixtureBackend{store: s, collection: "locks"}
}

func (f *fixtureBackend) Create(ctx context.Context, _ string, values types.Record) (types.Record, error) {
	return f.store.Create(ctx, f.collection, values)
}

func (f *fixtureBackend) FindAll(ctx context.Context, _ string, criteria *types.Criterion) ([]types.Record, error) {
	return f.store.Find(ctx, f.collection, criteria)
}

func (f *fixtureBackend) Destroy(ctx context.Context, _ string, criteria *types.Criterion) ([]types.Record, error) {
	return f.store.Destroy(ctx, f.collection, criteria)
}

func TestTransaction_ExclusiveAndFIFO(t *testing.T) {
	backend := newFixtureBackend(t)
	mgr := lock.New(backend, "locks")

	const n = 5
	var (
		mu          sync.Mutex
		acquireOrder []int
		active       int32
		overlapped   bool
	)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Stagger enqueue order deterministically so we can assert
			// FIFO acquisition order below.
			time.Sleep(time.Duration(i) * 5 * time.Millisecond)

			done := make(chan struct{})
			err := mgr.Transaction(context.Background(), "X", func(err error, unlock lock.UnlockFunc) {
				require.NoError(t, err)
				if atomic.AddInt32(&active, 1) > 1 {
					overlapped = true
				}
				mu.Lock()
				acquireOrder = append(acquireOrder, i)
				mu.Unlock()

				time.Sleep(10 * time.Millisecond)

				atomic.AddInt32(&active, -1)
				unlock()
			}, func(args ...any) {
				close(done)
			})
			require.NoError(t, err)
			<-done
		}(i)
	}
	wg.Wait()

	require.False(t, overlapped, "critical sections overlapped")
	require.Equal(t, []int{0, 1, 2, 3, 4}, acquireOrder, "acquisition order must match enqueue order")
}

func TestTransaction_IndependentNamesDoNotBlock(t *testing.T) {
	backend := newFixtureBackend(t)
	mgr := lock.New(backend, "locks")

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = mgr.Transaction(context.Background(), "X", func(err error, unlock lock.UnlockFunc) {
			close(started)
			<-release
			unlock()
		}, nil)
	}()
	<-started

	done := make(chan struct{})
	go func() {
		_ = mgr.Transaction(context.Background(), "Y", func(err error, unlock lock.UnlockFunc) {
			unlock()
		}, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("transaction on independent name Y was blocked by X")
	}
	close(release)
}

func TestTransaction_AtomicLogicAndAfterUnlockFireExactlyOnce(t *testing.T) {
	backend := newFixtureBackend(t)
	mgr := lock.New(backend, "locks")

	var logicCalls, afterCalls int32
	err := mgr.Transaction(context.Background(), "X", func(err error, unlock lock.UnlockFunc) {
		atomic.AddInt32(&logicCalls, 1)
		unlock("a", 1)
		unlock("b", 2) // must be a no-op
	}, func(args ...any) {
		atomic.AddInt32(&afterCalls, 1)
		require.Equal(t, []any{"a", 1}, args)
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, logicCalls)
	require.EqualValues(t, 1, afterCalls)
}

func TestTransaction_EnqueueFailureInvokesSyntheticUnlock(t *testing.T) {
	backend := newFixtureBackend(t)
	// Drop the collection so Create fails with ErrNoSuchCollection.
	require.NoError(t, backend.store.Drop(context.Background(), backend.collection))
	mgr := lock.New(backend, "locks")

	var gotErr error
	var panicked bool
	err := mgr.Transaction(context.Background(), "X", func(err error, unlock lock.UnlockFunc) {
		gotErr = err
		func() {
			defer func() {
				if recover() != nil {
					panicked = true
				}
			}()
			unlock()
		}()
	}, nil)
	require.Error(t, err)
	require.Error(t, gotErr)
	require.True(t, panicked, "unlock from a failed acquisition must panic")
}
