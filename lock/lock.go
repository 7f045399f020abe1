// Package lock implements a distributed-safe, named, FIFO app-level
// mutual-exclusion primitive. It is built entirely on top of a backing
// store's own create/find/destroy operations against a reserved
// transaction collection: no out-of-band coordination service is
// required, so any number of processes sharing the same backing store
// can serialize named critical sections.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/gstore/types"
	"github.com/google/uuid"
)

// Backend is the slice of the facade a Manager needs: create, scan and
// destroy rows in one reserved collection. The facade package satisfies
// it with a small wrapper around *facade.Facade (whose FindAll takes
// untyped criteria) — package lock intentionally does not import
// package facade, so that facade can import lock without a cycle.
type Backend interface {
	Create(ctx context.Context, collection string, values types.Record) (types.Record, error)
	FindAll(ctx context.Context, collection string, criteria *types.Criterion) ([]types.Record, error)
	Destroy(ctx context.Context, collection string, criteria *types.Criterion) ([]types.Record, error)
}

// Logger is the minimal logging capability the Manager needs for the
// soft transaction-warning diagnostic. *zap.SugaredLogger satisfies
// this without package lock needing to import zap directly.
type Logger interface {
	Warnf(format string, args ...any)
}

// UnlockFunc releases a critical section. Any arguments passed are
// forwarded to the Manager's afterUnlock callback. Calling it more than
// once is a no-op: the contract requires exactly one call, and a second
// call would otherwise race the next holder's acquisition.
type UnlockFunc func(args ...any)

type noopLogger struct{}

func (noopLogger) Warnf(string, ...any) {}

// Manager serializes named critical sections over Backend.
type Manager struct {
	backend      Backend
	collection   string
	warningTimer time.Duration
	pollInterval time.Duration
	log          Logger

	mu      sync.Mutex
	waiters map[string]chan struct{}
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithWarningTimer sets the soft diagnostic threshold (config key
// transactionWarningTimer). Zero disables the warning.
func WithWarningTimer(d time.Duration) Option { return func(m *Manager) { m.warningTimer = d } }

// WithPollInterval sets the fallback re-scan interval used while
// waiting on a conflict that might be held by a different process,
// so that a different process's release is eventually noticed even
// without a local wake signal. Default 25ms.
func WithPollInterval(d time.Duration) Option { return func(m *Manager) { m.pollInterval = d } }

// WithLogger sets the logger used for the warning-timer diagnostic.
func WithLogger(l Logger) Option { return func(m *Manager) { m.log = l } }

// New returns a Manager that stores lock entries in collection via
// backend.
func New(backend Backend, collection string, opts ...Option) *Manager {
	m := &Manager{
		backend:      backend,
		collection:   collection,
		pollInterval: 25 * time.Millisecond,
		log:          noopLogger{},
		waiters:      make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Transaction acquires exclusive ownership of name across every process
// sharing the transaction collection, then invokes atomicLogic exactly
// once with a nil error and an UnlockFunc. The caller must call that
// UnlockFunc exactly once; afterUnlock (if non-nil) fires with the
// forwarded arguments before the next queued holder is promoted, so
// cleanup completes without starving the queue.
//
// If enqueueing fails, or ctx is cancelled or the scan fails while
// queued waiting for a turn, atomicLogic is invoked once with that
// error and an UnlockFunc that panics if called: the caller must treat
// that as a hard failure, not attempt to release a lock it never held.
func (m *Manager) Transaction(ctx context.Context, name string, atomicLogic func(err error, unlock UnlockFunc), afterUnlock func(args ...any)) error {
	self, err := m.enqueue(ctx, name)
	if err != nil {
		atomicLogic(err, panicUnlock)
		return err
	}

	if err := m.waitForTurn(ctx, name, self); err != nil {
		atomicLogic(err, panicUnlock)
		return err
	}

	var warnTimer *time.Timer
	if m.warningTimer > 0 {
		warnTimer = time.AfterFunc(m.warningTimer, func() {
			m.log.Warnf("transaction %q held longer than %s", name, m.warningTimer)
		})
	}

	var once sync.Once
	unlock := func(args ...any) {
		once.Do(func() {
			if warnTimer != nil {
				warnTimer.Stop()
			}
			m.release(ctx, name, self, afterUnlock, args)
		})
	}

	atomicLogic(nil, unlock)
	return nil
}

func panicUnlock(...any) {
	panic("lock: unlock called after a failed acquisition attempt")
}

// enqueue creates this call's lock entry.
func (m *Manager) enqueue(ctx context.Context, name string) (*types.LockEntry, error) {
	id := uuid.NewString()
	rec, err := m.backend.Create(ctx, m.collection, types.Record{"uuid": id, "name": name})
	if err != nil {
		return nil, errors.Wrap(err, "lock: failed to enqueue lock entry")
	}
	entry, err := parseEntry(rec)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// waitForTurn blocks until self has no conflicting predecessor for
// name. It rechecks on every local-wake signal (a same-process release
// for this name) or, failing that, on a fixed poll interval: the latter
// is what lets a different process's release eventually be noticed.
func (m *Manager) waitForTurn(ctx context.Context, name string, self *types.LockEntry) error {
	for {
		conflict, err := m.scan(ctx, name, self.UUID, func(e *types.LockEntry) bool { return e.ID < self.ID })
		if err != nil {
			return errors.Wrap(err, "lock: failed to scan lock entries")
		}
		if conflict == nil {
			return nil
		}

		select {
		case <-m.waitChan(name):
		case <-time.After(m.pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// release deletes self's lock entry, invokes afterUnlock, then promotes
// the next same-process waiter for name. If the release scan or
// destroy fails, afterUnlock still fires, but the in-process promotion
// is skipped since we can't trust who's next.
func (m *Manager) release(ctx context.Context, name string, self *types.LockEntry, afterUnlock func(args ...any), args []any) {
	_, scanErr := m.scan(ctx, name, self.UUID, func(*types.LockEntry) bool { return true })

	_, destroyErr := m.backend.Destroy(ctx, m.collection, &types.Criterion{Where: map[string]any{"uuid": self.UUID}})

	if afterUnlock != nil {
		afterUnlock(args...)
	}

	if scanErr == nil && destroyErr == nil {
		m.wake(name)
	}
}

// scan reads every lock entry for name and returns the lowest-id entry
// (other than self) satisfying pred, or nil if none matches.
func (m *Manager) scan(ctx context.Context, name, selfUUID string, pred func(*types.LockEntry) bool) (*types.LockEntry, error) {
	recs, err := m.backend.FindAll(ctx, m.collection, &types.Criterion{Where: map[string]any{"name": name}})
	if err != nil {
		return nil, err
	}

	var best *types.LockEntry
	for _, rec := range recs {
		entry, err := parseEntry(rec)
		if err != nil {
			continue
		}
		if entry.UUID == selfUUID {
			continue
		}
		if !pred(entry) {
			continue
		}
		if best == nil || entry.ID < best.ID {
			best = entry
		}
	}
	return best, nil
}

// wake unblocks every same-process waiter currently parked on name.
func (m *Manager) wake(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.waiters[name]; ok {
		close(ch)
		delete(m.waiters, name)
	}
}

// waitChan returns the channel the caller should select on to be woken
// by the next same-process release of name.
func (m *Manager) waitChan(name string) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.waiters[name]; ok {
		return ch
	}
	ch := make(chan struct{})
	m.waiters[name] = ch
	return ch
}

func parseEntry(rec types.Record) (*types.LockEntry, error) {
	uuidVal, _ := rec["uuid"].(string)
	nameVal, _ := rec["name"].(string)
	id, ok := toID(rec["id"])
	if !ok {
		return nil, errors.New("lock: adapter did not assign an id to the lock entry")
	}
	return &types.LockEntry{ID: id, UUID: uuidVal, Name: nameVal}, nil
}

func toID(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case int32:
		return int64(n), true
	}
	return 0, false
}
