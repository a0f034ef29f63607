package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/xdsai/persephone/internal/logging"
	"github.com/xdsai/persephone/internal/runtime"
	"github.com/xdsai/persephone/pkg/domain"
	"github.com/xdsai/persephone/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager hosts many runs of one story. Every operation loads the run from the
// store, applies a change and saves it back while holding the session lock.
// Unused locks are garbage collected through reference counting.
type Manager struct {
	story *domain.Story
	store ports.SaveStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker     ports.DistributedLocker
	lockTTL    time.Duration
	engineOpts []runtime.EngineOption
	logger     *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL for distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager and the engines it opens.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithEngineOptions adds options to every engine the Manager opens.
func WithEngineOptions(opts ...runtime.EngineOption) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// NewManager creates a Manager for story backed by store.
func NewManager(story *domain.Story, store ports.SaveStore, opts ...Option) *Manager {
	m := &Manager{
		story:   story,
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must Lock entry.mu, and call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Story returns the story every session plays.
func (m *Manager) Story() *domain.Story {
	return m.story
}

// Store returns the underlying save store.
func (m *Manager) Store() ports.SaveStore {
	return m.store
}

// open builds an engine for sessionID from its save, or a fresh run when
// nothing was saved yet. The bool reports whether a save existed.
func (m *Manager) open(ctx context.Context, sessionID string) (*runtime.Engine, bool, error) {
	opts := append([]runtime.EngineOption{
		runtime.WithLogger(m.logger.With("session_id", sessionID)),
	}, m.engineOpts...)
	eng := runtime.NewEngine(m.story, opts...)

	payload, err := m.store.Load(ctx, domain.SessionSaveKey(sessionID))
	if errors.Is(err, domain.ErrSaveNotFound) {
		return eng, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	eng.Deserialize(payload)
	return eng, true, nil
}

func (m *Manager) save(ctx context.Context, sessionID string, eng *runtime.Engine) error {
	payload, err := eng.Serialize()
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, domain.SessionSaveKey(sessionID), payload); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}
	return nil
}

// LoadOrStart returns the snapshot of a session, creating and persisting a
// fresh run when the session does not exist yet.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		eng, existed, err := m.open(ctx, sessionID)
		if err != nil {
			return err
		}
		snap = eng.Snapshot()
		if existed {
			return nil
		}
		return m.save(ctx, sessionID, eng)
	})
	return snap, err
}

// Load returns the snapshot of an existing session.
// Returns domain.ErrSaveNotFound if the session was never started.
func (m *Manager) Load(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		eng, existed, err := m.open(ctx, sessionID)
		if err != nil {
			return err
		}
		if !existed {
			return domain.ErrSaveNotFound
		}
		snap = eng.Snapshot()
		return nil
	})
	return snap, err
}

// Update opens the session, runs fn against its engine and saves the result.
// When fn returns an error nothing is saved.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(*runtime.Engine) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		eng, _, err := m.open(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := fn(eng); err != nil {
			return err
		}
		return m.save(ctx, sessionID, eng)
	})
}

// View opens the session read-only and runs fn against its engine.
// Query methods on the engine may still report diagnostics.
func (m *Manager) View(ctx context.Context, sessionID string, fn func(*runtime.Engine) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		eng, _, err := m.open(ctx, sessionID)
		if err != nil {
			return err
		}
		return fn(eng)
	})
}

// UpdateExisting is Update for sessions that were already started.
// Returns domain.ErrSaveNotFound instead of creating a fresh run.
func (m *Manager) UpdateExisting(ctx context.Context, sessionID string, fn func(*runtime.Engine) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		eng, existed, err := m.open(ctx, sessionID)
		if err != nil {
			return err
		}
		if !existed {
			return domain.ErrSaveNotFound
		}
		if err := fn(eng); err != nil {
			return err
		}
		return m.save(ctx, sessionID, eng)
	})
}

// ViewExisting is View for sessions that were already started.
func (m *Manager) ViewExisting(ctx context.Context, sessionID string, fn func(*runtime.Engine) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		eng, existed, err := m.open(ctx, sessionID)
		if err != nil {
			return err
		}
		if !existed {
			return domain.ErrSaveNotFound
		}
		return fn(eng)
	})
}

// Delete removes the session save.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, domain.SessionSaveKey(sessionID))
	})
}

// List returns the ids of every saved session.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	keys, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	prefix := domain.SessionSaveKey("")
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if id, ok := strings.CutPrefix(k, prefix); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
