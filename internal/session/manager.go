package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultLoginTimeout bounds how long a login attempt may take
const DefaultLoginTimeout = 20 * time.Second

// Manager owns the single session slot. One student is signed in at a time;
// concurrent logins for the same code collapse into one gateway call, and
// every change of the signed-in identity is broadcast to the registered
// listeners.
type Manager struct {
	client  *Client
	store   *Store
	logger  *zap.Logger
	timeout time.Duration
	group   singleflight.Group
	now     func() time.Time

	mu        sync.RWMutex
	current   *Identity
	listeners []func(*Identity)
}

// NewManager creates a session manager. A zero timeout falls back to the
// default 20 seconds.
func NewManager(client *Client, store *Store, timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}
	return &Manager{
		client:  client,
		store:   store,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
	}
}

// Authenticate signs a student in by code. Codes starting with "test" are
// resolved from the built-in test table without touching the network.
func (m *Manager) Authenticate(ctx context.Context, code string) (*Identity, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}

	if id := testIdentity(code, m.now()); id != nil {
		m.logger.Info("test login", zap.String("code", code), zap.String("yearLevel", id.YearLevel))
		m.setCurrent(id)
		return id, nil
	}

	v, err, _ := m.group.Do(strings.ToLower(code), func() (interface{}, error) {
		return m.login(ctx, code)
	})
	if err != nil {
		return nil, err
	}

	id := v.(*Identity)
	m.setCurrent(id)
	return id, nil
}

func (m *Manager) login(ctx context.Context, code string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	id, err := m.client.Login(ctx, code)
	if err != nil {
		return nil, err
	}

	// The login row may hold stale rewards; refresh them, but never fail
	// the login over it.
	if rewards, err := m.client.Rewards(ctx, code); err != nil {
		m.logger.Warn("could not refresh rewards", zap.String("code", code), zap.Error(err))
	} else if rewards != "" {
		id.Rewards = rewards
	}

	id.LoginTime = m.now().UTC().Format(time.RFC3339)
	return id, nil
}

// CurrentUser returns the signed-in identity, rehydrating from the stored
// slot if needed. Returns nil when nobody is signed in.
func (m *Manager) CurrentUser() *Identity {
	m.mu.RLock()
	current := m.current
	m.mu.RUnlock()
	if current != nil {
		return current
	}

	stored, err := m.store.Load()
	if err != nil {
		m.logger.Warn("could not load stored session", zap.Error(err))
		return nil
	}
	if stored == nil {
		return nil
	}

	m.mu.Lock()
	m.current = stored
	m.mu.Unlock()
	return stored
}

// IsAuthenticated reports whether an identity is held in memory
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// Logout clears the session slot and broadcasts the sign-out
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.current = nil
	listeners := append([]func(*Identity){}, m.listeners...)
	m.mu.Unlock()

	err := m.store.Clear()
	for _, fn := range listeners {
		fn(nil)
	}
	return err
}

// OnChange registers a listener invoked with the new identity after every
// login, and with nil after logout.
func (m *Manager) OnChange(fn func(*Identity)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Client exposes the underlying gateway client for data calls
func (m *Manager) Client() *Client {
	return m.client
}

func (m *Manager) setCurrent(id *Identity) {
	m.mu.Lock()
	m.current = id
	listeners := append([]func(*Identity){}, m.listeners...)
	m.mu.Unlock()

	if err := m.store.Save(id); err != nil {
		m.logger.Warn("could not persist session", zap.Error(err))
	}
	for _, fn := range listeners {
		fn(id)
	}
}
