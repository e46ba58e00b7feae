package session

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core"
)

const (
	tokenBytes = 32 // 256 bits of entropy

	// DefaultTouchInterval bounds how often Resolve writes the last access time back to the store.
	DefaultTouchInterval = time.Minute
)

// ErrNotFound is returned for unknown or expired tokens. It is an authentication failure, not a missing resource.
var ErrNotFound = core.NewError(core.ErrUnauthenticated, "session not found")

// Session binds an opaque token to a user until it has been idle for too long.
type Session struct {
	Token      string    `db:"token"`
	UserID     int       `db:"user_id"`
	LastAccess time.Time `db:"last_access"` // UTC
	ExpiresAt  time.Time `db:"expires_at"`  // UTC
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store is a key-value capability over sessions keyed by token.
// A session's TTL is carried by its ExpiresAt. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns ErrNotFound if no session is stored under token. Expired sessions may be returned.
	Get(ctx context.Context, token string) (Session, error)
	// Set stores sess under sess.Token, replacing any previous value.
	Set(ctx context.Context, sess Session) error
	// Touch refreshes the last access and expiry of an existing session. It is a no-op if token is absent.
	Touch(ctx context.Context, token string, lastAccess, expiresAt time.Time) error
	// Delete removes the session stored under token. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
	// DeleteUser removes every session of a user.
	DeleteUser(ctx context.Context, userID int) (int, error)
	// DeleteExpired removes every session expired at now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Manager handles the session lifecycle: create, resolve (sliding idle expiry), destroy.
type Manager struct {
	store         Store
	idleTimeout   time.Duration
	touchInterval time.Duration
	now           core.Clock
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the function the Manager reads the current time from.
func WithClock(now core.Clock) Option {
	return func(m *Manager) { m.now = now }
}

// WithTouchInterval sets how often Resolve refreshes a session's last access.
func WithTouchInterval(d time.Duration) Option {
	return func(m *Manager) { m.touchInterval = d }
}

func NewManager(store Store, idleTimeout time.Duration, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		idleTimeout:   idleTimeout,
		touchInterval: DefaultTouchInterval,
		now:           core.UTCNow,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IdleTimeout is the maximum time a session may stay unused.
func (m *Manager) IdleTimeout() time.Duration { return m.idleTimeout }

// Create starts a new session for userID and returns its token.
func (m *Manager) Create(ctx context.Context, userID int) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	now := m.now()
	sess := Session{
		Token:      token,
		UserID:     userID,
		LastAccess: now,
		ExpiresAt:  now.Add(m.idleTimeout),
	}
	if err = m.store.Set(ctx, sess); err != nil {
		return "", errors.Wrap(err, "storing session")
	}
	return token, nil
}

// Resolve returns the id of the user bound to token.
// It fails with ErrNotFound when the token is unknown or the session expired; an expired session is deleted.
func (m *Manager) Resolve(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, ErrNotFound
	}
	sess, err := m.store.Get(ctx, token)
	if err != nil {
		return 0, err
	}

	now := m.now()
	if sess.Expired(now) {
		if err = m.store.Delete(ctx, token); err != nil {
			return 0, errors.Wrap(err, "deleting expired session")
		}
		return 0, ErrNotFound
	}

	if now.Sub(sess.LastAccess) >= m.touchInterval {
		if err = m.store.Touch(ctx, token, now, now.Add(m.idleTimeout)); err != nil {
			return 0, errors.Wrap(err, "touching session")
		}
	}
	return sess.UserID, nil
}

// Destroy ends the session bound to token. It is idempotent.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return errors.Wrap(m.store.Delete(ctx, token), "deleting session")
}

// DestroyUser ends every session of a user.
func (m *Manager) DestroyUser(ctx context.Context, userID int) error {
	_, err := m.store.DeleteUser(ctx, userID)
	return errors.Wrap(err, "deleting user sessions")
}

// Prune deletes expired sessions and returns how many were removed.
func (m *Manager) Prune(ctx context.Context) (int, error) {
	n, err := m.store.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, errors.Wrap(err, "deleting expired sessions")
	}
	return n, nil
}

func newToken() (string, error) {
	key := securecookie.GenerateRandomKey(tokenBytes)
	if key == nil {
		return "", errors.New("generating session token")
	}
	return base64.RawURLEncoding.EncodeToString(key), nil
}
