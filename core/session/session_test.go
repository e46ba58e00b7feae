package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/session"
	"github.com/stephenschool/schoolconnect/storage/database/dummydb"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func setup(idle time.Duration) (*session.Manager, session.Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2023, time.August, 15, 8, 0, 0, 0, time.UTC)}
	store := dummydb.NewSessionStore(dummydb.Open())
	m := session.NewManager(store, idle, session.WithClock(clock.Now), session.WithTouchInterval(0))
	return m, store, clock
}

func TestManager_Create(t *testing.T) {
	m, store, clock := setup(time.Hour)
	ctx := context.Background()

	t1, err := m.Create(ctx, 1)
	require.NoError(t, err)
	t2, err := m.Create(ctx, 1)
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
	assert.Len(t, t1, 43) // 32 bytes, unpadded base64url
	assert.Regexp(t, `^[A-Za-z0-9_-]+$`, t1)

	sess, err := store.Get(ctx, t1)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.UserID)
	assert.Equal(t, clock.now, sess.LastAccess)
	assert.Equal(t, clock.now.Add(time.Hour), sess.ExpiresAt)
}

func TestManager_Resolve(t *testing.T) {
	m, store, clock := setup(time.Hour)
	ctx := context.Background()
	token, err := m.Create(ctx, 7)
	require.NoError(t, err)

	t.Run("empty token", func(t *testing.T) {
		_, err := m.Resolve(ctx, "")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := m.Resolve(ctx, "lol")
		assert.ErrorIs(t, err, session.ErrNotFound)
		assert.ErrorIs(t, err, core.ErrUnauthenticated, "an authentication failure, not a missing resource")
	})

	t.Run("sliding expiry", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			clock.advance(50 * time.Minute)
			uid, err := m.Resolve(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, 7, uid)
		}
		sess, err := store.Get(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, clock.now.Add(time.Hour), sess.ExpiresAt)
	})

	t.Run("idle too long", func(t *testing.T) {
		clock.advance(time.Hour)
		_, err := m.Resolve(ctx, token)
		assert.ErrorIs(t, err, session.ErrNotFound)

		// expired sessions are removed on access
		_, err = store.Get(ctx, token)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestManager_Resolve_touchInterval(t *testing.T) {
	clock := &fakeClock{now: time.Date(2023, time.August, 15, 8, 0, 0, 0, time.UTC)}
	store := dummydb.NewSessionStore(dummydb.Open())
	m := session.NewManager(store, time.Hour, session.WithClock(clock.Now))
	ctx := context.Background()

	token, err := m.Create(ctx, 1)
	require.NoError(t, err)
	created := clock.now

	clock.advance(10 * time.Second)
	_, err = m.Resolve(ctx, token)
	require.NoError(t, err)
	sess, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, created, sess.LastAccess, "touched before the interval elapsed")

	clock.advance(session.DefaultTouchInterval)
	_, err = m.Resolve(ctx, token)
	require.NoError(t, err)
	sess, err = store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, clock.now, sess.LastAccess)
}

func TestManager_Destroy(t *testing.T) {
	m, _, _ := setup(time.Hour)
	ctx := context.Background()

	token, err := m.Create(ctx, 1)
	require.NoError(t, err)
	other, err := m.Create(ctx, 1)
	require.NoError(t, err)
	stranger, err := m.Create(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, m.Destroy(ctx, token))
	require.NoError(t, m.Destroy(ctx, token), "destroy is idempotent")
	require.NoError(t, m.Destroy(ctx, ""))

	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = m.Resolve(ctx, other)
	assert.NoError(t, err)

	require.NoError(t, m.DestroyUser(ctx, 1))
	_, err = m.Resolve(ctx, other)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = m.Resolve(ctx, stranger)
	assert.NoError(t, err)
}

func TestManager_Prune(t *testing.T) {
	m, _, clock := setup(time.Hour)
	ctx := context.Background()

	_, err := m.Create(ctx, 1)
	require.NoError(t, err)
	clock.advance(30 * time.Minute)
	fresh, err := m.Create(ctx, 2)
	require.NoError(t, err)

	clock.advance(45 * time.Minute)
	n, err := m.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = m.Resolve(ctx, fresh)
	assert.NoError(t, err)
}
