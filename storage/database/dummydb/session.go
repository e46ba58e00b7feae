package dummydb

import (
	"context"
	"time"

	"github.com/stephenschool/schoolconnect/core/session"
)

type sessionStore struct {
	db *DB
}

var _ session.Store = (*sessionStore)(nil) // interface compliance check

func NewSessionStore(db *DB) session.Store {
	return &sessionStore{db: db}
}

func (store *sessionStore) Get(_ context.Context, token string) (session.Session, error) {
	store.db.RLock()
	defer store.db.RUnlock()

	if sess, ok := store.db.sessions[token]; ok {
		return sess, nil
	}
	return session.Session{}, session.ErrNotFound
}

func (store *sessionStore) Set(_ context.Context, sess session.Session) error {
	store.db.Lock()
	defer store.db.Unlock()

	store.db.sessions[sess.Token] = sess
	return nil
}

func (store *sessionStore) Touch(_ context.Context, token string, lastAccess, expiresAt time.Time) error {
	store.db.Lock()
	defer store.db.Unlock()

	if sess, ok := store.db.sessions[token]; ok {
		sess.LastAccess = lastAccess
		sess.ExpiresAt = expiresAt
		store.db.sessions[token] = sess
	}
	return nil
}

func (store *sessionStore) Delete(_ context.Context, token string) error {
	store.db.Lock()
	defer store.db.Unlock()

	delete(store.db.sessions, token)
	return nil
}

func (store *sessionStore) DeleteUser(_ context.Context, userID int) (int, error) {
	store.db.Lock()
	defer store.db.Unlock()

	var n int
	for token, sess := range store.db.sessions {
		if sess.UserID == userID {
			delete(store.db.sessions, token)
			n++
		}
	}
	return n, nil
}

func (store *sessionStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	store.db.Lock()
	defer store.db.Unlock()

	var n int
	for token, sess := range store.db.sessions {
		if sess.Expired(now) {
			delete(store.db.sessions, token)
			n++
		}
	}
	return n, nil
}
