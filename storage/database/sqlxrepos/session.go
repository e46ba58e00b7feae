package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core/session"
)

type sessionStore struct {
	db *sqlx.DB
}

var _ session.Store = (*sessionStore)(nil) // interface compliance check

func NewSessionStore(db *sqlx.DB) session.Store {
	return &sessionStore{db: db}
}

func (store *sessionStore) Get(ctx context.Context, token string) (session.Session, error) {
	var sess session.Session
	query := store.db.Rebind("SELECT token, user_id, last_access, expires_at FROM sessions WHERE token = ?")
	if err := store.db.GetContext(ctx, &sess, query, token); err != nil {
		return session.Session{}, trapNoRowsErr(err, session.ErrNotFound, "finding session")
	}
	return sess, nil
}

func (store *sessionStore) Set(ctx context.Context, sess session.Session) error {
	return withTx(ctx, store.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM sessions WHERE token = ?"), sess.Token); err != nil {
			return errors.Wrap(err, "replacing session")
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO sessions (token, user_id, last_access, expires_at)
			VALUES (:token, :user_id, :last_access, :expires_at)`,
			sess)
		return errors.Wrap(err, "inserting session")
	})
}

func (store *sessionStore) Touch(ctx context.Context, token string, lastAccess, expiresAt time.Time) error {
	query := store.db.Rebind("UPDATE sessions SET last_access = ?, expires_at = ? WHERE token = ?")
	_, err := store.db.ExecContext(ctx, query, lastAccess, expiresAt, token)
	return errors.Wrap(err, "touching session")
}

func (store *sessionStore) Delete(ctx context.Context, token string) error {
	_, err := store.db.ExecContext(ctx, store.db.Rebind("DELETE FROM sessions WHERE token = ?"), token)
	return errors.Wrap(err, "deleting session")
}

func (store *sessionStore) DeleteUser(ctx context.Context, userID int) (int, error) {
	return store.deleteWhere(ctx, "user_id = ?", userID)
}

func (store *sessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return store.deleteWhere(ctx, "expires_at <= ?", now)
}

func (store *sessionStore) deleteWhere(ctx context.Context, cond string, arg interface{}) (int, error) {
	res, err := store.db.ExecContext(ctx, store.db.Rebind("DELETE FROM sessions WHERE "+cond), arg)
	if err != nil {
		return 0, errors.Wrap(err, "deleting sessions")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "deleting sessions")
}
