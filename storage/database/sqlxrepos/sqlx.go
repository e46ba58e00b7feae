// Package sqlxrepos implements the domain repositories over database/sql with sqlx.
// Queries are written with "?" placeholders and rebound to the driver's bindvar,
// so the same repositories serve both postgres and sqlite3.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint failure on either engine.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// trapNoRowsErr maps the "no rows" error to notFound.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// withTx runs fn in a transaction, committed only when fn succeeds.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if err = fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// insert runs a named INSERT ... RETURNING id and returns the new id.
func insert(ctx context.Context, exec sqlx.ExtContext, query string, arg interface{}) (int, error) {
	q, args, err := sqlx.Named(query+" RETURNING id", arg)
	if err != nil {
		return 0, err
	}
	var id int
	err = exec.QueryRowxContext(ctx, exec.Rebind(q), args...).Scan(&id)
	return id, err
}

// update runs a named statement and returns notFound when it affected no row.
func update(ctx context.Context, exec sqlx.ExtContext, query string, arg interface{}, notFound error) error {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return err
	}
	res, err := exec.ExecContext(ctx, exec.Rebind(q), args...)
	if err != nil {
		return err
	}
	return checkAffected(res, notFound)
}

// deleteByID deletes the row id of table, or returns notFound.
func deleteByID(ctx context.Context, exec sqlx.ExtContext, table string, id int, notFound error) error {
	res, err := exec.ExecContext(ctx, exec.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", table)
	}
	return checkAffected(res, notFound)
}

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
