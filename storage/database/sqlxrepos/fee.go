package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core/fee"
)

const (
	feeColumns     = "id, student_id, term, amount, due_date, status, created_at"
	paymentColumns = "id, fee_id, amount, payment_date, payment_method, transaction_id, receipt"
)

type feeRepository struct {
	db *sqlx.DB
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *sqlx.DB) fee.Repository {
	return &feeRepository{db: db}
}

func (repo *feeRepository) CreateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	id, err := insert(ctx, repo.db, `
		INSERT INTO fees (student_id, term, amount, due_date, status, created_at)
		VALUES (:student_id, :term, :amount, :due_date, :status, :created_at)`,
		f)
	if err != nil {
		return fee.Fee{}, errors.Wrap(err, "inserting fee")
	}
	f.ID = id
	return f, nil
}

func (repo *feeRepository) GetFee(ctx context.Context, id int) (fee.Fee, error) {
	return repo.getFee(ctx, repo.db, id)
}

func (repo *feeRepository) getFee(ctx context.Context, exec sqlx.ExtContext, id int) (fee.Fee, error) {
	var f fee.Fee
	err := sqlx.GetContext(ctx, exec, &f, exec.Rebind("SELECT "+feeColumns+" FROM fees WHERE id = ?"), id)
	if err != nil {
		return fee.Fee{}, trapNoRowsErr(err, fee.ErrNotFound, "finding fee")
	}
	return f, nil
}

func (repo *feeRepository) QueryFees(ctx context.Context, filter *fee.QueryFilter) ([]fee.Fee, error) {
	var where []string
	var args []interface{}
	if filter != nil {
		if filter.StudentID != 0 {
			where = append(where, "student_id = ?")
			args = append(args, filter.StudentID)
		}
		if filter.Status != "" {
			where = append(where, "status = ?")
			args = append(args, filter.Status)
		}
	}

	query := "SELECT " + feeColumns + " FROM fees"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY due_date, id"

	fees := make([]fee.Fee, 0)
	if err := repo.db.SelectContext(ctx, &fees, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying fees")
	}
	return fees, nil
}

// SetFeeStatus overwrites the status in one transaction. A fee with payments cannot go back to pending:
// the fee row is locked first (postgres), so a concurrent payment either committed before the check or waits for it.
func (repo *feeRepository) SetFeeStatus(ctx context.Context, id int, status fee.Status) (fee.Fee, error) {
	var f fee.Fee
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		lock := "SELECT id FROM fees WHERE id = ?"
		if tx.DriverName() == "postgres" {
			lock += " FOR UPDATE"
		}
		var locked int
		if err := tx.GetContext(ctx, &locked, tx.Rebind(lock), id); err != nil {
			return trapNoRowsErr(err, fee.ErrNotFound, "locking fee")
		}

		query := "UPDATE fees SET status = ? WHERE id = ?"
		if status == fee.StatusPending {
			query += " AND NOT EXISTS (SELECT 1 FROM fee_payments WHERE fee_payments.fee_id = fees.id)"
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(query), status, id)
		if err != nil {
			return errors.Wrap(err, "updating fee status")
		}
		if err = checkAffected(res, fee.ErrHasPayments); err != nil {
			return err
		}

		f, err = repo.getFee(ctx, tx, id)
		return err
	})
	if err != nil {
		return fee.Fee{}, err
	}
	return f, nil
}

// RecordPayment moves the fee from pending to paid with a conditional update, and inserts the payment
// in the same transaction. Of concurrent payments, only the one whose update matched the pending row commits.
func (repo *feeRepository) RecordPayment(ctx context.Context, p fee.Payment) (fee.Payment, error) {
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind("UPDATE fees SET status = ? WHERE id = ? AND status = ?"),
			fee.StatusPaid, p.FeeID, fee.StatusPending)
		if err != nil {
			return errors.Wrap(err, "marking fee paid")
		}
		if err = checkAffected(res, fee.ErrAlreadyPaid); err != nil {
			if _, getErr := repo.getFee(ctx, tx, p.FeeID); getErr != nil {
				return getErr
			}
			return err
		}

		id, err := insert(ctx, tx, `
			INSERT INTO fee_payments (fee_id, amount, payment_date, payment_method, transaction_id, receipt)
			VALUES (:fee_id, :amount, :payment_date, :payment_method, :transaction_id, :receipt)`,
			p)
		if err != nil {
			return errors.Wrap(err, "inserting payment")
		}
		p.ID = id
		return nil
	})
	if err != nil {
		return fee.Payment{}, err
	}
	return p, nil
}

func (repo *feeRepository) QueryPayments(ctx context.Context, feeIDs ...int) ([]fee.Payment, error) {
	payments := make([]fee.Payment, 0)
	if len(feeIDs) == 0 {
		return payments, nil
	}
	query, args, err := sqlx.In("SELECT "+paymentColumns+" FROM fee_payments WHERE fee_id IN (?) ORDER BY id", feeIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building payments query")
	}
	if err = repo.db.SelectContext(ctx, &payments, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	return payments, nil
}
