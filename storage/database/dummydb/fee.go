package dummydb

import (
	"context"
	"sort"

	"github.com/stephenschool/schoolconnect/core/fee"
	"github.com/stephenschool/schoolconnect/core/student"
)

type feeRepository struct {
	db *DB
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *DB) fee.Repository {
	return &feeRepository{db: db}
}

func (repo *feeRepository) CreateFee(_ context.Context, f fee.Fee) (fee.Fee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[f.StudentID]; !ok {
		return fee.Fee{}, student.ErrNotFound
	}
	f.ID = repo.db.nextID("fees")
	repo.db.fees[f.ID] = &f
	return f, nil
}

func (repo *feeRepository) GetFee(_ context.Context, id int) (fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if f, ok := repo.db.fees[id]; ok {
		return *f, nil
	}
	return fee.Fee{}, fee.ErrNotFound
}

func (repo *feeRepository) QueryFees(_ context.Context, filter *fee.QueryFilter) ([]fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	fees := make([]fee.Fee, 0, len(repo.db.fees))
	for _, f := range repo.db.fees {
		if filter != nil {
			if filter.StudentID != 0 && f.StudentID != filter.StudentID {
				continue
			}
			if filter.Status != "" && string(f.Status) != filter.Status {
				continue
			}
		}
		fees = append(fees, *f)
	}
	sort.Slice(fees, func(i, j int) bool {
		if !fees[i].DueDate.Equal(fees[j].DueDate) {
			return fees[i].DueDate.Before(fees[j].DueDate)
		}
		return fees[i].ID < fees[j].ID
	})
	return fees, nil
}

func (repo *feeRepository) SetFeeStatus(_ context.Context, id int, status fee.Status) (fee.Fee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	f, ok := repo.db.fees[id]
	if !ok {
		return fee.Fee{}, fee.ErrNotFound
	}
	if status == fee.StatusPending {
		for _, p := range repo.db.payments {
			if p.FeeID == id {
				return fee.Fee{}, fee.ErrHasPayments
			}
		}
	}
	f.Status = status
	return *f, nil
}

func (repo *feeRepository) RecordPayment(_ context.Context, p fee.Payment) (fee.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	f, ok := repo.db.fees[p.FeeID]
	if !ok {
		return fee.Payment{}, fee.ErrNotFound
	}
	if f.Status != fee.StatusPending {
		return fee.Payment{}, fee.ErrAlreadyPaid
	}
	f.Status = fee.StatusPaid
	p.ID = repo.db.nextID("fee_payments")
	repo.db.payments[p.ID] = &p
	return p, nil
}

func (repo *feeRepository) QueryPayments(_ context.Context, feeIDs ...int) ([]fee.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make(map[int]bool, len(feeIDs))
	for _, id := range feeIDs {
		ids[id] = true
	}
	payments := make([]fee.Payment, 0)
	for _, p := range repo.db.payments {
		if ids[p.FeeID] {
			payments = append(payments, *p)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, nil
}
