package dummydb

import (
	"context"
	"sort"

	"github.com/stephenschool/schoolconnect/core/inquiry"
)

type inquiryRepository struct {
	db *DB
}

var _ inquiry.Repository = (*inquiryRepository)(nil) // interface compliance check

func NewInquiryRepository(db *DB) inquiry.Repository {
	return &inquiryRepository{db: db}
}

func (repo *inquiryRepository) CreateInquiry(_ context.Context, inq inquiry.Inquiry) (inquiry.Inquiry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inq.ID = repo.db.nextID("admission_inquiries")
	repo.db.inquiries[inq.ID] = &inq
	return inq, nil
}

func (repo *inquiryRepository) GetInquiry(_ context.Context, id int) (inquiry.Inquiry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if inq, ok := repo.db.inquiries[id]; ok {
		return *inq, nil
	}
	return inquiry.Inquiry{}, inquiry.ErrNotFound
}

func (repo *inquiryRepository) QueryInquiries(_ context.Context, filter *inquiry.QueryFilter) ([]inquiry.Inquiry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	inquiries := make([]inquiry.Inquiry, 0, len(repo.db.inquiries))
	for _, inq := range repo.db.inquiries {
		if filter != nil && filter.Status != "" && string(inq.Status) != filter.Status {
			continue
		}
		inquiries = append(inquiries, *inq)
	}
	sort.Slice(inquiries, func(i, j int) bool { return inquiries[i].ID > inquiries[j].ID })
	return inquiries, nil
}

func (repo *inquiryRepository) SetInquiryStatus(_ context.Context, id int, status inquiry.Status) (inquiry.Inquiry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inq, ok := repo.db.inquiries[id]
	if !ok {
		return inquiry.Inquiry{}, inquiry.ErrNotFound
	}
	inq.Status = status
	return *inq, nil
}

func (repo *inquiryRepository) DeleteInquiry(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.inquiries[id]; !ok {
		return inquiry.ErrNotFound
	}
	delete(repo.db.inquiries, id)
	return nil
}
