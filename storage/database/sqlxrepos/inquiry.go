package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core/inquiry"
)

const inquiryColumns = `id, student_name, dob, gender, applying_for_class, previous_school, parent_name, relationship,
	email, phone, address, reference_source, reason, special_needs, status, inquiry_date`

type inquiryRepository struct {
	db *sqlx.DB
}

var _ inquiry.Repository = (*inquiryRepository)(nil) // interface compliance check

func NewInquiryRepository(db *sqlx.DB) inquiry.Repository {
	return &inquiryRepository{db: db}
}

func (repo *inquiryRepository) CreateInquiry(ctx context.Context, inq inquiry.Inquiry) (inquiry.Inquiry, error) {
	id, err := insert(ctx, repo.db, `
		INSERT INTO admission_inquiries (
			student_name, dob, gender, applying_for_class, previous_school, parent_name, relationship,
			email, phone, address, reference_source, reason, special_needs, status, inquiry_date
		) VALUES (
			:student_name, :dob, :gender, :applying_for_class, :previous_school, :parent_name, :relationship,
			:email, :phone, :address, :reference_source, :reason, :special_needs, :status, :inquiry_date
		)`,
		inq)
	if err != nil {
		return inquiry.Inquiry{}, errors.Wrap(err, "inserting inquiry")
	}
	inq.ID = id
	return inq, nil
}

func (repo *inquiryRepository) GetInquiry(ctx context.Context, id int) (inquiry.Inquiry, error) {
	var inq inquiry.Inquiry
	err := repo.db.GetContext(ctx, &inq, repo.db.Rebind("SELECT "+inquiryColumns+" FROM admission_inquiries WHERE id = ?"), id)
	if err != nil {
		return inquiry.Inquiry{}, trapNoRowsErr(err, inquiry.ErrNotFound, "finding inquiry")
	}
	return inq, nil
}

func (repo *inquiryRepository) QueryInquiries(ctx context.Context, filter *inquiry.QueryFilter) ([]inquiry.Inquiry, error) {
	query := "SELECT " + inquiryColumns + " FROM admission_inquiries"
	var args []interface{}
	if filter != nil && filter.Status != "" {
		query += " WHERE status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY inquiry_date DESC, id DESC"

	inquiries := make([]inquiry.Inquiry, 0)
	if err := repo.db.SelectContext(ctx, &inquiries, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying inquiries")
	}
	return inquiries, nil
}

func (repo *inquiryRepository) SetInquiryStatus(ctx context.Context, id int, status inquiry.Status) (inquiry.Inquiry, error) {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("UPDATE admission_inquiries SET status = ? WHERE id = ?"), string(status), id)
	if err != nil {
		return inquiry.Inquiry{}, errors.Wrap(err, "updating inquiry status")
	}
	if err = checkAffected(res, inquiry.ErrNotFound); err != nil {
		return inquiry.Inquiry{}, err
	}
	return repo.GetInquiry(ctx, id)
}

func (repo *inquiryRepository) DeleteInquiry(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, "admission_inquiries", id, inquiry.ErrNotFound)
}
