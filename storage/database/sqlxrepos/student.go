package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core/student"
)

const (
	profileColumns = "id, user_id, class, section, roll_number, parent_name, dob, gender, admission_date, previous_school"
	recordColumns  = "id, student_id, subject, term, grade, marks, max_marks, remarks, record_date"

	insertProfileQuery = `
		INSERT INTO students (user_id, class, section, roll_number, parent_name, dob, gender, admission_date, previous_school)
		VALUES (:user_id, :class, :section, :roll_number, :parent_name, :dob, :gender, :admission_date, :previous_school)`
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) GetProfile(ctx context.Context, filter student.GetFilter) (student.Profile, error) {
	var query string
	var arg int
	switch {
	case filter.ID != 0:
		query, arg = "SELECT "+profileColumns+" FROM students WHERE id = ?", filter.ID
	case filter.UserID != 0:
		query, arg = "SELECT "+profileColumns+" FROM students WHERE user_id = ?", filter.UserID
	default:
		return student.Profile{}, student.ErrNotFound
	}

	var p student.Profile
	if err := repo.db.GetContext(ctx, &p, repo.db.Rebind(query), arg); err != nil {
		return student.Profile{}, trapNoRowsErr(err, student.ErrNotFound, "finding student")
	}
	return p, nil
}

func (repo *studentRepository) QueryProfiles(ctx context.Context, filter *student.QueryFilter) ([]student.Profile, error) {
	var where []string
	var args []interface{}
	if filter != nil {
		if filter.Class != "" {
			where = append(where, "class = ?")
			args = append(args, filter.Class)
		}
		if filter.Section != "" {
			where = append(where, "section = ?")
			args = append(args, filter.Section)
		}
	}

	query := "SELECT " + profileColumns + " FROM students"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	profiles := make([]student.Profile, 0)
	if err := repo.db.SelectContext(ctx, &profiles, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return profiles, nil
}

func (repo *studentRepository) UpdateProfile(ctx context.Context, p student.Profile) (student.Profile, error) {
	err := update(ctx, repo.db, `
		UPDATE students SET
			class = :class, section = :section, roll_number = :roll_number, parent_name = :parent_name,
			dob = :dob, gender = :gender, previous_school = :previous_school
		WHERE id = :id`,
		p, student.ErrNotFound)
	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			return student.Profile{}, err
		}
		return student.Profile{}, errors.Wrap(err, "updating student")
	}
	return repo.GetProfile(ctx, student.GetFilter{ID: p.ID})
}

func (repo *studentRepository) CreateRecord(ctx context.Context, r student.AcademicRecord) (student.AcademicRecord, error) {
	id, err := insert(ctx, repo.db, `
		INSERT INTO academic_records (student_id, subject, term, grade, marks, max_marks, remarks, record_date)
		VALUES (:student_id, :subject, :term, :grade, :marks, :max_marks, :remarks, :record_date)`,
		r)
	if err != nil {
		return student.AcademicRecord{}, errors.Wrap(err, "inserting academic record")
	}
	r.ID = id
	return r, nil
}

func (repo *studentRepository) GetRecord(ctx context.Context, id int) (student.AcademicRecord, error) {
	var r student.AcademicRecord
	err := repo.db.GetContext(ctx, &r, repo.db.Rebind("SELECT "+recordColumns+" FROM academic_records WHERE id = ?"), id)
	if err != nil {
		return student.AcademicRecord{}, trapNoRowsErr(err, student.ErrRecordNotFound, "finding academic record")
	}
	return r, nil
}

func (repo *studentRepository) UpdateRecord(ctx context.Context, r student.AcademicRecord) (student.AcademicRecord, error) {
	err := update(ctx, repo.db, `
		UPDATE academic_records SET
			subject = :subject, term = :term, grade = :grade, marks = :marks, max_marks = :max_marks, remarks = :remarks
		WHERE id = :id`,
		r, student.ErrRecordNotFound)
	if err != nil {
		if errors.Is(err, student.ErrRecordNotFound) {
			return student.AcademicRecord{}, err
		}
		return student.AcademicRecord{}, errors.Wrap(err, "updating academic record")
	}
	return repo.GetRecord(ctx, r.ID)
}

func (repo *studentRepository) QueryRecords(ctx context.Context, studentID int) ([]student.AcademicRecord, error) {
	records := make([]student.AcademicRecord, 0)
	query := "SELECT " + recordColumns + " FROM academic_records WHERE student_id = ? ORDER BY id"
	if err := repo.db.SelectContext(ctx, &records, repo.db.Rebind(query), studentID); err != nil {
		return nil, errors.Wrap(err, "querying academic records")
	}
	return records, nil
}
