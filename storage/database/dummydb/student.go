package dummydb

import (
	"context"
	"sort"

	"github.com/stephenschool/schoolconnect/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) GetProfile(_ context.Context, filter student.GetFilter) (student.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != 0 {
		if p, ok := repo.db.students[filter.ID]; ok {
			return *p, nil
		}
		return student.Profile{}, student.ErrNotFound
	}
	if filter.UserID != 0 {
		for _, p := range repo.db.students {
			if p.UserID == filter.UserID {
				return *p, nil
			}
		}
	}
	return student.Profile{}, student.ErrNotFound
}

func (repo *studentRepository) QueryProfiles(_ context.Context, filter *student.QueryFilter) ([]student.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	profiles := make([]student.Profile, 0, len(repo.db.students))
	for _, p := range repo.db.students {
		if filter != nil {
			if filter.Class != "" && p.Class != filter.Class {
				continue
			}
			if filter.Section != "" && p.Section != filter.Section {
				continue
			}
		}
		profiles = append(profiles, *p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
	return profiles, nil
}

func (repo *studentRepository) UpdateProfile(_ context.Context, p student.Profile) (student.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.students[p.ID]
	if !ok {
		return student.Profile{}, student.ErrNotFound
	}
	p.UserID = orig.UserID
	p.AdmissionDate = orig.AdmissionDate
	repo.db.students[p.ID] = &p
	return p, nil
}

func (repo *studentRepository) CreateRecord(_ context.Context, r student.AcademicRecord) (student.AcademicRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[r.StudentID]; !ok {
		return student.AcademicRecord{}, student.ErrNotFound
	}
	r.ID = repo.db.nextID("academic_records")
	repo.db.records[r.ID] = &r
	return r, nil
}

func (repo *studentRepository) GetRecord(_ context.Context, id int) (student.AcademicRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.records[id]; ok {
		return *r, nil
	}
	return student.AcademicRecord{}, student.ErrRecordNotFound
}

func (repo *studentRepository) UpdateRecord(_ context.Context, r student.AcademicRecord) (student.AcademicRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.records[r.ID]
	if !ok {
		return student.AcademicRecord{}, student.ErrRecordNotFound
	}
	r.StudentID = orig.StudentID
	r.RecordDate = orig.RecordDate
	repo.db.records[r.ID] = &r
	return r, nil
}

func (repo *studentRepository) QueryRecords(_ context.Context, studentID int) ([]student.AcademicRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]student.AcademicRecord, 0)
	for _, r := range repo.db.records {
		if r.StudentID == studentID {
			records = append(records, *r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}
