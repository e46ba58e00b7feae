package student

import (
	"context"

	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core"
)

var (
	// errors
	ErrNotFound       = core.NewError(core.ErrNotFound, "student not found")
	ErrRecordNotFound = core.NewError(core.ErrNotFound, "academic record not found")
)

// Repository persists student profiles and academic records.
// Profiles are created together with their user (see user.Repository.CreateUser).
type Repository interface {
	GetProfile(ctx context.Context, filter GetFilter) (Profile, error)
	QueryProfiles(ctx context.Context, filter *QueryFilter) ([]Profile, error)
	UpdateProfile(ctx context.Context, p Profile) (Profile, error)

	CreateRecord(ctx context.Context, r AcademicRecord) (AcademicRecord, error)
	GetRecord(ctx context.Context, id int) (AcademicRecord, error)
	UpdateRecord(ctx context.Context, r AcademicRecord) (AcademicRecord, error)
	QueryRecords(ctx context.Context, studentID int) ([]AcademicRecord, error)
}

type Service struct {
	repo Repository
	now  core.Clock
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: core.UTCNow}
}

func (svc *Service) GetByID(ctx context.Context, id int) (Profile, error) {
	return svc.repo.GetProfile(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUserID(ctx context.Context, userID int) (Profile, error) {
	return svc.repo.GetProfile(ctx, GetFilter{UserID: userID})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Profile, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryProfiles(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int, up UpdateProfile) (Profile, error) {
	p, err := svc.repo.GetProfile(ctx, GetFilter{ID: id})
	if err != nil {
		return Profile{}, errors.Wrap(err, "finding student")
	}
	return svc.repo.UpdateProfile(ctx, up.apply(p))
}

func (svc *Service) CreateRecord(ctx context.Context, nr NewAcademicRecord) (AcademicRecord, error) {
	if _, err := svc.repo.GetProfile(ctx, GetFilter{ID: nr.StudentID}); err != nil {
		return AcademicRecord{}, errors.Wrap(err, "finding student")
	}
	return svc.repo.CreateRecord(ctx, AcademicRecord{
		StudentID:  nr.StudentID,
		Subject:    nr.Subject,
		Term:       nr.Term,
		Grade:      nr.Grade,
		Marks:      nr.Marks,
		MaxMarks:   nr.MaxMarks,
		Remarks:    nr.Remarks,
		RecordDate: svc.now(),
	})
}

func (svc *Service) UpdateRecord(ctx context.Context, id int, ur UpdateAcademicRecord) (AcademicRecord, error) {
	r, err := svc.repo.GetRecord(ctx, id)
	if err != nil {
		return AcademicRecord{}, errors.Wrap(err, "finding academic record")
	}
	r.Subject = ur.Subject
	r.Term = ur.Term
	r.Grade = ur.Grade
	r.Marks = ur.Marks
	r.MaxMarks = ur.MaxMarks
	r.Remarks = ur.Remarks
	return svc.repo.UpdateRecord(ctx, r)
}

func (svc *Service) Records(ctx context.Context, studentID int) ([]AcademicRecord, error) {
	return svc.repo.QueryRecords(ctx, studentID)
}
