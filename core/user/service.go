package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/student"
)

var (
	// errors
	ErrNotFound         = core.NewError(core.ErrNotFound, "user not found")
	ErrUsernameExists   = core.NewError(core.ErrConflict, "a user with this username already exists")
	ErrPasswordMismatch = core.NewError(core.ErrBadRequest, "passwords do not match")
)

type Repository interface {
	// CheckUsernameUniqueness returns ErrUsernameExists when a user other than excludedUsers holds username.
	CheckUsernameUniqueness(ctx context.Context, username string, excludedUsers ...User) error
	// CreateUser inserts usr and, when profile is not nil, its student profile as one unit.
	// Returns ErrUsernameExists if the username is taken, in which case nothing is created.
	CreateUser(ctx context.Context, usr User, profile *student.Profile) (User, error)
	GetUser(ctx context.Context, filter GetFilter) (User, error)
	// QueryUsers applies AND operation on available QueryFilter fields.
	// QueryFilter.Search does a case-insensitive match on one of User.Name, User.Username or User.Email.
	QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
	UpdateUser(ctx context.Context, usr User) (User, error)
	// DeleteUsersByID deletes users and everything they own (student profile, fees, sessions...).
	DeleteUsersByID(ctx context.Context, ids ...int) (int, error)
}

type Service struct {
	repo Repository
	now  core.Clock
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: core.UTCNow}
}

func (svc *Service) CheckUniqueness(ctx context.Context, uname string, exclUsers ...User) error {
	return svc.repo.CheckUsernameUniqueness(ctx, uname, exclUsers...)
}

// Create creates a User. A student gets its student profile in the same unit of work:
// the one described by nu.Student, or a default one.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := svc.now()
	usr := User{
		Username:  nu.Username,
		Role:      nu.Role,
		Name:      nu.Name,
		Email:     nu.Email,
		Phone:     nu.Phone,
		Address:   nu.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !usr.Role.IsValid() {
		return User{}, errors.Errorf("creating user with %s", usr.Role)
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	var profile *student.Profile
	if usr.IsStudent() {
		p := student.NewDefaultProfile(nu.Student, now)
		profile = &p
	}
	return svc.repo.CreateUser(ctx, usr, profile)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(uname, true /* lower */)})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

func (svc *Service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = svc.now()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	now := svc.now()
	usr.LastLogin = &now
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) (int, error) {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}
