package auth

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/session"
	"github.com/stephenschool/schoolconnect/core/user"
)

var (
	// errors
	ErrInvalidCredentials = core.NewError(core.ErrInvalidCredentials, "invalid username or password")
	ErrUnauthenticated    = core.NewError(core.ErrUnauthenticated, "user not authenticated")
	ErrForbidden          = core.NewError(core.ErrForbidden, "permission denied")

	dummyHash     []byte
	dummyHashOnce sync.Once
)

// Service authenticates users and binds them to sessions.
type Service struct {
	users    *user.Service
	sessions *session.Manager
}

func NewService(users *user.Service, sessions *session.Manager) *Service {
	return &Service{users: users, sessions: sessions}
}

// Login checks the credentials and starts a session. Unknown username and wrong password fail the same way.
func (svc *Service) Login(ctx context.Context, username, pwd string) (user.User, string, error) {
	usr, err := svc.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			return user.User{}, "", errors.Wrap(err, "finding user by username")
		}
		// spend the same time as a real check
		user.VerifyPassword(pwd, getDummyHash())
		return user.User{}, "", ErrInvalidCredentials
	}
	if !usr.CheckPassword(pwd) {
		return user.User{}, "", ErrInvalidCredentials
	}

	if usr, err = svc.users.SetLastLogin(ctx, usr); err != nil {
		return user.User{}, "", errors.Wrap(err, "setting last login")
	}
	token, err := svc.sessions.Create(ctx, usr.ID)
	if err != nil {
		return user.User{}, "", errors.Wrap(err, "creating session")
	}
	return usr, token, nil
}

// Register creates a student with its profile and starts a session for them.
// nu must have been validated.
func (svc *Service) Register(ctx context.Context, nu user.NewUser) (user.User, string, error) {
	nu.Role = user.RoleStudent
	usr, err := svc.users.Create(ctx, nu)
	if err != nil {
		return user.User{}, "", errors.Wrap(err, "creating user")
	}
	token, err := svc.sessions.Create(ctx, usr.ID)
	if err != nil {
		return user.User{}, "", errors.Wrap(err, "creating session")
	}
	return usr, token, nil
}

// Logout ends the session bound to token. Logging out twice is not an error.
func (svc *Service) Logout(ctx context.Context, token string) error {
	return svc.sessions.Destroy(ctx, token)
}

// CurrentUser returns the user bound to token.
func (svc *Service) CurrentUser(ctx context.Context, token string) (user.User, error) {
	uid, err := svc.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return user.User{}, ErrUnauthenticated
		}
		return user.User{}, errors.Wrap(err, "resolving session")
	}
	usr, err := svc.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUnauthenticated
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	return usr, nil
}

// Authorize returns the user bound to token if their role is one of roles (any role when roles is empty).
// It fails with ErrUnauthenticated without a valid session and ErrForbidden on a role mismatch.
func (svc *Service) Authorize(ctx context.Context, token string, roles ...user.Role) (user.User, error) {
	usr, err := svc.CurrentUser(ctx, token)
	if err != nil {
		return user.User{}, err
	}
	if !usr.HasAnyRole(roles...) {
		return user.User{}, ErrForbidden
	}
	return usr, nil
}

// ResetPassword replaces the password of usr and ends all their sessions.
func (svc *Service) ResetPassword(ctx context.Context, usr user.User, pwd string) (user.User, error) {
	usr, err := svc.users.SetPassword(ctx, usr, pwd)
	if err != nil {
		return user.User{}, errors.Wrap(err, "setting password")
	}
	if err = svc.sessions.DestroyUser(ctx, usr.ID); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

// DeleteUsers deletes users along with their sessions.
func (svc *Service) DeleteUsers(ctx context.Context, ids ...int) (int, error) {
	for _, id := range ids {
		if err := svc.sessions.DestroyUser(ctx, id); err != nil {
			return 0, err
		}
	}
	n, err := svc.users.Delete(ctx, ids...)
	return n, errors.Wrap(err, "deleting users")
}

func getDummyHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = user.HashPassword("not-a-real-password")
	})
	return dummyHash
}
