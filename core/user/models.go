package user

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/student"
)

// Role is the access level of a User. The zero value is not a valid role.
type Role uint8

const (
	RoleStudent Role = iota + 1
	RoleAdmin
)

var (
	Roles     = []Role{RoleStudent, RoleAdmin}
	roleNames = map[Role]string{
		RoleStudent: "student",
		RoleAdmin:   "admin",
	}
)

func ParseRole(s string) (Role, error) {
	s = core.CleanString(s, true /* lower */)
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return 0, errors.Errorf("invalid role %q", s)
}

func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, errors.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText parses a role name. An empty name yields the zero Role.
func (r *Role) UnmarshalText(text []byte) error {
	if core.CleanString(string(text)) == "" {
		*r = 0
		return nil
	}
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// Scan implements sql.Scanner.
func (r *Role) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return errors.Errorf("cannot scan %T into Role", src)
	}
}

// Value implements driver.Valuer.
func (r Role) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, errors.Errorf("invalid role %d", uint8(r))
	}
	return r.String(), nil
}

type User struct {
	ID           int        `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	PasswordHash []byte     `json:"-" db:"password_hash"`
	Role         Role       `json:"role" db:"role"`
	Name         string     `json:"name" db:"full_name"`
	Email        string     `json:"email" db:"email"`
	Phone        string     `json:"phone" db:"phone"`
	Address      string     `json:"address" db:"address"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"` // UTC
	LastLogin    *time.Time `json:"last_login" db:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := HashPassword(pwd)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) bool {
	return VerifyPassword(pwd, u.PasswordHash)
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// HasAnyRole reports whether the user's role is in roles. An empty roles set matches any role.
func (u *User) HasAnyRole(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string              `json:"name" validate:"required,notblank,max=100"`
	Username        string              `json:"username" validate:"required,min=3,max=50,alphanum_"`
	Email           string              `json:"email" validate:"omitempty,email"`
	Phone           string              `json:"phone" validate:"omitempty,max=30"`
	Address         string              `json:"address" validate:"omitempty,max=255"`
	Password        string              `json:"password" validate:"required"`
	PasswordConfirm string              `json:"password_confirm" validate:"required"`
	Role            Role                `json:"role" validate:"omitempty,role"`
	Student         *student.NewProfile `json:"student" validate:"omitempty"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Phone = core.CleanString(nu.Phone)
	nu.Address = core.CleanString(nu.Address)
	if nu.Role == 0 {
		nu.Role = RoleStudent
	}
	if nu.Student != nil {
		nu.Student.Clean()
	}
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Clean()
	if err := validate.Struct(nu); err != nil {
		return err
	}
	if nu.Password != nu.PasswordConfirm {
		return core.NewValidationError(ErrPasswordMismatch, core.FieldError{Field: "password_confirm", Error: ErrPasswordMismatch.Error()})
	}
	if nu.Student != nil && nu.Role != RoleStudent {
		return core.NewValidationError(nil, core.FieldError{Field: "student", Error: "only students have a student profile"})
	}
	return svc.CheckUniqueness(ctx, nu.Username)
}

// SetPassword defines what is needed to replace a User's password.
type SetPassword struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`

	// user attributes the password cannot be similar to
	Name     string `json:"-"`
	Username string `json:"-"`
	Email    string `json:"-"`
}

func (sp *SetPassword) Validate(validate *validator.Validate) error {
	if err := validate.Struct(sp); err != nil {
		return err
	}
	if sp.Password != sp.PasswordConfirm {
		return core.NewValidationError(ErrPasswordMismatch, core.FieldError{Field: "password_confirm", Error: ErrPasswordMismatch.Error()})
	}
	return nil
}

type GetFilter struct {
	ID       int
	Username string
}

type QueryFilter struct {
	Search string   `query:"search"`
	Roles  []string `query:"role"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && len(qf.Roles) == 0
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	roles := qf.Roles[:0]
	for _, r := range qf.Roles {
		for _, rr := range strings.Split(r, ",") {
			if rr = core.CleanString(rr, true /* lower */); rr != "" {
				roles = append(roles, rr)
			}
		}
	}
	qf.Roles = roles
}

// OrderingFields maps the fields users can be ordered by to their column names.
var OrderingFields = map[string]string{
	"id":         "id",
	"username":   "username",
	"name":       "full_name",
	"created_at": "created_at",
}
