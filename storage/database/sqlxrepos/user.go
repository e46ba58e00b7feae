package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/student"
	"github.com/stephenschool/schoolconnect/core/user"
)

const userColumns = "id, username, password_hash, role, full_name, email, phone, address, created_at, updated_at, last_login"

// columns users may be ordered by
var userOrderColumns = map[string]bool{"id": true, "username": true, "full_name": true, "created_at": true}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username string, excludedUsers ...user.User) error {
	query := "SELECT COUNT(*) FROM users WHERE username = ?"
	args := []interface{}{username}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		var err error
		if query, args, err = sqlx.In(query+" AND id NOT IN (?)", username, ids); err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if count > 0 {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, profile *student.Profile) (user.User, error) {
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		id, err := insert(ctx, tx, `
			INSERT INTO users (username, password_hash, role, full_name, email, phone, address, created_at, updated_at, last_login)
			VALUES (:username, :password_hash, :role, :full_name, :email, :phone, :address, :created_at, :updated_at, :last_login)`,
			usr)
		if err != nil {
			if isUniqueViolation(err) {
				return user.ErrUsernameExists
			}
			return errors.Wrap(err, "inserting user")
		}
		usr.ID = id

		if profile != nil {
			profile.UserID = id
			if _, err = insert(ctx, tx, insertProfileQuery, profile); err != nil {
				return errors.Wrap(err, "inserting student profile")
			}
		}
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var query string
	var arg interface{}
	switch {
	case filter.ID != 0:
		query, arg = "SELECT "+userColumns+" FROM users WHERE id = ?", filter.ID
	case filter.Username != "":
		query, arg = "SELECT "+userColumns+" FROM users WHERE username = ?", filter.Username
	default:
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, repo.db.Rebind(query), arg); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	var where []string
	var args []interface{}

	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + strings.ToLower(filter.Search) + "%"
			where = append(where, "(LOWER(full_name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(email) LIKE ?)")
			args = append(args, val, val, val)
		}
		// users with any of the provided roles
		if len(filter.Roles) > 0 {
			where = append(where, "role IN (?)")
			args = append(args, filter.Roles)
		}
	}

	query := "SELECT " + userColumns + " FROM users"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	orderList := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if userOrderColumns[ord.Field] {
			orderList = append(orderList, ord.String())
		}
	}
	orderList = append(orderList, "id ASC")
	query += " ORDER BY " + strings.Join(orderList, ", ")

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "building users query")
	}
	users := make([]user.User, 0)
	if err = repo.db.SelectContext(ctx, &users, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := update(ctx, repo.db, `
		UPDATE users SET
			username = :username, password_hash = :password_hash, full_name = :full_name, email = :email,
			phone = :phone, address = :address, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`,
		usr, user.ErrNotFound)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, err
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

// DeleteUsersByID relies on ON DELETE CASCADE for owned rows.
func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("DELETE FROM users WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "deleting users")
}
