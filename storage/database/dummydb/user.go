package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/student"
	"github.com/stephenschool/schoolconnect/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) usernameTaken(username string, excludedUsers []user.User) bool {
	for _, usr := range repo.db.users {
		if usr.Username == username && !isExcluded(*usr, excludedUsers) {
			return true
		}
	}
	return false
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.usernameTaken(username, excludedUsers) {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User, profile *student.Profile) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.usernameTaken(usr.Username, nil) {
		return user.User{}, user.ErrUsernameExists
	}
	usr.ID = repo.db.nextID("users")
	repo.db.users[usr.ID] = &usr

	if profile != nil {
		p := *profile
		p.ID = repo.db.nextID("students")
		p.UserID = usr.ID
		repo.db.students[p.ID] = &p
	}
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != 0 {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	if filter.Username != "" {
		for _, usr := range repo.db.users {
			if usr.Username == filter.Username {
				return *usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := repo.query()

	if filter != nil {
		// users with search keyword matching any Name, Username or Email ?
		if filter.Search != "" {
			search := strings.ToLower(filter.Search)
			filtered := users[:0]
			for _, u := range users {
				if strings.Contains(strings.ToLower(u.Username), search) ||
					strings.Contains(strings.ToLower(u.Email), search) ||
					strings.Contains(strings.ToLower(u.Name), search) {
					filtered = append(filtered, u)
				}
			}
			users = filtered
		}
		// users with any of the specified roles
		if len(filter.Roles) > 0 {
			filtered := users[:0]
			for _, u := range users {
				for _, r := range filter.Roles {
					if u.Role.String() == r {
						filtered = append(filtered, u)
						break
					}
				}
			}
			users = filtered
		}
	}

	sortUsers(users, ordering)
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if usr.Username != orig.Username && repo.usernameTaken(usr.Username, []user.User{usr}) {
		return user.User{}, user.ErrUsernameExists
	}
	usr.CreatedAt = orig.CreatedAt
	if usr.PasswordHash == nil {
		usr.PasswordHash = orig.PasswordHash
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...int) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if repo.db.deleteUser(id) {
			n++
		}
	}
	return n, nil
}

func isExcluded(usr user.User, excludedUsers []user.User) bool {
	for _, u := range excludedUsers {
		if u.ID == usr.ID {
			return true
		}
	}
	return false
}

// sortUsers orders users by the given (column, direction) pairs, then by ID.
func sortUsers(users []user.User, ordering []core.DBOrdering) {
	cmp := func(a, b user.User, field string) int {
		switch field {
		case "username":
			return strings.Compare(a.Username, b.Username)
		case "full_name":
			return strings.Compare(a.Name, b.Name)
		case "created_at":
			return a.CreatedAt.Compare(b.CreatedAt)
		default:
			return a.ID - b.ID
		}
	}
	sort.SliceStable(users, func(i, j int) bool {
		for _, ord := range ordering {
			c := cmp(users[i], users[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return users[i].ID < users[j].ID
	})
}
