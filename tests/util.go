package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stephenschool/schoolconnect/core/fee"
	"github.com/stephenschool/schoolconnect/core/student"
	"github.com/stephenschool/schoolconnect/core/user"
)

// CreateUser inserts a user straight into repo. A student gets a default profile.
// The password is left unset when pwd is empty.
func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, pwd string,
	role user.Role,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     uname + "@test.school",
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}

	var profile *student.Profile
	if role == user.RoleStudent {
		p := student.NewDefaultProfile(nil, tstamp)
		profile = &p
	}
	usr, err := repo.CreateUser(context.Background(), usr, profile)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// StudentOf returns the profile of a student user.
func StudentOf(t *testing.T, repo student.Repository, usr user.User) student.Profile {
	t.Helper()

	p, err := repo.GetProfile(context.Background(), student.GetFilter{UserID: usr.ID})
	if err != nil {
		t.Fatalf("StudentOf() failed: %v", err)
	}
	return p
}

// CreateFee inserts a pending fee of amount whole currency units straight into repo.
func CreateFee(t *testing.T, repo fee.Repository, studentID int, term string, amount int64, dueDate time.Time) fee.Fee {
	t.Helper()

	f, err := repo.CreateFee(context.Background(), fee.Fee{
		StudentID: studentID,
		Term:      term,
		Amount:    fee.Whole(amount),
		DueDate:   dueDate.UTC(),
		Status:    fee.StatusPending,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateFee() failed: %v", err)
	}
	return f
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
