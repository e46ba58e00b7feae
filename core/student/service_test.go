package student_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/student"
	"github.com/stephenschool/schoolconnect/core/user"
	"github.com/stephenschool/schoolconnect/storage/database/dummydb"
	"github.com/stephenschool/schoolconnect/tests"
)

func ptr(f float64) *float64 { return &f }

func setup(t *testing.T) (*student.Service, student.Profile, student.Profile) {
	t.Helper()

	db := dummydb.Open()
	usrRepo := dummydb.NewUserRepository(db)
	repo := dummydb.NewStudentRepository(db)

	hero := testutil.StudentOf(t, repo, testutil.CreateUser(t, usrRepo, "Hero", "hero", "", user.RoleStudent))
	awe := testutil.StudentOf(t, repo, testutil.CreateUser(t, usrRepo, "Awe", "awe", "", user.RoleStudent))
	return student.NewService(repo), hero, awe
}

func TestService_Update(t *testing.T) {
	svc, hero, _ := setup(t)
	ctx := context.Background()
	assert.Equal(t, student.DefaultClass, hero.Class)

	p, err := svc.Update(ctx, hero.ID, student.UpdateProfile{Class: "Grade 5", Section: "B"})
	require.NoError(t, err)
	assert.Equal(t, "Grade 5", p.Class)
	assert.Equal(t, "B", p.Section)
	assert.Equal(t, hero.UserID, p.UserID)

	// empty fields are left unchanged
	p, err = svc.Update(ctx, hero.ID, student.UpdateProfile{RollNumber: "42"})
	require.NoError(t, err)
	assert.Equal(t, "Grade 5", p.Class)
	assert.Equal(t, "42", p.RollNumber)

	_, err = svc.Update(ctx, 999, student.UpdateProfile{Class: "Grade 1"})
	assert.ErrorIs(t, err, student.ErrNotFound)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_Query(t *testing.T) {
	svc, hero, awe := setup(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, awe.ID, student.UpdateProfile{Class: "Grade 5"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		filter  *student.QueryFilter
		wantIDs []int
	}{
		{name: "no filter", wantIDs: []int{hero.ID, awe.ID}},
		{name: "by class", filter: &student.QueryFilter{Class: " Grade 5 "}, wantIDs: []int{awe.ID}},
		{name: "no match", filter: &student.QueryFilter{Class: "Grade 9"}, wantIDs: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Query(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]int, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestService_Records(t *testing.T) {
	svc, hero, awe := setup(t)
	ctx := context.Background()

	t.Run("unknown student", func(t *testing.T) {
		_, err := svc.CreateRecord(ctx, student.NewAcademicRecord{StudentID: 999, Subject: "Maths", Term: "Term 1"})
		assert.ErrorIs(t, err, student.ErrNotFound)
	})

	r, err := svc.CreateRecord(ctx, student.NewAcademicRecord{
		StudentID: hero.ID, Subject: "Maths", Term: "Term 1", Grade: "A", Marks: ptr(88), MaxMarks: ptr(100),
	})
	require.NoError(t, err)
	assert.False(t, r.RecordDate.IsZero())

	r, err = svc.UpdateRecord(ctx, r.ID, student.UpdateAcademicRecord{Subject: "Maths", Term: "Term 1", Grade: "A+", Marks: ptr(95), MaxMarks: ptr(100)})
	require.NoError(t, err)
	assert.Equal(t, "A+", r.Grade)
	assert.Equal(t, hero.ID, r.StudentID)

	_, err = svc.UpdateRecord(ctx, 999, student.UpdateAcademicRecord{Subject: "Maths", Term: "Term 1"})
	assert.ErrorIs(t, err, student.ErrRecordNotFound)

	records, err := svc.Records(ctx, hero.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = svc.Records(ctx, awe.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewAcademicRecord_Validate(t *testing.T) {
	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)

	tests := []struct {
		name    string
		nr      student.NewAcademicRecord
		wantErr bool
	}{
		{name: "valid", nr: student.NewAcademicRecord{StudentID: 1, Subject: "Maths", Term: "Term 1", Marks: ptr(40), MaxMarks: ptr(50)}},
		{name: "marks without max", nr: student.NewAcademicRecord{StudentID: 1, Subject: "Maths", Term: "Term 1", Marks: ptr(40)}},
		{name: "blank subject", nr: student.NewAcademicRecord{StudentID: 1, Subject: "  ", Term: "Term 1"}, wantErr: true},
		{name: "negative marks", nr: student.NewAcademicRecord{StudentID: 1, Subject: "Maths", Term: "Term 1", Marks: ptr(-1)}, wantErr: true},
		{name: "marks above max", nr: student.NewAcademicRecord{StudentID: 1, Subject: "Maths", Term: "Term 1", Marks: ptr(60), MaxMarks: ptr(50)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nr.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
