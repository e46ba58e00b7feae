package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stephenschool/schoolconnect/core"
)

// DefaultClass is the class of a student registered without one.
const DefaultClass = "unassigned"

// Profile is the 1:1 extension of a student User.
type Profile struct {
	ID             int       `json:"id" db:"id"`
	UserID         int       `json:"user_id" db:"user_id"`
	Class          string    `json:"class" db:"class"`
	Section        string    `json:"section" db:"section"`
	RollNumber     string    `json:"roll_number" db:"roll_number"`
	ParentName     string    `json:"parent_name" db:"parent_name"`
	DateOfBirth    string    `json:"dob" db:"dob"` // YYYY-MM-DD
	Gender         string    `json:"gender" db:"gender"`
	AdmissionDate  time.Time `json:"admission_date" db:"admission_date"` // UTC
	PreviousSchool string    `json:"previous_school" db:"previous_school"`
}

// NewProfile contains the optional information a student may register with.
type NewProfile struct {
	Class          string `json:"class" validate:"omitempty,max=20"`
	Section        string `json:"section" validate:"omitempty,max=10"`
	RollNumber     string `json:"roll_number" validate:"omitempty,max=20"`
	ParentName     string `json:"parent_name" validate:"omitempty,max=100"`
	DateOfBirth    string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Gender         string `json:"gender" validate:"omitempty,oneof=male female other"`
	PreviousSchool string `json:"previous_school" validate:"omitempty,max=100"`
}

func (np *NewProfile) Clean() {
	np.Class = core.CleanString(np.Class)
	np.Section = core.CleanString(np.Section)
	np.RollNumber = core.CleanString(np.RollNumber)
	np.ParentName = core.CleanString(np.ParentName)
	np.DateOfBirth = core.CleanString(np.DateOfBirth)
	np.Gender = core.CleanString(np.Gender, true /* lower */)
	np.PreviousSchool = core.CleanString(np.PreviousSchool)
}

// NewDefaultProfile builds the profile a student gets at creation time.
func NewDefaultProfile(np *NewProfile, now time.Time) Profile {
	p := Profile{Class: DefaultClass, AdmissionDate: now}
	if np == nil {
		return p
	}
	if np.Class != "" {
		p.Class = np.Class
	}
	p.Section = np.Section
	p.RollNumber = np.RollNumber
	p.ParentName = np.ParentName
	p.DateOfBirth = np.DateOfBirth
	p.Gender = np.Gender
	p.PreviousSchool = np.PreviousSchool
	return p
}

// UpdateProfile defines what information may be provided to modify an existing Profile.
// Empty fields are left unchanged.
type UpdateProfile NewProfile

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	(*NewProfile)(up).Clean()
	return validate.Struct(up)
}

func (up UpdateProfile) apply(p Profile) Profile {
	set := func(dst *string, val string) {
		if val != "" {
			*dst = val
		}
	}
	set(&p.Class, up.Class)
	set(&p.Section, up.Section)
	set(&p.RollNumber, up.RollNumber)
	set(&p.ParentName, up.ParentName)
	set(&p.DateOfBirth, up.DateOfBirth)
	set(&p.Gender, up.Gender)
	set(&p.PreviousSchool, up.PreviousSchool)
	return p
}

type GetFilter struct {
	ID     int
	UserID int
}

type QueryFilter struct {
	Class   string `query:"class"`
	Section string `query:"section"`
}

func (qf *QueryFilter) Clean() {
	qf.Class = core.CleanString(qf.Class)
	qf.Section = core.CleanString(qf.Section)
}

// AcademicRecord is a student's result in a subject for a term.
type AcademicRecord struct {
	ID         int       `json:"id" db:"id"`
	StudentID  int       `json:"student_id" db:"student_id"`
	Subject    string    `json:"subject" db:"subject"`
	Term       string    `json:"term" db:"term"`
	Grade      string    `json:"grade" db:"grade"`
	Marks      *float64  `json:"marks" db:"marks"`
	MaxMarks   *float64  `json:"max_marks" db:"max_marks"`
	Remarks    string    `json:"remarks" db:"remarks"`
	RecordDate time.Time `json:"record_date" db:"record_date"` // UTC
}

type NewAcademicRecord struct {
	StudentID int      `json:"student_id" validate:"required,gt=0"`
	Subject   string   `json:"subject" validate:"required,notblank,max=100"`
	Term      string   `json:"term" validate:"required,notblank,max=50"`
	Grade     string   `json:"grade" validate:"omitempty,max=5"`
	Marks     *float64 `json:"marks" validate:"omitempty,gte=0"`
	MaxMarks  *float64 `json:"max_marks" validate:"omitempty,gt=0"`
	Remarks   string   `json:"remarks" validate:"omitempty,max=500"`
}

func (nr *NewAcademicRecord) Validate(validate *validator.Validate) error {
	nr.Subject = core.CleanString(nr.Subject)
	nr.Term = core.CleanString(nr.Term)
	nr.Grade = core.CleanString(nr.Grade)
	nr.Remarks = core.CleanString(nr.Remarks)
	if err := validate.Struct(nr); err != nil {
		return err
	}
	return validateMarks(nr.Marks, nr.MaxMarks)
}

// UpdateAcademicRecord replaces the editable fields of a record.
type UpdateAcademicRecord struct {
	Subject  string   `json:"subject" validate:"required,notblank,max=100"`
	Term     string   `json:"term" validate:"required,notblank,max=50"`
	Grade    string   `json:"grade" validate:"omitempty,max=5"`
	Marks    *float64 `json:"marks" validate:"omitempty,gte=0"`
	MaxMarks *float64 `json:"max_marks" validate:"omitempty,gt=0"`
	Remarks  string   `json:"remarks" validate:"omitempty,max=500"`
}

func (ur *UpdateAcademicRecord) Validate(validate *validator.Validate) error {
	ur.Subject = core.CleanString(ur.Subject)
	ur.Term = core.CleanString(ur.Term)
	ur.Grade = core.CleanString(ur.Grade)
	ur.Remarks = core.CleanString(ur.Remarks)
	if err := validate.Struct(ur); err != nil {
		return err
	}
	return validateMarks(ur.Marks, ur.MaxMarks)
}

func validateMarks(marks, maxMarks *float64) error {
	if marks != nil && maxMarks != nil && *marks > *maxMarks {
		return core.NewValidationError(nil, core.FieldError{Field: "marks", Error: "marks cannot exceed max marks"})
	}
	return nil
}
