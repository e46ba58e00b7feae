package inquiry

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stephenschool/schoolconnect/core"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusWaitlisted Status = "waitlisted"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusWaitlisted:
		return true
	}
	return false
}

// Inquiry is a prospective student's admission application.
type Inquiry struct {
	ID               int       `json:"id" db:"id"`
	StudentName      string    `json:"student_name" db:"student_name"`
	DateOfBirth      string    `json:"dob" db:"dob"`
	Gender           string    `json:"gender" db:"gender"`
	ApplyingForClass string    `json:"applying_for_class" db:"applying_for_class"`
	PreviousSchool   string    `json:"previous_school" db:"previous_school"`
	ParentName       string    `json:"parent_name" db:"parent_name"`
	Relationship     string    `json:"relationship" db:"relationship"`
	Email            string    `json:"email" db:"email"`
	Phone            string    `json:"phone" db:"phone"`
	Address          string    `json:"address" db:"address"`
	ReferenceSource  string    `json:"reference_source" db:"reference_source"`
	Reason           string    `json:"reason" db:"reason"`
	SpecialNeeds     string    `json:"special_needs" db:"special_needs"`
	Status           Status    `json:"status" db:"status"`
	InquiryDate      time.Time `json:"inquiry_date" db:"inquiry_date"` // UTC
}

// NewInquiry is what the public admission form submits.
type NewInquiry struct {
	StudentName      string `json:"student_name" validate:"required,notblank,max=100"`
	DateOfBirth      string `json:"dob" validate:"required,datetime=2006-01-02"`
	Gender           string `json:"gender" validate:"required,oneof=male female other"`
	ApplyingForClass string `json:"applying_for_class" validate:"required,notblank,max=20"`
	PreviousSchool   string `json:"previous_school" validate:"omitempty,max=100"`
	ParentName       string `json:"parent_name" validate:"required,notblank,max=100"`
	Relationship     string `json:"relationship" validate:"required,notblank,max=30"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required,notblank,max=30"`
	Address          string `json:"address" validate:"required,notblank,max=255"`
	ReferenceSource  string `json:"reference_source" validate:"omitempty,max=100"`
	Reason           string `json:"reason" validate:"omitempty,max=1000"`
	SpecialNeeds     string `json:"special_needs" validate:"omitempty,max=1000"`
}

func (ni *NewInquiry) Validate(validate *validator.Validate) error {
	ni.StudentName = core.CleanString(ni.StudentName)
	ni.DateOfBirth = core.CleanString(ni.DateOfBirth)
	ni.Gender = core.CleanString(ni.Gender, true /* lower */)
	ni.ApplyingForClass = core.CleanString(ni.ApplyingForClass)
	ni.PreviousSchool = core.CleanString(ni.PreviousSchool)
	ni.ParentName = core.CleanString(ni.ParentName)
	ni.Relationship = core.CleanString(ni.Relationship)
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	ni.Phone = core.CleanString(ni.Phone)
	ni.Address = core.CleanString(ni.Address)
	ni.ReferenceSource = core.CleanString(ni.ReferenceSource)
	ni.Reason = core.CleanString(ni.Reason)
	ni.SpecialNeeds = core.CleanString(ni.SpecialNeeds)
	return validate.Struct(ni)
}

type SetStatus struct {
	Status Status `json:"status" validate:"required"`
}

func (ss *SetStatus) Validate(validate *validator.Validate) error {
	ss.Status = Status(core.CleanString(string(ss.Status), true /* lower */))
	if err := validate.Struct(ss); err != nil {
		return err
	}
	if !ss.Status.IsValid() {
		return core.NewValidationError(nil, core.FieldError{
			Field: "status", Error: "status must be one of: pending, approved, rejected, waitlisted",
		})
	}
	return nil
}

type QueryFilter struct {
	Status string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
