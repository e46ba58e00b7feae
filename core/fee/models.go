package fee

import (
	"database/sql/driver"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core"
)

const dateLayout = "2006-01-02"

// Status is the persisted state of a Fee. Only pending and paid are ever stored;
// overdue is derived at read time from a pending fee's due date.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue" // derived only
)

// IsValid reports whether s is a state a Fee can be stored in.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusPaid
}

// Scan implements sql.Scanner.
func (s *Status) Scan(src interface{}) error {
	var v string
	switch src := src.(type) {
	case string:
		v = src
	case []byte:
		v = string(src)
	default:
		return errors.Errorf("cannot scan %T into Status", src)
	}
	if st := Status(v); !st.IsValid() {
		return errors.Errorf("invalid stored fee status %q", v)
	}
	*s = Status(v)
	return nil
}

// Value implements driver.Valuer.
func (s Status) Value() (driver.Value, error) {
	if !s.IsValid() {
		return nil, errors.Errorf("invalid fee status %q", string(s))
	}
	return string(s), nil
}

// Fee is an amount a student owes for a term.
type Fee struct {
	ID        int       `json:"id" db:"id"`
	StudentID int       `json:"student_id" db:"student_id"`
	Term      string    `json:"term" db:"term"`
	Amount    Money     `json:"amount" db:"amount"`
	DueDate   time.Time `json:"due_date" db:"due_date"`     // UTC
	Status    Status    `json:"status" db:"status"`         // persisted state
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

// IsOverdue reports whether the fee is still pending after its due date.
func (f Fee) IsOverdue(now time.Time) bool {
	return f.Status == StatusPending && f.DueDate.Before(now)
}

// DisplayStatus is the status shown to users: overdue replaces pending once the due date has passed.
func (f Fee) DisplayStatus(now time.Time) Status {
	if f.IsOverdue(now) {
		return StatusOverdue
	}
	return f.Status
}

// Payment is an append-only record of money received against a Fee.
type Payment struct {
	ID            int       `json:"id" db:"id"`
	FeeID         int       `json:"fee_id" db:"fee_id"`
	Amount        Money     `json:"amount" db:"amount"`
	PaymentDate   time.Time `json:"payment_date" db:"payment_date"` // UTC
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	Receipt       string    `json:"receipt" db:"receipt"`
}

// View is a Fee as read by users: with its derived state and its payments.
type View struct {
	Fee
	DisplayStatus Status    `json:"display_status"`
	Overdue       bool      `json:"overdue"`
	Payments      []Payment `json:"payments"`
}

func newView(f Fee, payments []Payment, now time.Time) View {
	if payments == nil {
		payments = []Payment{}
	}
	return View{
		Fee:           f,
		DisplayStatus: f.DisplayStatus(now),
		Overdue:       f.IsOverdue(now),
		Payments:      payments,
	}
}

// NewFee contains information needed to create a new Fee.
type NewFee struct {
	StudentID int     `json:"student_id" validate:"required,gt=0"`
	Term      string  `json:"term" validate:"required,notblank,max=50"`
	Amount    Money   `json:"amount" validate:"required,gt=0"`
	DueDate   string  `json:"due_date" validate:"required,datetime=2006-01-02"`

	dueDate time.Time
}

func (nf *NewFee) Validate(validate *validator.Validate) error {
	nf.Term = core.CleanString(nf.Term)
	nf.DueDate = core.CleanString(nf.DueDate)
	if err := validate.Struct(nf); err != nil {
		return err
	}
	d, err := parseDate(nf.DueDate)
	if err != nil {
		return err
	}
	nf.dueDate = d
	return nil
}

// NewPayment contains the details a student submits to pay a Fee. The amount is always the fee amount.
type NewPayment struct {
	PaymentMethod string `json:"payment_method" validate:"required,notblank,max=50"`
	TransactionID string `json:"transaction_id" validate:"omitempty,max=100"`
	Receipt       string `json:"receipt" validate:"omitempty,max=100"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.PaymentMethod = core.CleanString(np.PaymentMethod)
	np.TransactionID = core.CleanString(np.TransactionID)
	np.Receipt = core.CleanString(np.Receipt)
	return validate.Struct(np)
}

// SetStatus is the admin override of a Fee's status.
type SetStatus struct {
	Status Status `json:"status" validate:"required"`
}

func (ss *SetStatus) Validate(validate *validator.Validate) error {
	ss.Status = Status(core.CleanString(string(ss.Status), true /* lower */))
	if err := validate.Struct(ss); err != nil {
		return err
	}
	switch {
	case ss.Status == StatusOverdue:
		return core.NewValidationError(errInvalidStatus, core.FieldError{
			Field: "status", Error: "overdue is derived from the due date and cannot be set",
		})
	case !ss.Status.IsValid():
		return core.NewValidationError(errInvalidStatus, core.FieldError{
			Field: "status", Error: "status must be one of: pending, paid",
		})
	}
	return nil
}

type QueryFilter struct {
	StudentID int    `query:"student_id"`
	Status    string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
