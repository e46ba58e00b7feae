package fee

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/student"
	"github.com/stephenschool/schoolconnect/core/user"
)

var (
	// errors
	ErrNotFound       = core.NewError(core.ErrNotFound, "fee not found")
	ErrNotOwner       = core.NewError(core.ErrForbidden, "this fee belongs to another student")
	ErrAlreadyPaid    = core.NewError(core.ErrBadRequest, "fee already paid")
	ErrHasPayments    = core.NewError(core.ErrBadRequest, "a fee with payments cannot be set back to pending")
	errInvalidStatus  = core.NewError(core.ErrBadRequest, "invalid fee status")
	receiptPrefix     = "RCPT-"
	eventPaymentMade  = "fee.payment_recorded"
	eventStatusForced = "fee.status_override"
)

type Repository interface {
	CreateFee(ctx context.Context, f Fee) (Fee, error)
	GetFee(ctx context.Context, id int) (Fee, error)
	QueryFees(ctx context.Context, filter *QueryFilter) ([]Fee, error)
	// SetFeeStatus overwrites the status of fee id. Setting a fee with payments back to pending
	// fails with ErrHasPayments; the check and the write are one atomic unit.
	SetFeeStatus(ctx context.Context, id int, status Status) (Fee, error)
	// RecordPayment inserts p and moves fee p.FeeID from pending to paid as one atomic unit.
	// Of concurrent calls for the same fee, exactly one succeeds; the others get ErrAlreadyPaid and write nothing.
	RecordPayment(ctx context.Context, p Payment) (Payment, error)
	QueryPayments(ctx context.Context, feeIDs ...int) ([]Payment, error)
}

type Service struct {
	repo     Repository
	students *student.Service
	logger   core.Logger
	now      core.Clock
}

func NewService(repo Repository, students *student.Service, logger core.Logger) *Service {
	return &Service{repo: repo, students: students, logger: logger, now: core.UTCNow}
}

// Create assigns a new pending Fee to a student.
func (svc *Service) Create(ctx context.Context, nf NewFee) (Fee, error) {
	if _, err := svc.students.GetByID(ctx, nf.StudentID); err != nil {
		return Fee{}, errors.Wrap(err, "finding student")
	}
	dueDate := nf.dueDate
	if dueDate.IsZero() { // not validated
		var err error
		if dueDate, err = parseDate(nf.DueDate); err != nil {
			return Fee{}, err
		}
	}
	return svc.repo.CreateFee(ctx, Fee{
		StudentID: nf.StudentID,
		Term:      nf.Term,
		Amount:    nf.Amount,
		DueDate:   dueDate,
		Status:    StatusPending,
		CreatedAt: svc.now(),
	})
}

func (svc *Service) Get(ctx context.Context, id int) (View, error) {
	f, err := svc.repo.GetFee(ctx, id)
	if err != nil {
		return View{}, err
	}
	payments, err := svc.repo.QueryPayments(ctx, f.ID)
	if err != nil {
		return View{}, errors.Wrap(err, "querying payments")
	}
	return newView(f, payments, svc.now()), nil
}

// Query returns fees with their payments. Filtering on "overdue" selects pending fees past their due date.
func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]View, error) {
	var overdueOnly bool
	if filter != nil {
		filter.Clean()
		if Status(filter.Status) == StatusOverdue {
			f := *filter
			f.Status = string(StatusPending)
			filter = &f
			overdueOnly = true
		}
	}

	fees, err := svc.repo.QueryFees(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying fees")
	}
	ids := make([]int, 0, len(fees))
	for _, f := range fees {
		ids = append(ids, f.ID)
	}
	payments, err := svc.repo.QueryPayments(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	byFee := make(map[int][]Payment, len(fees))
	for _, p := range payments {
		byFee[p.FeeID] = append(byFee[p.FeeID], p)
	}

	now := svc.now()
	views := make([]View, 0, len(fees))
	for _, f := range fees {
		if overdueOnly && !f.IsOverdue(now) {
			continue
		}
		views = append(views, newView(f, byFee[f.ID], now))
	}
	return views, nil
}

// ForStudent returns the fees of a student with their payments.
func (svc *Service) ForStudent(ctx context.Context, studentID int) ([]View, error) {
	return svc.Query(ctx, &QueryFilter{StudentID: studentID})
}

// RecordPayment records the payment of fee feeID by the student actingStudentID.
// The payment amount is the fee amount, and the fee becomes paid in the same unit of work.
func (svc *Service) RecordPayment(ctx context.Context, feeID int, np NewPayment, actingStudentID int) (Payment, error) {
	f, err := svc.repo.GetFee(ctx, feeID)
	if err != nil {
		return Payment{}, err
	}
	if f.StudentID != actingStudentID {
		return Payment{}, ErrNotOwner
	}
	if f.Status == StatusPaid {
		return Payment{}, ErrAlreadyPaid
	}

	receipt := np.Receipt
	if receipt == "" {
		receipt = receiptPrefix + uuid.NewString()
	}
	p, err := svc.repo.RecordPayment(ctx, Payment{
		FeeID:         f.ID,
		Amount:        f.Amount,
		PaymentDate:   svc.now(),
		PaymentMethod: np.PaymentMethod,
		TransactionID: np.TransactionID,
		Receipt:       receipt,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyPaid) || errors.Is(err, ErrNotFound) {
			return Payment{}, err
		}
		return Payment{}, errors.Wrap(err, "recording payment")
	}

	svc.logger.Info("fee payment recorded", map[string]interface{}{
		"event":      eventPaymentMade,
		"fee_id":     f.ID,
		"payment_id": p.ID,
		"student_id": actingStudentID,
		"amount":     p.Amount,
	})
	return p, nil
}

// SetStatus is the admin override: it overwrites the status without creating a payment.
// Marking a fee paid this way is allowed (offline reconciliation) and is logged as an override.
func (svc *Service) SetStatus(ctx context.Context, feeID int, status Status, admin user.User) (View, error) {
	if !status.IsValid() {
		return View{}, errInvalidStatus
	}
	f, err := svc.repo.GetFee(ctx, feeID)
	if err != nil {
		return View{}, err
	}
	updated, err := svc.repo.SetFeeStatus(ctx, f.ID, status)
	if err != nil {
		if errors.Is(err, ErrHasPayments) || errors.Is(err, ErrNotFound) {
			return View{}, err
		}
		return View{}, errors.Wrap(err, "setting fee status")
	}
	payments, err := svc.repo.QueryPayments(ctx, f.ID)
	if err != nil {
		return View{}, errors.Wrap(err, "querying payments")
	}

	svc.logger.Info("fee status overridden", map[string]interface{}{
		"event":      eventStatusForced,
		"fee_id":     f.ID,
		"old_status": f.Status,
		"new_status": updated.Status,
		"admin_id":   admin.ID,
	}, admin)
	return newView(updated, payments, svc.now()), nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, core.CleanString(s), time.UTC)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: "due_date", Error: "invalid date"})
	}
	return d, nil
}
