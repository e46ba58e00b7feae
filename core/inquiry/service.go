package inquiry

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core"
)

var ErrNotFound = core.NewError(core.ErrNotFound, "admission inquiry not found")

type Repository interface {
	CreateInquiry(ctx context.Context, inq Inquiry) (Inquiry, error)
	GetInquiry(ctx context.Context, id int) (Inquiry, error)
	// QueryInquiries returns inquiries, newest first.
	QueryInquiries(ctx context.Context, filter *QueryFilter) ([]Inquiry, error)
	SetInquiryStatus(ctx context.Context, id int, status Status) (Inquiry, error)
	DeleteInquiry(ctx context.Context, id int) error
}

type Service struct {
	repo    Repository
	mailSvc core.EmailService
	now     core.Clock
}

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, now: core.UTCNow}
}

// Submit records a new pending inquiry and acknowledges it to the applicant.
func (svc *Service) Submit(ctx context.Context, ni NewInquiry) (Inquiry, error) {
	inq, err := svc.repo.CreateInquiry(ctx, Inquiry{
		StudentName:      ni.StudentName,
		DateOfBirth:      ni.DateOfBirth,
		Gender:           ni.Gender,
		ApplyingForClass: ni.ApplyingForClass,
		PreviousSchool:   ni.PreviousSchool,
		ParentName:       ni.ParentName,
		Relationship:     ni.Relationship,
		Email:            ni.Email,
		Phone:            ni.Phone,
		Address:          ni.Address,
		ReferenceSource:  ni.ReferenceSource,
		Reason:           ni.Reason,
		SpecialNeeds:     ni.SpecialNeeds,
		Status:           StatusPending,
		InquiryDate:      svc.now(),
	})
	if err != nil {
		return Inquiry{}, errors.Wrap(err, "creating inquiry")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: inq.ParentName, Address: inq.Email}},
		Subject:      "Admission inquiry received",
		TemplateName: "inquiry_received",
		TemplateData: inq,
	})
	return inq, nil
}

func (svc *Service) Get(ctx context.Context, id int) (Inquiry, error) {
	return svc.repo.GetInquiry(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Inquiry, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryInquiries(ctx, filter)
}

// SetStatus changes the status of an inquiry and notifies the applicant when it actually changed.
func (svc *Service) SetStatus(ctx context.Context, id int, status Status) (Inquiry, error) {
	orig, err := svc.repo.GetInquiry(ctx, id)
	if err != nil {
		return Inquiry{}, err
	}
	inq, err := svc.repo.SetInquiryStatus(ctx, id, status)
	if err != nil {
		return Inquiry{}, errors.Wrap(err, "setting inquiry status")
	}
	if orig.Status != inq.Status {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: inq.ParentName, Address: inq.Email}},
			Subject:      "Admission inquiry update",
			TemplateName: "inquiry_status",
			TemplateData: inq,
		})
	}
	return inq, nil
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteInquiry(ctx, id)
}
