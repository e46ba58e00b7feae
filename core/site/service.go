package site

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core"
)

var (
	// errors
	ErrSettingNotFound = core.NewError(core.ErrNotFound, "setting not found")
	ErrSettingExists   = core.NewError(core.ErrConflict, "a setting with this key already exists")
	ErrNoticeNotFound  = core.NewError(core.ErrNotFound, "notice not found")
	ErrMessageNotFound = core.NewError(core.ErrNotFound, "contact message not found")
)

type Repository interface {
	// CreateSetting returns ErrSettingExists when the key is taken.
	CreateSetting(ctx context.Context, s Setting) (Setting, error)
	GetSetting(ctx context.Context, key string) (Setting, error)
	QuerySettings(ctx context.Context) ([]Setting, error)
	UpdateSetting(ctx context.Context, s Setting) (Setting, error)
	DeleteSetting(ctx context.Context, id int) error

	CreateNotice(ctx context.Context, n Notice) (Notice, error)
	GetNotice(ctx context.Context, id int) (Notice, error)
	// QueryNotices returns notices, newest first.
	QueryNotices(ctx context.Context, filter NoticeFilter) ([]Notice, error)
	UpdateNotice(ctx context.Context, n Notice) (Notice, error)
	DeleteNotice(ctx context.Context, id int) error

	CreateContactMessage(ctx context.Context, m ContactMessage) (ContactMessage, error)
	// QueryContactMessages returns messages, newest first.
	QueryContactMessages(ctx context.Context) ([]ContactMessage, error)
	SetContactMessageStatus(ctx context.Context, id int, status ContactStatus) (ContactMessage, error)
	DeleteContactMessage(ctx context.Context, id int) error

	CreateGalleryItem(ctx context.Context, g GalleryItem) (GalleryItem, error)
	GetGalleryItem(ctx context.Context, id int) (GalleryItem, error)
	// QueryGallery returns gallery items, newest upload first.
	QueryGallery(ctx context.Context, activeOnly bool) ([]GalleryItem, error)
	UpdateGalleryItem(ctx context.Context, g GalleryItem) (GalleryItem, error)
	DeleteGalleryItem(ctx context.Context, id int) error

	CreateAchievement(ctx context.Context, a Achievement) (Achievement, error)
	GetAchievement(ctx context.Context, id int) (Achievement, error)
	// QueryAchievements returns achievements, newest first.
	QueryAchievements(ctx context.Context, activeOnly bool) ([]Achievement, error)
	UpdateAchievement(ctx context.Context, a Achievement) (Achievement, error)
	DeleteAchievement(ctx context.Context, id int) error
}

type Service struct {
	repo       Repository
	mailSvc    core.EmailService
	adminEmail mail.Address
	now        core.Clock
}

func NewService(repo Repository, mailSvc core.EmailService, adminEmail mail.Address) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, adminEmail: adminEmail, now: core.UTCNow}
}

// settings

func (svc *Service) Settings(ctx context.Context) ([]Setting, error) {
	return svc.repo.QuerySettings(ctx)
}

func (svc *Service) Setting(ctx context.Context, key string) (Setting, error) {
	return svc.repo.GetSetting(ctx, key)
}

func (svc *Service) CreateSetting(ctx context.Context, ns NewSetting) (Setting, error) {
	return svc.repo.CreateSetting(ctx, Setting{Key: ns.Key, Value: ns.Value, UpdatedAt: svc.now()})
}

func (svc *Service) UpdateSetting(ctx context.Context, key string, us UpdateSetting) (Setting, error) {
	s, err := svc.repo.GetSetting(ctx, key)
	if err != nil {
		return Setting{}, err
	}
	s.Value = us.Value
	s.UpdatedAt = svc.now()
	return svc.repo.UpdateSetting(ctx, s)
}

func (svc *Service) DeleteSetting(ctx context.Context, id int) error {
	return svc.repo.DeleteSetting(ctx, id)
}

// SeedDefaults inserts DefaultSettings when no setting exists yet, and returns how many were added.
func (svc *Service) SeedDefaults(ctx context.Context) (int, error) {
	existing, err := svc.repo.QuerySettings(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "querying settings")
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i, ns := range DefaultSettings {
		if _, err = svc.CreateSetting(ctx, ns); err != nil {
			return i, errors.Wrapf(err, "creating setting %q", ns.Key)
		}
	}
	return len(DefaultSettings), nil
}

// notices

func (svc *Service) Notices(ctx context.Context, activeOnly bool) ([]Notice, error) {
	return svc.repo.QueryNotices(ctx, NoticeFilter{ActiveOnly: activeOnly})
}

// RecentNotices returns at most limit active notices, newest first.
func (svc *Service) RecentNotices(ctx context.Context, limit int) ([]Notice, error) {
	if limit <= 0 {
		limit = 3
	}
	return svc.repo.QueryNotices(ctx, NoticeFilter{ActiveOnly: true, Limit: limit})
}

func (svc *Service) Notice(ctx context.Context, id int) (Notice, error) {
	return svc.repo.GetNotice(ctx, id)
}

func (svc *Service) CreateNotice(ctx context.Context, nn NewNotice) (Notice, error) {
	return svc.repo.CreateNotice(ctx, Notice{
		Title:          nn.Title,
		Content:        nn.Content,
		Category:       nn.Category,
		Date:           svc.now(),
		Important:      nn.Important,
		AttachmentURL:  nn.AttachmentURL,
		AttachmentType: nn.AttachmentType,
		IsActive:       nn.active(),
	})
}

func (svc *Service) UpdateNotice(ctx context.Context, id int, nn NewNotice) (Notice, error) {
	n, err := svc.repo.GetNotice(ctx, id)
	if err != nil {
		return Notice{}, err
	}
	n.Title = nn.Title
	n.Content = nn.Content
	n.Category = nn.Category
	n.Important = nn.Important
	n.AttachmentURL = nn.AttachmentURL
	n.AttachmentType = nn.AttachmentType
	if nn.IsActive != nil {
		n.IsActive = *nn.IsActive
	}
	return svc.repo.UpdateNotice(ctx, n)
}

func (svc *Service) DeleteNotice(ctx context.Context, id int) error {
	return svc.repo.DeleteNotice(ctx, id)
}

// contact messages

// SubmitContactMessage stores an unread message and forwards it to the school admin.
func (svc *Service) SubmitContactMessage(ctx context.Context, nm NewContactMessage) (ContactMessage, error) {
	m, err := svc.repo.CreateContactMessage(ctx, ContactMessage{
		Name:      nm.Name,
		Email:     nm.Email,
		Subject:   nm.Subject,
		Message:   nm.Message,
		Status:    ContactUnread,
		CreatedAt: svc.now(),
	})
	if err != nil {
		return ContactMessage{}, errors.Wrap(err, "creating contact message")
	}
	if svc.adminEmail.Address != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{svc.adminEmail},
			Subject:      "Contact form: " + m.Subject,
			TemplateName: "contact_received",
			TemplateData: m,
		})
	}
	return m, nil
}

func (svc *Service) ContactMessages(ctx context.Context) ([]ContactMessage, error) {
	return svc.repo.QueryContactMessages(ctx)
}

func (svc *Service) SetContactMessageStatus(ctx context.Context, id int, status ContactStatus) (ContactMessage, error) {
	return svc.repo.SetContactMessageStatus(ctx, id, status)
}

func (svc *Service) DeleteContactMessage(ctx context.Context, id int) error {
	return svc.repo.DeleteContactMessage(ctx, id)
}
