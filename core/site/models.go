package site

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stephenschool/schoolconnect/core"
)

// Setting is a key/value pair of public site configuration.
type Setting struct {
	ID        int       `json:"id" db:"id"`
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

type NewSetting struct {
	Key   string `json:"key" validate:"required,notblank,max=100"`
	Value string `json:"value" validate:"required"`
}

func (ns *NewSetting) Validate(validate *validator.Validate) error {
	ns.Key = core.CleanString(ns.Key)
	return validate.Struct(ns)
}

type UpdateSetting struct {
	Value string `json:"value" validate:"required"`
}

func (us *UpdateSetting) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

// DefaultSettings are seeded into an empty settings store.
var DefaultSettings = []NewSetting{
	{Key: "schoolName", Value: "St. Stephen School"},
	{Key: "schoolTagline", Value: "Excellence in Education"},
	{Key: "schoolAddress", Value: "Bailey Road, Patna, Bihar, India"},
	{Key: "schoolEmail", Value: "contact@ststephen.edu"},
	{Key: "schoolPhone", Value: "+91 612 222 3333"},
	{Key: "admissionOpen", Value: "true"},
	{Key: "facebookUrl", Value: "https://facebook.com/ststephenschool"},
	{Key: "twitterUrl", Value: "https://twitter.com/ststephenschool"},
	{Key: "instagramUrl", Value: "https://instagram.com/ststephenschool"},
	{Key: "youtubeUrl", Value: "https://youtube.com/ststephenschool"},
	{Key: "heroTitle", Value: "Welcome to St. Stephen School"},
	{Key: "heroSubtitle", Value: "Nurturing Excellence, Building Character"},
	{Key: "aboutIntro", Value: "St. Stephen School is a prestigious institution with a rich legacy of academic excellence and character building."},
	{Key: "aboutMission", Value: "Our mission is to provide quality education that nurtures intellectual, physical, emotional, and spiritual growth while instilling values of integrity, compassion, and resilience."},
	{Key: "aboutVision", Value: "To be a leading educational institution that develops future leaders committed to positive social change and global citizenship."},
	{Key: "foundedYear", Value: "1978"},
}

type Notice struct {
	ID             int       `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	Content        string    `json:"content" db:"content"`
	Category       string    `json:"category" db:"category"`
	Date           time.Time `json:"date" db:"date"` // UTC
	Important      bool      `json:"important" db:"important"`
	AttachmentURL  string    `json:"attachment_url" db:"attachment_url"`
	AttachmentType string    `json:"attachment_type" db:"attachment_type"`
	IsActive       bool      `json:"is_active" db:"is_active"`
}

// NewNotice is used both to create and to fully replace a notice.
type NewNotice struct {
	Title          string `json:"title" validate:"required,notblank,max=200"`
	Content        string `json:"content" validate:"required,notblank"`
	Category       string `json:"category" validate:"required,notblank,max=50"`
	Important      bool   `json:"important"`
	AttachmentURL  string `json:"attachment_url" validate:"omitempty,url"`
	AttachmentType string `json:"attachment_type" validate:"omitempty,max=50"`
	IsActive       *bool  `json:"is_active"`
}

func (nn *NewNotice) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Content = core.CleanString(nn.Content)
	nn.Category = core.CleanString(nn.Category, true /* lower */)
	nn.AttachmentURL = core.CleanString(nn.AttachmentURL)
	nn.AttachmentType = core.CleanString(nn.AttachmentType, true /* lower */)
	return validate.Struct(nn)
}

func (nn NewNotice) active() bool {
	return nn.IsActive == nil || *nn.IsActive
}

type NoticeFilter struct {
	ActiveOnly bool
	Limit      int
}

type ContactStatus string

const (
	ContactUnread   ContactStatus = "unread"
	ContactRead     ContactStatus = "read"
	ContactArchived ContactStatus = "archived"
)

func (s ContactStatus) IsValid() bool {
	return s == ContactUnread || s == ContactRead || s == ContactArchived
}

type ContactMessage struct {
	ID        int           `json:"id" db:"id"`
	Name      string        `json:"name" db:"name"`
	Email     string        `json:"email" db:"email"`
	Subject   string        `json:"subject" db:"subject"`
	Message   string        `json:"message" db:"message"`
	Status    ContactStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"` // UTC
}

type NewContactMessage struct {
	Name    string `json:"name" validate:"required,notblank,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,notblank,max=200"`
	Message string `json:"message" validate:"required,notblank,max=5000"`
}

func (nm *NewContactMessage) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Subject = core.CleanString(nm.Subject)
	nm.Message = core.CleanString(nm.Message)
	return validate.Struct(nm)
}

type SetContactStatus struct {
	Status ContactStatus `json:"status" validate:"required"`
}

func (ss *SetContactStatus) Validate(validate *validator.Validate) error {
	ss.Status = ContactStatus(core.CleanString(string(ss.Status), true /* lower */))
	if err := validate.Struct(ss); err != nil {
		return err
	}
	if !ss.Status.IsValid() {
		return core.NewValidationError(nil, core.FieldError{
			Field: "status", Error: "status must be one of: unread, read, archived",
		})
	}
	return nil
}
