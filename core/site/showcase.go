package site

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stephenschool/schoolconnect/core"
)

var (
	ErrGalleryItemNotFound = core.NewError(core.ErrNotFound, "gallery item not found")
	ErrAchievementNotFound = core.NewError(core.ErrNotFound, "achievement not found")
)

// GalleryItem is a captioned school photo.
type GalleryItem struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Category    string    `json:"category" db:"category"`
	UploadDate  time.Time `json:"upload_date" db:"upload_date"` // UTC
	IsActive    bool      `json:"is_active" db:"is_active"`
}

// NewGalleryItem is used both to create and to fully replace a gallery item.
type NewGalleryItem struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	ImageURL    string `json:"image_url" validate:"required,url"`
	Category    string `json:"category" validate:"omitempty,max=50"`
	IsActive    *bool  `json:"is_active"`
}

func (ng *NewGalleryItem) Validate(validate *validator.Validate) error {
	ng.Title = core.CleanString(ng.Title)
	ng.Description = core.CleanString(ng.Description)
	ng.ImageURL = core.CleanString(ng.ImageURL)
	ng.Category = core.CleanString(ng.Category, true /* lower */)
	return validate.Struct(ng)
}

// Achievement is a school accomplishment shown on the public site.
type Achievement struct {
	ID              int       `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	AchievementDate time.Time `json:"achievement_date" db:"achievement_date"` // UTC
	Category        string    `json:"category" db:"category"`
	Value           string    `json:"value" db:"value"` // e.g. "98%", "1st place"
	ImageURL        string    `json:"image_url" db:"image_url"`
	IsActive        bool      `json:"is_active" db:"is_active"`
}

// NewAchievement is used both to create and to fully replace an achievement.
type NewAchievement struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Category    string `json:"category" validate:"omitempty,max=50"`
	Value       string `json:"value" validate:"omitempty,max=50"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	IsActive    *bool  `json:"is_active"`
}

func (na *NewAchievement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Category = core.CleanString(na.Category, true /* lower */)
	na.Value = core.CleanString(na.Value)
	na.ImageURL = core.CleanString(na.ImageURL)
	return validate.Struct(na)
}

func isActive(b *bool) bool {
	return b == nil || *b
}

// gallery

// Gallery returns gallery items, most recently uploaded first.
func (svc *Service) Gallery(ctx context.Context, activeOnly bool) ([]GalleryItem, error) {
	return svc.repo.QueryGallery(ctx, activeOnly)
}

func (svc *Service) CreateGalleryItem(ctx context.Context, ng NewGalleryItem) (GalleryItem, error) {
	return svc.repo.CreateGalleryItem(ctx, GalleryItem{
		Title:       ng.Title,
		Description: ng.Description,
		ImageURL:    ng.ImageURL,
		Category:    ng.Category,
		UploadDate:  svc.now(),
		IsActive:    isActive(ng.IsActive),
	})
}

func (svc *Service) UpdateGalleryItem(ctx context.Context, id int, ng NewGalleryItem) (GalleryItem, error) {
	g, err := svc.repo.GetGalleryItem(ctx, id)
	if err != nil {
		return GalleryItem{}, err
	}
	g.Title = ng.Title
	g.Description = ng.Description
	g.ImageURL = ng.ImageURL
	g.Category = ng.Category
	if ng.IsActive != nil {
		g.IsActive = *ng.IsActive
	}
	return svc.repo.UpdateGalleryItem(ctx, g)
}

func (svc *Service) DeleteGalleryItem(ctx context.Context, id int) error {
	return svc.repo.DeleteGalleryItem(ctx, id)
}

// achievements

// Achievements returns achievements, most recent first.
func (svc *Service) Achievements(ctx context.Context, activeOnly bool) ([]Achievement, error) {
	return svc.repo.QueryAchievements(ctx, activeOnly)
}

func (svc *Service) CreateAchievement(ctx context.Context, na NewAchievement) (Achievement, error) {
	return svc.repo.CreateAchievement(ctx, Achievement{
		Title:           na.Title,
		Description:     na.Description,
		AchievementDate: svc.now(),
		Category:        na.Category,
		Value:           na.Value,
		ImageURL:        na.ImageURL,
		IsActive:        isActive(na.IsActive),
	})
}

func (svc *Service) UpdateAchievement(ctx context.Context, id int, na NewAchievement) (Achievement, error) {
	a, err := svc.repo.GetAchievement(ctx, id)
	if err != nil {
		return Achievement{}, err
	}
	a.Title = na.Title
	a.Description = na.Description
	a.Category = na.Category
	a.Value = na.Value
	a.ImageURL = na.ImageURL
	if na.IsActive != nil {
		a.IsActive = *na.IsActive
	}
	return svc.repo.UpdateAchievement(ctx, a)
}

func (svc *Service) DeleteAchievement(ctx context.Context, id int) error {
	return svc.repo.DeleteAchievement(ctx, id)
}
