package site_test

import (
	"context"
	"net/mail"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/site"
)

func TestService_gallery(t *testing.T) {
	svc, _ := setup(mail.Address{})
	ctx := context.Background()

	hidden := false
	first, err := svc.CreateGalleryItem(ctx, site.NewGalleryItem{Title: "Sports day", ImageURL: "https://img.test/1.jpg"})
	require.NoError(t, err)
	assert.True(t, first.IsActive, "active by default")
	_, err = svc.CreateGalleryItem(ctx, site.NewGalleryItem{Title: "Draft", ImageURL: "https://img.test/2.jpg", IsActive: &hidden})
	require.NoError(t, err)
	last, err := svc.CreateGalleryItem(ctx, site.NewGalleryItem{Title: "Annual day", ImageURL: "https://img.test/3.jpg"})
	require.NoError(t, err)

	items, err := svc.Gallery(ctx, true)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, last.ID, items[0].ID, "newest first")
	assert.Equal(t, first.ID, items[1].ID)

	items, err = svc.Gallery(ctx, false)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	updated, err := svc.UpdateGalleryItem(ctx, first.ID, site.NewGalleryItem{Title: "Sports day 2023", ImageURL: first.ImageURL, IsActive: &hidden})
	require.NoError(t, err)
	assert.Equal(t, "Sports day 2023", updated.Title)
	assert.False(t, updated.IsActive)
	assert.True(t, first.UploadDate.Equal(updated.UploadDate))

	_, err = svc.UpdateGalleryItem(ctx, 999, site.NewGalleryItem{Title: "x", ImageURL: "https://img.test/x.jpg"})
	assert.ErrorIs(t, err, site.ErrGalleryItemNotFound)

	require.NoError(t, svc.DeleteGalleryItem(ctx, last.ID))
	assert.ErrorIs(t, svc.DeleteGalleryItem(ctx, last.ID), core.ErrNotFound)
}

func TestService_achievements(t *testing.T) {
	svc, _ := setup(mail.Address{})
	ctx := context.Background()

	a, err := svc.CreateAchievement(ctx, site.NewAchievement{Title: "Board results", Category: "academics", Value: "98%"})
	require.NoError(t, err)
	assert.True(t, a.IsActive)
	assert.False(t, a.AchievementDate.IsZero())

	hidden := false
	a, err = svc.UpdateAchievement(ctx, a.ID, site.NewAchievement{Title: "Board results", Value: "99%", IsActive: &hidden})
	require.NoError(t, err)
	assert.Equal(t, "99%", a.Value)

	feats, err := svc.Achievements(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, feats)
	feats, err = svc.Achievements(ctx, false)
	require.NoError(t, err)
	assert.Len(t, feats, 1)

	require.NoError(t, svc.DeleteAchievement(ctx, a.ID))
	assert.ErrorIs(t, svc.DeleteAchievement(ctx, a.ID), site.ErrAchievementNotFound)
}

func TestNewGalleryItem_Validate(t *testing.T) {
	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)

	tests := []struct {
		name    string
		item    site.NewGalleryItem
		wantErr bool
	}{
		{name: "valid", item: site.NewGalleryItem{Title: " Sports day ", ImageURL: "https://img.test/1.jpg", Category: " Events "}},
		{name: "image required", item: site.NewGalleryItem{Title: "Sports day"}, wantErr: true},
		{name: "image must be a url", item: site.NewGalleryItem{Title: "Sports day", ImageURL: "not a url"}, wantErr: true},
		{name: "blank title", item: site.NewGalleryItem{Title: "   ", ImageURL: "https://img.test/1.jpg"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Sports day", tt.item.Title)
			assert.Equal(t, "events", tt.item.Category)
		})
	}
}
