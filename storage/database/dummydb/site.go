package dummydb

import (
	"context"
	"sort"

	"github.com/stephenschool/schoolconnect/core/site"
)

type siteRepository struct {
	db *DB
}

var _ site.Repository = (*siteRepository)(nil) // interface compliance check

func NewSiteRepository(db *DB) site.Repository {
	return &siteRepository{db: db}
}

// settings

func (repo *siteRepository) CreateSetting(_ context.Context, s site.Setting) (site.Setting, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.settings {
		if existing.Key == s.Key {
			return site.Setting{}, site.ErrSettingExists
		}
	}
	s.ID = repo.db.nextID("site_settings")
	repo.db.settings[s.ID] = &s
	return s, nil
}

func (repo *siteRepository) GetSetting(_ context.Context, key string) (site.Setting, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.settings {
		if s.Key == key {
			return *s, nil
		}
	}
	return site.Setting{}, site.ErrSettingNotFound
}

func (repo *siteRepository) QuerySettings(_ context.Context) ([]site.Setting, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	settings := make([]site.Setting, 0, len(repo.db.settings))
	for _, s := range repo.db.settings {
		settings = append(settings, *s)
	}
	sort.Slice(settings, func(i, j int) bool { return settings[i].ID < settings[j].ID })
	return settings, nil
}

func (repo *siteRepository) UpdateSetting(_ context.Context, s site.Setting) (site.Setting, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.settings[s.ID]
	if !ok {
		return site.Setting{}, site.ErrSettingNotFound
	}
	orig.Value = s.Value
	orig.UpdatedAt = s.UpdatedAt
	return *orig, nil
}

func (repo *siteRepository) DeleteSetting(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.settings[id]; !ok {
		return site.ErrSettingNotFound
	}
	delete(repo.db.settings, id)
	return nil
}

// notices

func (repo *siteRepository) CreateNotice(_ context.Context, n site.Notice) (site.Notice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	n.ID = repo.db.nextID("notices")
	repo.db.notices[n.ID] = &n
	return n, nil
}

func (repo *siteRepository) GetNotice(_ context.Context, id int) (site.Notice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if n, ok := repo.db.notices[id]; ok {
		return *n, nil
	}
	return site.Notice{}, site.ErrNoticeNotFound
}

func (repo *siteRepository) QueryNotices(_ context.Context, filter site.NoticeFilter) ([]site.Notice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notices := make([]site.Notice, 0, len(repo.db.notices))
	for _, n := range repo.db.notices {
		if filter.ActiveOnly && !n.IsActive {
			continue
		}
		notices = append(notices, *n)
	}
	sort.Slice(notices, func(i, j int) bool {
		if !notices[i].Date.Equal(notices[j].Date) {
			return notices[i].Date.After(notices[j].Date)
		}
		return notices[i].ID > notices[j].ID
	})
	if filter.Limit > 0 && len(notices) > filter.Limit {
		notices = notices[:filter.Limit]
	}
	return notices, nil
}

func (repo *siteRepository) UpdateNotice(_ context.Context, n site.Notice) (site.Notice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.notices[n.ID]
	if !ok {
		return site.Notice{}, site.ErrNoticeNotFound
	}
	n.Date = orig.Date
	repo.db.notices[n.ID] = &n
	return n, nil
}

func (repo *siteRepository) DeleteNotice(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.notices[id]; !ok {
		return site.ErrNoticeNotFound
	}
	delete(repo.db.notices, id)
	return nil
}

// contact messages

func (repo *siteRepository) CreateContactMessage(_ context.Context, m site.ContactMessage) (site.ContactMessage, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	m.ID = repo.db.nextID("contact_messages")
	repo.db.messages[m.ID] = &m
	return m, nil
}

func (repo *siteRepository) QueryContactMessages(_ context.Context) ([]site.ContactMessage, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	messages := make([]site.ContactMessage, 0, len(repo.db.messages))
	for _, m := range repo.db.messages {
		messages = append(messages, *m)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].ID > messages[j].ID })
	return messages, nil
}

func (repo *siteRepository) SetContactMessageStatus(_ context.Context, id int, status site.ContactStatus) (site.ContactMessage, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	m, ok := repo.db.messages[id]
	if !ok {
		return site.ContactMessage{}, site.ErrMessageNotFound
	}
	m.Status = status
	return *m, nil
}

func (repo *siteRepository) DeleteContactMessage(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.messages[id]; !ok {
		return site.ErrMessageNotFound
	}
	delete(repo.db.messages, id)
	return nil
}

// gallery

func (repo *siteRepository) CreateGalleryItem(_ context.Context, g site.GalleryItem) (site.GalleryItem, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	g.ID = repo.db.nextID("gallery")
	repo.db.gallery[g.ID] = &g
	return g, nil
}

func (repo *siteRepository) GetGalleryItem(_ context.Context, id int) (site.GalleryItem, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.gallery[id]; ok {
		return *g, nil
	}
	return site.GalleryItem{}, site.ErrGalleryItemNotFound
}

func (repo *siteRepository) QueryGallery(_ context.Context, activeOnly bool) ([]site.GalleryItem, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	items := make([]site.GalleryItem, 0, len(repo.db.gallery))
	for _, g := range repo.db.gallery {
		if activeOnly && !g.IsActive {
			continue
		}
		items = append(items, *g)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].UploadDate.Equal(items[j].UploadDate) {
			return items[i].UploadDate.After(items[j].UploadDate)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (repo *siteRepository) UpdateGalleryItem(_ context.Context, g site.GalleryItem) (site.GalleryItem, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.gallery[g.ID]
	if !ok {
		return site.GalleryItem{}, site.ErrGalleryItemNotFound
	}
	g.UploadDate = orig.UploadDate
	repo.db.gallery[g.ID] = &g
	return g, nil
}

func (repo *siteRepository) DeleteGalleryItem(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.gallery[id]; !ok {
		return site.ErrGalleryItemNotFound
	}
	delete(repo.db.gallery, id)
	return nil
}

// achievements

func (repo *siteRepository) CreateAchievement(_ context.Context, a site.Achievement) (site.Achievement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = repo.db.nextID("achievements")
	repo.db.feats[a.ID] = &a
	return a, nil
}

func (repo *siteRepository) GetAchievement(_ context.Context, id int) (site.Achievement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.feats[id]; ok {
		return *a, nil
	}
	return site.Achievement{}, site.ErrAchievementNotFound
}

func (repo *siteRepository) QueryAchievements(_ context.Context, activeOnly bool) ([]site.Achievement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	feats := make([]site.Achievement, 0, len(repo.db.feats))
	for _, a := range repo.db.feats {
		if activeOnly && !a.IsActive {
			continue
		}
		feats = append(feats, *a)
	}
	sort.Slice(feats, func(i, j int) bool {
		if !feats[i].AchievementDate.Equal(feats[j].AchievementDate) {
			return feats[i].AchievementDate.After(feats[j].AchievementDate)
		}
		return feats[i].ID > feats[j].ID
	})
	return feats, nil
}

func (repo *siteRepository) UpdateAchievement(_ context.Context, a site.Achievement) (site.Achievement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.feats[a.ID]
	if !ok {
		return site.Achievement{}, site.ErrAchievementNotFound
	}
	a.AchievementDate = orig.AchievementDate
	repo.db.feats[a.ID] = &a
	return a, nil
}

func (repo *siteRepository) DeleteAchievement(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.feats[id]; !ok {
		return site.ErrAchievementNotFound
	}
	delete(repo.db.feats, id)
	return nil
}
