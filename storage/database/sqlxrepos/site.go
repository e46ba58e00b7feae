package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core/site"
)

const (
	settingColumns = "id, key, value, updated_at"
	noticeColumns  = "id, title, content, category, date, important, attachment_url, attachment_type, is_active"
	messageColumns = "id, name, email, subject, message, status, created_at"
	galleryColumns = "id, title, description, image_url, category, upload_date, is_active"
	featColumns    = "id, title, description, achievement_date, category, value, image_url, is_active"
)

type siteRepository struct {
	db *sqlx.DB
}

var _ site.Repository = (*siteRepository)(nil) // interface compliance check

func NewSiteRepository(db *sqlx.DB) site.Repository {
	return &siteRepository{db: db}
}

// settings

func (repo *siteRepository) CreateSetting(ctx context.Context, s site.Setting) (site.Setting, error) {
	id, err := insert(ctx, repo.db, "INSERT INTO site_settings (key, value, updated_at) VALUES (:key, :value, :updated_at)", s)
	if err != nil {
		if isUniqueViolation(err) {
			return site.Setting{}, site.ErrSettingExists
		}
		return site.Setting{}, errors.Wrap(err, "inserting setting")
	}
	s.ID = id
	return s, nil
}

func (repo *siteRepository) GetSetting(ctx context.Context, key string) (site.Setting, error) {
	var s site.Setting
	err := repo.db.GetContext(ctx, &s, repo.db.Rebind("SELECT "+settingColumns+" FROM site_settings WHERE key = ?"), key)
	if err != nil {
		return site.Setting{}, trapNoRowsErr(err, site.ErrSettingNotFound, "finding setting")
	}
	return s, nil
}

func (repo *siteRepository) QuerySettings(ctx context.Context) ([]site.Setting, error) {
	settings := make([]site.Setting, 0)
	if err := repo.db.SelectContext(ctx, &settings, "SELECT "+settingColumns+" FROM site_settings ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "querying settings")
	}
	return settings, nil
}

func (repo *siteRepository) UpdateSetting(ctx context.Context, s site.Setting) (site.Setting, error) {
	err := update(ctx, repo.db, "UPDATE site_settings SET value = :value, updated_at = :updated_at WHERE id = :id", s, site.ErrSettingNotFound)
	if err != nil {
		if errors.Is(err, site.ErrSettingNotFound) {
			return site.Setting{}, err
		}
		return site.Setting{}, errors.Wrap(err, "updating setting")
	}
	return s, nil
}

func (repo *siteRepository) DeleteSetting(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, "site_settings", id, site.ErrSettingNotFound)
}

// notices

func (repo *siteRepository) CreateNotice(ctx context.Context, n site.Notice) (site.Notice, error) {
	id, err := insert(ctx, repo.db, `
		INSERT INTO notices (title, content, category, date, important, attachment_url, attachment_type, is_active)
		VALUES (:title, :content, :category, :date, :important, :attachment_url, :attachment_type, :is_active)`,
		n)
	if err != nil {
		return site.Notice{}, errors.Wrap(err, "inserting notice")
	}
	n.ID = id
	return n, nil
}

func (repo *siteRepository) GetNotice(ctx context.Context, id int) (site.Notice, error) {
	var n site.Notice
	err := repo.db.GetContext(ctx, &n, repo.db.Rebind("SELECT "+noticeColumns+" FROM notices WHERE id = ?"), id)
	if err != nil {
		return site.Notice{}, trapNoRowsErr(err, site.ErrNoticeNotFound, "finding notice")
	}
	return n, nil
}

func (repo *siteRepository) QueryNotices(ctx context.Context, filter site.NoticeFilter) ([]site.Notice, error) {
	query := "SELECT " + noticeColumns + " FROM notices"
	var args []interface{}
	if filter.ActiveOnly {
		query += " WHERE is_active = ?"
		args = append(args, true)
	}
	query += " ORDER BY date DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	notices := make([]site.Notice, 0)
	if err := repo.db.SelectContext(ctx, &notices, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying notices")
	}
	return notices, nil
}

func (repo *siteRepository) UpdateNotice(ctx context.Context, n site.Notice) (site.Notice, error) {
	err := update(ctx, repo.db, `
		UPDATE notices SET
			title = :title, content = :content, category = :category, important = :important,
			attachment_url = :attachment_url, attachment_type = :attachment_type, is_active = :is_active
		WHERE id = :id`,
		n, site.ErrNoticeNotFound)
	if err != nil {
		if errors.Is(err, site.ErrNoticeNotFound) {
			return site.Notice{}, err
		}
		return site.Notice{}, errors.Wrap(err, "updating notice")
	}
	return repo.GetNotice(ctx, n.ID)
}

func (repo *siteRepository) DeleteNotice(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, "notices", id, site.ErrNoticeNotFound)
}

// contact messages

func (repo *siteRepository) CreateContactMessage(ctx context.Context, m site.ContactMessage) (site.ContactMessage, error) {
	id, err := insert(ctx, repo.db, `
		INSERT INTO contact_messages (name, email, subject, message, status, created_at)
		VALUES (:name, :email, :subject, :message, :status, :created_at)`,
		m)
	if err != nil {
		return site.ContactMessage{}, errors.Wrap(err, "inserting contact message")
	}
	m.ID = id
	return m, nil
}

func (repo *siteRepository) QueryContactMessages(ctx context.Context) ([]site.ContactMessage, error) {
	messages := make([]site.ContactMessage, 0)
	query := "SELECT " + messageColumns + " FROM contact_messages ORDER BY created_at DESC, id DESC"
	if err := repo.db.SelectContext(ctx, &messages, query); err != nil {
		return nil, errors.Wrap(err, "querying contact messages")
	}
	return messages, nil
}

func (repo *siteRepository) SetContactMessageStatus(ctx context.Context, id int, status site.ContactStatus) (site.ContactMessage, error) {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("UPDATE contact_messages SET status = ? WHERE id = ?"), string(status), id)
	if err != nil {
		return site.ContactMessage{}, errors.Wrap(err, "updating contact message status")
	}
	if err = checkAffected(res, site.ErrMessageNotFound); err != nil {
		return site.ContactMessage{}, err
	}
	var m site.ContactMessage
	err = repo.db.GetContext(ctx, &m, repo.db.Rebind("SELECT "+messageColumns+" FROM contact_messages WHERE id = ?"), id)
	if err != nil {
		return site.ContactMessage{}, trapNoRowsErr(err, site.ErrMessageNotFound, "finding contact message")
	}
	return m, nil
}

func (repo *siteRepository) DeleteContactMessage(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, "contact_messages", id, site.ErrMessageNotFound)
}

// gallery

func (repo *siteRepository) CreateGalleryItem(ctx context.Context, g site.GalleryItem) (site.GalleryItem, error) {
	id, err := insert(ctx, repo.db, `
		INSERT INTO gallery (title, description, image_url, category, upload_date, is_active)
		VALUES (:title, :description, :image_url, :category, :upload_date, :is_active)`,
		g)
	if err != nil {
		return site.GalleryItem{}, errors.Wrap(err, "inserting gallery item")
	}
	g.ID = id
	return g, nil
}

func (repo *siteRepository) GetGalleryItem(ctx context.Context, id int) (site.GalleryItem, error) {
	var g site.GalleryItem
	err := repo.db.GetContext(ctx, &g, repo.db.Rebind("SELECT "+galleryColumns+" FROM gallery WHERE id = ?"), id)
	if err != nil {
		return site.GalleryItem{}, trapNoRowsErr(err, site.ErrGalleryItemNotFound, "finding gallery item")
	}
	return g, nil
}

func (repo *siteRepository) QueryGallery(ctx context.Context, activeOnly bool) ([]site.GalleryItem, error) {
	query := "SELECT " + galleryColumns + " FROM gallery"
	var args []interface{}
	if activeOnly {
		query += " WHERE is_active = ?"
		args = append(args, true)
	}
	query += " ORDER BY upload_date DESC, id DESC"

	items := make([]site.GalleryItem, 0)
	if err := repo.db.SelectContext(ctx, &items, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying gallery")
	}
	return items, nil
}

func (repo *siteRepository) UpdateGalleryItem(ctx context.Context, g site.GalleryItem) (site.GalleryItem, error) {
	err := update(ctx, repo.db, `
		UPDATE gallery SET
			title = :title, description = :description, image_url = :image_url,
			category = :category, is_active = :is_active
		WHERE id = :id`,
		g, site.ErrGalleryItemNotFound)
	if err != nil {
		if errors.Is(err, site.ErrGalleryItemNotFound) {
			return site.GalleryItem{}, err
		}
		return site.GalleryItem{}, errors.Wrap(err, "updating gallery item")
	}
	return repo.GetGalleryItem(ctx, g.ID)
}

func (repo *siteRepository) DeleteGalleryItem(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, "gallery", id, site.ErrGalleryItemNotFound)
}

// achievements

func (repo *siteRepository) CreateAchievement(ctx context.Context, a site.Achievement) (site.Achievement, error) {
	id, err := insert(ctx, repo.db, `
		INSERT INTO achievements (title, description, achievement_date, category, value, image_url, is_active)
		VALUES (:title, :description, :achievement_date, :category, :value, :image_url, :is_active)`,
		a)
	if err != nil {
		return site.Achievement{}, errors.Wrap(err, "inserting achievement")
	}
	a.ID = id
	return a, nil
}

func (repo *siteRepository) GetAchievement(ctx context.Context, id int) (site.Achievement, error) {
	var a site.Achievement
	err := repo.db.GetContext(ctx, &a, repo.db.Rebind("SELECT "+featColumns+" FROM achievements WHERE id = ?"), id)
	if err != nil {
		return site.Achievement{}, trapNoRowsErr(err, site.ErrAchievementNotFound, "finding achievement")
	}
	return a, nil
}

func (repo *siteRepository) QueryAchievements(ctx context.Context, activeOnly bool) ([]site.Achievement, error) {
	query := "SELECT " + featColumns + " FROM achievements"
	var args []interface{}
	if activeOnly {
		query += " WHERE is_active = ?"
		args = append(args, true)
	}
	query += " ORDER BY achievement_date DESC, id DESC"

	feats := make([]site.Achievement, 0)
	if err := repo.db.SelectContext(ctx, &feats, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying achievements")
	}
	return feats, nil
}

func (repo *siteRepository) UpdateAchievement(ctx context.Context, a site.Achievement) (site.Achievement, error) {
	err := update(ctx, repo.db, `
		UPDATE achievements SET
			title = :title, description = :description, category = :category,
			value = :value, image_url = :image_url, is_active = :is_active
		WHERE id = :id`,
		a, site.ErrAchievementNotFound)
	if err != nil {
		if errors.Is(err, site.ErrAchievementNotFound) {
			return site.Achievement{}, err
		}
		return site.Achievement{}, errors.Wrap(err, "updating achievement")
	}
	return repo.GetAchievement(ctx, a.ID)
}

func (repo *siteRepository) DeleteAchievement(ctx context.Context, id int) error {
	return deleteByID(ctx, repo.db, "achievements", id, site.ErrAchievementNotFound)
}
