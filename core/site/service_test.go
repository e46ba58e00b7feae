package site_test

import (
	"context"
	"io"
	"log"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/site"
	"github.com/stephenschool/schoolconnect/services/email"
	"github.com/stephenschool/schoolconnect/services/logger"
	"github.com/stephenschool/schoolconnect/storage/database/dummydb"
)

func setup(adminEmail mail.Address) (*site.Service, *emailsvc.ConsoleServiceMock) {
	conf := core.NewTestConfig()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf))
	return site.NewService(dummydb.NewSiteRepository(dummydb.Open()), mailSvc, adminEmail), mailSvc
}

func TestService_SeedDefaults(t *testing.T) {
	svc, _ := setup(mail.Address{})
	ctx := context.Background()

	n, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(site.DefaultSettings), n)

	name, err := svc.Setting(ctx, "schoolName")
	require.NoError(t, err)
	assert.Equal(t, "St. Stephen School", name.Value)

	n, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "seeding a non-empty store is a no-op")
}

func TestService_settings(t *testing.T) {
	svc, _ := setup(mail.Address{})
	ctx := context.Background()

	s, err := svc.CreateSetting(ctx, site.NewSetting{Key: "foundedYear", Value: "1978"})
	require.NoError(t, err)

	_, err = svc.CreateSetting(ctx, site.NewSetting{Key: "foundedYear", Value: "1979"})
	assert.ErrorIs(t, err, site.ErrSettingExists)

	updated, err := svc.UpdateSetting(ctx, "foundedYear", site.UpdateSetting{Value: "1980"})
	require.NoError(t, err)
	assert.Equal(t, s.ID, updated.ID)
	assert.Equal(t, "1980", updated.Value)

	_, err = svc.UpdateSetting(ctx, "lol", site.UpdateSetting{Value: "x"})
	assert.ErrorIs(t, err, site.ErrSettingNotFound)

	require.NoError(t, svc.DeleteSetting(ctx, s.ID))
	_, err = svc.Setting(ctx, "foundedYear")
	assert.ErrorIs(t, err, site.ErrSettingNotFound)
}

func TestService_notices(t *testing.T) {
	svc, _ := setup(mail.Address{})
	ctx := context.Background()

	inactive := false
	var ids []int
	for _, nn := range []site.NewNotice{
		{Title: "One", Content: "1", Category: "general"},
		{Title: "Two", Content: "2", Category: "general", IsActive: &inactive},
		{Title: "Three", Content: "3", Category: "events"},
		{Title: "Four", Content: "4", Category: "events"},
		{Title: "Five", Content: "5", Category: "academics"},
	} {
		n, err := svc.CreateNotice(ctx, nn)
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	tests := []struct {
		name  string
		query func() ([]site.Notice, error)
		want  []int
	}{
		{name: "all", query: func() ([]site.Notice, error) { return svc.Notices(ctx, false) }, want: []int{ids[4], ids[3], ids[2], ids[1], ids[0]}},
		{name: "active", query: func() ([]site.Notice, error) { return svc.Notices(ctx, true) }, want: []int{ids[4], ids[3], ids[2], ids[0]}},
		{name: "recent (default limit)", query: func() ([]site.Notice, error) { return svc.RecentNotices(ctx, 0) }, want: []int{ids[4], ids[3], ids[2]}},
		{name: "recent (limit 1)", query: func() ([]site.Notice, error) { return svc.RecentNotices(ctx, 1) }, want: []int{ids[4]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notices, err := tt.query()
			require.NoError(t, err)
			got := make([]int, 0, len(notices))
			for _, n := range notices {
				got = append(got, n.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("update keeps the active flag unless set", func(t *testing.T) {
		n, err := svc.UpdateNotice(ctx, ids[1], site.NewNotice{Title: "Two!", Content: "2", Category: "general"})
		require.NoError(t, err)
		assert.Equal(t, "Two!", n.Title)
		assert.False(t, n.IsActive)

		active := true
		n, err = svc.UpdateNotice(ctx, ids[1], site.NewNotice{Title: "Two!", Content: "2", Category: "general", IsActive: &active})
		require.NoError(t, err)
		assert.True(t, n.IsActive)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.DeleteNotice(ctx, ids[0]))
		_, err := svc.Notice(ctx, ids[0])
		assert.ErrorIs(t, err, site.ErrNoticeNotFound)
	})
}

func TestService_SubmitContactMessage(t *testing.T) {
	ctx := context.Background()
	msg := site.NewContactMessage{Name: "Visitor", Email: "visitor@test.school", Subject: "Fees", Message: "Hello"}

	t.Run("forwarded to the admin", func(t *testing.T) {
		svc, mailSvc := setup(mail.Address{Name: "Admin", Address: "admin@test.school"})

		m, err := svc.SubmitContactMessage(ctx, msg)
		require.NoError(t, err)
		assert.Equal(t, site.ContactUnread, m.Status)

		sent := mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "admin@test.school", sent[0].To[0].Address)
		assert.Equal(t, "Contact form: Fees", sent[0].Subject)

		m, err = svc.SetContactMessageStatus(ctx, m.ID, site.ContactArchived)
		require.NoError(t, err)
		assert.Equal(t, site.ContactArchived, m.Status)
	})

	t.Run("no admin email", func(t *testing.T) {
		svc, mailSvc := setup(mail.Address{})

		_, err := svc.SubmitContactMessage(ctx, msg)
		require.NoError(t, err)
		assert.Empty(t, mailSvc.SentMessages())

		messages, err := svc.ContactMessages(ctx)
		require.NoError(t, err)
		assert.Len(t, messages, 1)
	})
}
