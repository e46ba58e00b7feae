package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core/site"
)

type siteApi struct {
	svc      *site.Service
	validate *validator.Validate
}

func registerSiteAPI(g *echo.Group, guard *guard, deps ServerDeps) {
	api := siteApi{
		svc:      deps.SiteSvc,
		validate: deps.Validate,
	}

	// public endpoints
	g.GET("/settings", api.settings)
	g.GET("/settings/:key", api.setting)
	g.GET("/notices", api.notices)
	g.GET("/notices/recent", api.recentNotices)
	g.GET("/notices/:id", api.notice)
	g.POST("/contact", api.submitContactMessage)

	ag := g.Group("/admin", guard.admin())
	ag.POST("/settings", api.createSetting)
	ag.PUT("/settings/:key", api.updateSetting)
	ag.DELETE("/settings/:id", api.destroySetting)

	ag.GET("/notices", api.allNotices)
	ag.POST("/notices", api.createNotice)
	ag.PUT("/notices/:id", api.updateNotice)
	ag.DELETE("/notices/:id", api.destroyNotice)

	ag.GET("/contact-messages", api.contactMessages)
	ag.PUT("/contact-messages/:id", api.setContactMessageStatus)
	ag.DELETE("/contact-messages/:id", api.destroyContactMessage)
}

// Settings

func (api *siteApi) settings(ctx echo.Context) error {
	settings, err := api.svc.Settings(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying settings")
	}
	if settings == nil {
		settings = []site.Setting{}
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *siteApi) setting(ctx echo.Context) error {
	s, err := api.svc.Setting(ctx.Request().Context(), ctx.Param("key"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *siteApi) createSetting(ctx echo.Context) error {
	var data site.NewSetting
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.CreateSetting(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating setting")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *siteApi) updateSetting(ctx echo.Context) error {
	var data site.UpdateSetting
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.UpdateSetting(ctx.Request().Context(), ctx.Param("key"), data)
	if err != nil {
		return errors.Wrap(err, "updating setting")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *siteApi) destroySetting(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteSetting(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting setting")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Notices

func (api *siteApi) notices(ctx echo.Context) error {
	return api.listNotices(ctx, true)
}

func (api *siteApi) allNotices(ctx echo.Context) error {
	return api.listNotices(ctx, false)
}

func (api *siteApi) listNotices(ctx echo.Context, activeOnly bool) error {
	notices, err := api.svc.Notices(ctx.Request().Context(), activeOnly)
	if err != nil {
		return errors.Wrap(err, "querying notices")
	}
	if notices == nil {
		notices = []site.Notice{}
	}
	return ctx.JSON(http.StatusOK, notices)
}

func (api *siteApi) recentNotices(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit")) // defaults when missing or malformed
	notices, err := api.svc.RecentNotices(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "querying recent notices")
	}
	if notices == nil {
		notices = []site.Notice{}
	}
	return ctx.JSON(http.StatusOK, notices)
}

func (api *siteApi) notice(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	n, err := api.svc.Notice(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if !n.IsActive {
		return site.ErrNoticeNotFound
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *siteApi) createNotice(ctx echo.Context) error {
	var data site.NewNotice
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	n, err := api.svc.CreateNotice(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating notice")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *siteApi) updateNotice(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data site.NewNotice
	if err = bindJSON(ctx, &data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	n, err := api.svc.UpdateNotice(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating notice")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *siteApi) destroyNotice(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteNotice(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting notice")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Contact messages

func (api *siteApi) submitContactMessage(ctx echo.Context) error {
	var data site.NewContactMessage
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.SubmitContactMessage(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting contact message")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *siteApi) contactMessages(ctx echo.Context) error {
	messages, err := api.svc.ContactMessages(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying contact messages")
	}
	if messages == nil {
		messages = []site.ContactMessage{}
	}
	return ctx.JSON(http.StatusOK, messages)
}

func (api *siteApi) setContactMessageStatus(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data site.SetContactStatus
	if err = bindJSON(ctx, &data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.SetContactMessageStatus(ctx.Request().Context(), id, data.Status)
	if err != nil {
		return errors.Wrap(err, "setting contact message status")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *siteApi) destroyContactMessage(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteContactMessage(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting contact message")
	}
	return ctx.NoContent(http.StatusNoContent)
}
