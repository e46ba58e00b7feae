package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core/site"
)

// showcaseApi serves the gallery and the achievements.
type showcaseApi struct {
	svc      *site.Service
	validate *validator.Validate
}

func registerShowcaseAPI(g *echo.Group, guard *guard, deps ServerDeps) {
	api := showcaseApi{
		svc:      deps.SiteSvc,
		validate: deps.Validate,
	}

	g.GET("/gallery", api.gallery)
	g.GET("/achievements", api.achievements)

	ag := g.Group("/admin", guard.admin())
	ag.GET("/gallery", api.allGallery)
	ag.POST("/gallery", api.createGalleryItem)
	ag.PUT("/gallery/:id", api.updateGalleryItem)
	ag.DELETE("/gallery/:id", api.destroyGalleryItem)

	ag.GET("/achievements", api.allAchievements)
	ag.POST("/achievements", api.createAchievement)
	ag.PUT("/achievements/:id", api.updateAchievement)
	ag.DELETE("/achievements/:id", api.destroyAchievement)
}

// Gallery

func (api *showcaseApi) gallery(ctx echo.Context) error    { return api.listGallery(ctx, true) }
func (api *showcaseApi) allGallery(ctx echo.Context) error { return api.listGallery(ctx, false) }

func (api *showcaseApi) listGallery(ctx echo.Context, activeOnly bool) error {
	items, err := api.svc.Gallery(ctx.Request().Context(), activeOnly)
	if err != nil {
		return errors.Wrap(err, "querying gallery")
	}
	if items == nil {
		items = []site.GalleryItem{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *showcaseApi) createGalleryItem(ctx echo.Context) error {
	var data site.NewGalleryItem
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	item, err := api.svc.CreateGalleryItem(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating gallery item")
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *showcaseApi) updateGalleryItem(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data site.NewGalleryItem
	if err = bindJSON(ctx, &data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	item, err := api.svc.UpdateGalleryItem(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating gallery item")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *showcaseApi) destroyGalleryItem(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteGalleryItem(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting gallery item")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Achievements

func (api *showcaseApi) achievements(ctx echo.Context) error    { return api.listAchievements(ctx, true) }
func (api *showcaseApi) allAchievements(ctx echo.Context) error { return api.listAchievements(ctx, false) }

func (api *showcaseApi) listAchievements(ctx echo.Context, activeOnly bool) error {
	feats, err := api.svc.Achievements(ctx.Request().Context(), activeOnly)
	if err != nil {
		return errors.Wrap(err, "querying achievements")
	}
	if feats == nil {
		feats = []site.Achievement{}
	}
	return ctx.JSON(http.StatusOK, feats)
}

func (api *showcaseApi) createAchievement(ctx echo.Context) error {
	var data site.NewAchievement
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.CreateAchievement(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating achievement")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *showcaseApi) updateAchievement(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data site.NewAchievement
	if err = bindJSON(ctx, &data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.UpdateAchievement(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating achievement")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *showcaseApi) destroyAchievement(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteAchievement(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting achievement")
	}
	return ctx.NoContent(http.StatusNoContent)
}
