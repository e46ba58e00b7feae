package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core/inquiry"
)

type inquiryApi struct {
	svc      *inquiry.Service
	validate *validator.Validate
}

func registerInquiryAPI(g *echo.Group, guard *guard, deps ServerDeps) {
	api := inquiryApi{
		svc:      deps.InquirySvc,
		validate: deps.Validate,
	}

	g.POST("/inquiries", api.submit)

	ag := g.Group("/admin/inquiries", guard.admin())
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.setStatus)
	ag.DELETE("/:id", api.destroy)
}

func (api *inquiryApi) submit(ctx echo.Context) error {
	var data inquiry.NewInquiry
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inq, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting inquiry")
	}
	return ctx.JSON(http.StatusCreated, inq)
}

func (api *inquiryApi) query(ctx echo.Context) error {
	filter := new(inquiry.QueryFilter)
	if err := bindQuery(ctx, filter); err != nil {
		return err
	}
	inquiries, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying inquiries")
	}
	if inquiries == nil {
		inquiries = []inquiry.Inquiry{}
	}
	return ctx.JSON(http.StatusOK, inquiries)
}

func (api *inquiryApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	inq, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inq)
}

func (api *inquiryApi) setStatus(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data inquiry.SetStatus
	if err = bindJSON(ctx, &data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	inq, err := api.svc.SetStatus(ctx.Request().Context(), id, data.Status)
	if err != nil {
		return errors.Wrap(err, "setting inquiry status")
	}
	return ctx.JSON(http.StatusOK, inq)
}

func (api *inquiryApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting inquiry")
	}
	return ctx.NoContent(http.StatusNoContent)
}
