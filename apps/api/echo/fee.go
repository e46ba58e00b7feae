package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core/fee"
	"github.com/stephenschool/schoolconnect/core/student"
)

type feeApi struct {
	svc        *fee.Service
	studentSvc *student.Service
	validate   *validator.Validate
}

func registerFeeAPI(g *echo.Group, guard *guard, deps ServerDeps) {
	api := feeApi{
		svc:        deps.FeeSvc,
		studentSvc: deps.StudentSvc,
		validate:   deps.Validate,
	}

	sg := g.Group("/student/fees", guard.student())
	sg.GET("", api.ownFees)
	sg.POST("/:id/pay", api.pay)

	ag := g.Group("/admin/fees", guard.admin())
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.setStatus)
}

func (api *feeApi) ownFees(ctx echo.Context) error {
	p, err := contextStudent(ctx, api.studentSvc)
	if err != nil {
		return err
	}
	fees, err := api.svc.ForStudent(ctx.Request().Context(), p.ID)
	if err != nil {
		return errors.Wrap(err, "querying student fees")
	}
	return ctx.JSON(http.StatusOK, fees)
}

// pay records the payment of one of the authenticated student's fees.
func (api *feeApi) pay(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data fee.NewPayment
	if err = bindJSON(ctx, &data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	p, err := contextStudent(ctx, api.studentSvc)
	if err != nil {
		return err
	}
	payment, err := api.svc.RecordPayment(ctx.Request().Context(), id, data, p.ID)
	if err != nil {
		return errors.Wrap(err, "recording payment")
	}
	return ctx.JSON(http.StatusCreated, payment)
}

func (api *feeApi) query(ctx echo.Context) error {
	filter := new(fee.QueryFilter)
	if err := bindQuery(ctx, filter); err != nil {
		return err
	}
	fees, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying fees")
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *feeApi) create(ctx echo.Context) error {
	var data fee.NewFee
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	f, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating fee")
	}
	view, err := api.svc.Get(ctx.Request().Context(), f.ID)
	if err != nil {
		return errors.Wrap(err, "retrieving fee")
	}
	return ctx.JSON(http.StatusCreated, view)
}

func (api *feeApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	view, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, view)
}

// setStatus is the admin override. It never creates a payment.
func (api *feeApi) setStatus(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data fee.SetStatus
	if err = bindJSON(ctx, &data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	admin, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	view, err := api.svc.SetStatus(ctx.Request().Context(), id, data.Status, admin)
	if err != nil {
		return errors.Wrap(err, "setting fee status")
	}
	return ctx.JSON(http.StatusOK, view)
}
