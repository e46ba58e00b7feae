package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core/student"
)

type studentApi struct {
	svc      *student.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, guard *guard, deps ServerDeps) {
	api := studentApi{
		svc:      deps.StudentSvc,
		validate: deps.Validate,
	}

	// own data
	sg := g.Group("/student", guard.student())
	sg.GET("/profile", api.profile)
	sg.GET("/academic-records", api.ownRecords)

	ag := g.Group("/admin", guard.admin())
	ag.GET("/students", api.query)
	ag.GET("/students/:id", api.retrieve)
	ag.PUT("/students/:id", api.update)
	ag.GET("/students/:id/academic-records", api.records)
	ag.POST("/academic-records", api.createRecord)
	ag.PUT("/academic-records/:id", api.updateRecord)
}

// contextStudent returns the student profile of the authenticated user.
func contextStudent(ctx echo.Context, svc *student.Service) (student.Profile, error) {
	usr, err := getContextUser(ctx)
	if err != nil {
		return student.Profile{}, err
	}
	p, err := svc.GetByUserID(ctx.Request().Context(), usr.ID)
	if err != nil {
		return student.Profile{}, errors.Wrap(err, "finding student profile")
	}
	return p, nil
}

func (api *studentApi) profile(ctx echo.Context) error {
	p, err := contextStudent(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *studentApi) ownRecords(ctx echo.Context) error {
	p, err := contextStudent(ctx, api.svc)
	if err != nil {
		return err
	}
	return api.listRecords(ctx, p.ID)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := bindQuery(ctx, filter); err != nil {
		return err
	}
	profiles, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if profiles == nil {
		profiles = []student.Profile{}
	}
	return ctx.JSON(http.StatusOK, profiles)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data student.UpdateProfile
	if err = bindJSON(ctx, &data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *studentApi) records(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.GetByID(ctx.Request().Context(), id); err != nil {
		return err
	}
	return api.listRecords(ctx, id)
}

func (api *studentApi) listRecords(ctx echo.Context, studentID int) error {
	records, err := api.svc.Records(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "querying academic records")
	}
	if records == nil {
		records = []student.AcademicRecord{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *studentApi) createRecord(ctx echo.Context) error {
	var data student.NewAcademicRecord
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.CreateRecord(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating academic record")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *studentApi) updateRecord(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data student.UpdateAcademicRecord
	if err = bindJSON(ctx, &data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.UpdateRecord(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating academic record")
	}
	return ctx.JSON(http.StatusOK, r)
}
