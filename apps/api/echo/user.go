package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/auth"
	"github.com/stephenschool/schoolconnect/core/user"
)

type authApi struct {
	authSvc    *auth.Service
	userSvc    *user.Service
	cookies    *sessionCookies
	validate   *validator.Validate
	translator ut.Translator
}

func registerAuthAPI(g *echo.Group, guard *guard, throttle []echo.MiddlewareFunc, cookies *sessionCookies, deps ServerDeps) {
	api := authApi{
		authSvc:    deps.AuthSvc,
		userSvc:    deps.UserSvc,
		cookies:    cookies,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	g.POST("/login", api.login, throttle...)
	g.POST("/register", api.register, throttle...)
	g.POST("/logout", api.logout)
	g.GET("/user", api.currentUser, guard.authenticated())
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, token, err := api.authSvc.Login(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	if err = api.cookies.set(ctx, token); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

// register creates a student account. The role in the payload is ignored.
func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	data.Role = user.RoleStudent
	if err := data.Validate(ctx.Request().Context(), api.validate, api.userSvc); err != nil {
		return err
	}

	usr, token, err := api.authSvc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering")
	}
	if err = api.cookies.set(ctx, token); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *authApi) logout(ctx echo.Context) error {
	if token, ok := api.cookies.token(ctx); ok {
		if err := api.authSvc.Logout(ctx.Request().Context(), token); err != nil {
			return errors.Wrap(err, "logging out")
		}
	}
	api.cookies.clear(ctx)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) currentUser(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

type userApi struct {
	authSvc  *auth.Service
	svc      *user.Service
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, guard *guard, deps ServerDeps) {
	api := userApi{
		authSvc:  deps.AuthSvc,
		svc:      deps.UserSvc,
		validate: deps.Validate,
	}

	ug := g.Group("/admin/users", guard.admin())
	ug.GET("", api.query)
	ug.POST("", api.create)
	ug.DELETE("/:id", api.destroy)
	ug.PUT("/:id/password", api.setPassword)
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := bindQuery(ctx, filter); err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, user.OrderingFields)

	users, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

// create provisions a user of any role. A student gets its profile in the same unit of work.
func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := bindJSON(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	// an admin cannot delete themself
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if id == ctxUsr.ID {
		return errHttpForbidden
	}

	n, err := api.authSvc.DeleteUsers(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

// setPassword replaces a user's password and ends all their sessions.
func (api *userApi) setPassword(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	var data user.SetPassword
	if err = bindJSON(ctx, &data); err != nil {
		return err
	}
	data.Name, data.Username, data.Email = usr.Name, usr.Username, usr.Email
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if _, err = api.authSvc.ResetPassword(ctx.Request().Context(), usr, data.Password); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
