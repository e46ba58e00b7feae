package echoapi

import (
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/auth"
	"github.com/stephenschool/schoolconnect/core/user"
)

const (
	contextUserKey  = "user"
	contextTokenKey = "sessionToken"
)

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

// sessionCookies carries the session token in a signed, script-inaccessible cookie.
type sessionCookies struct {
	name   string
	secure bool
	codec  *securecookie.SecureCookie
}

func newSessionCookies(conf *core.Config) *sessionCookies {
	codec := securecookie.New([]byte(conf.SecretKey), nil)
	codec.MaxAge(0) // expiry is enforced server side
	return &sessionCookies{
		name:   conf.Server.SessionCookieName,
		secure: conf.Server.SecureCookies,
		codec:  codec,
	}
}

func (sc *sessionCookies) newCookie(ctx echo.Context, value string) *http.Cookie {
	return &http.Cookie{
		Name:     sc.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   sc.secure || ctx.Scheme() == "https",
	}
}

func (sc *sessionCookies) set(ctx echo.Context, token string) error {
	encoded, err := sc.codec.Encode(sc.name, token)
	if err != nil {
		return errors.Wrap(err, "encoding session cookie")
	}
	ctx.SetCookie(sc.newCookie(ctx, encoded))
	return nil
}

func (sc *sessionCookies) clear(ctx echo.Context) {
	cookie := sc.newCookie(ctx, "")
	cookie.MaxAge = -1
	ctx.SetCookie(cookie)
}

// token returns the session token of the request, if it carries a valid cookie.
func (sc *sessionCookies) token(ctx echo.Context) (string, bool) {
	cookie, err := ctx.Cookie(sc.name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	var token string
	if err = sc.codec.Decode(sc.name, cookie.Value, &token); err != nil {
		return "", false
	}
	return token, token != ""
}

type guard struct {
	svc     *auth.Service
	cookies *sessionCookies
}

func newGuard(svc *auth.Service, cookies *sessionCookies) *guard {
	return &guard{svc: svc, cookies: cookies}
}

// requireRoles rejects requests without a valid session (401) or whose user's role is not one of roles (403).
// Any authenticated user passes when roles is empty. The user and its token are stored in the echo.Context.
func (g *guard) requireRoles(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token, ok := g.cookies.token(ctx)
			if !ok {
				return auth.ErrUnauthenticated
			}
			usr, err := g.svc.Authorize(ctx.Request().Context(), token, roles...)
			if err != nil {
				return err
			}
			ctx.Set(contextUserKey, usr)
			ctx.Set(contextTokenKey, token)
			return next(ctx)
		}
	}
}

func (g *guard) authenticated() echo.MiddlewareFunc { return g.requireRoles() }

func (g *guard) admin() echo.MiddlewareFunc { return g.requireRoles(user.RoleAdmin) }

func (g *guard) student() echo.MiddlewareFunc { return g.requireRoles(user.RoleStudent) }

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUsrNotFoundInCtx
}
