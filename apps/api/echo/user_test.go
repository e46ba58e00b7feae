package echoapi_test

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenschool/schoolconnect/core/student"
	"github.com/stephenschool/schoolconnect/core/user"
)

var (
	errUnauthenticated = httpErr{Error: "user not authenticated"}
	errForbidden       = httpErr{Error: "permission denied"}
)

func Test_authApi_register(t *testing.T) {
	app := newTestApp(t)

	newUser := func(uname, pwd, confirm string, role string) []byte {
		return marchallObj(t, map[string]interface{}{
			"name":             "New Student",
			"username":         uname,
			"password":         pwd,
			"password_confirm": confirm,
			"role":             role,
		})
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "required fields", method: http.MethodPost, path: "/api/register", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":             "this field is required",
				"username":         "this field is required",
				"password":         "this field is required",
				"password_confirm": "this field is required",
			}),
		},
		{
			name: "malformed body", method: http.MethodPost, path: "/api/register", body: []byte(`{"name":`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "malformed request body"}),
		},
		{
			name: "password mismatch", method: http.MethodPost, path: "/api/register",
			body: newUser("newbie", testPwd, testPwd+"x", "student"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password_confirm": "passwords do not match"}),
		},
		{
			name: "weak password", method: http.MethodPost, path: "/api/register",
			body: newUser("newbie", "12345678", "12345678", "student"), wantCode: http.StatusBadRequest,
		},
		{
			name: "password too long", method: http.MethodPost, path: "/api/register",
			body:     newUser("newbie", strings.Repeat(testPwd, 9), strings.Repeat(testPwd, 9), "student"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must not be longer than 72 bytes"}),
		},
	})

	t.Run("role is forced to student", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/register", nil, newUser("Newbie", testPwd, testPwd, "admin"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got user.User
		unmarshal(t, rec, &got)
		assert.Equal(t, "newbie", got.Username)
		assert.Equal(t, user.RoleStudent, got.Role)
		assert.NotContains(t, rec.Body.String(), "password_hash")

		cookie := sessionCookie(t, rec, app.conf.Server.SessionCookieName)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		assert.Equal(t, "/", cookie.Path)
		assert.NotEqual(t, "", cookie.Value)

		// the student profile was created along with the user
		p, err := app.studentRepo.GetProfile(context.Background(), student.GetFilter{UserID: got.ID})
		require.NoError(t, err)
		assert.Equal(t, student.DefaultClass, p.Class)

		// the session is already open
		rec = app.do(http.MethodGet, "/api/user", cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("duplicate username", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/register", nil, newUser("newbie", testPwd, testPwd, ""))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "a user with this username already exists"}),
		}, rec)

		users, err := app.usrRepo.QueryUsers(context.Background(), nil, nil)
		require.NoError(t, err)
		assert.Len(t, users, 1)
		profiles, err := app.studentRepo.QueryProfiles(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, profiles, 1)
	})
}

func Test_authApi_login(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "Hero", "hero", user.RoleStudent)

	invalidCreds := marchallObj(t, httpErr{Error: "invalid username or password"})
	creds := func(uname, pwd string) []byte {
		return marchallObj(t, map[string]string{"username": uname, "password": pwd})
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "required fields", method: http.MethodPost, path: "/api/login", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "unknown username", method: http.MethodPost, path: "/api/login", body: creds("nobody", testPwd),
			wantCode: http.StatusUnauthorized, wantData: invalidCreds,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/api/login", body: creds("hero", testPwd+"x"),
			wantCode: http.StatusUnauthorized, wantData: invalidCreds,
		},
	})

	t.Run("success", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/login", nil, creds(" HERO ", testPwd))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got user.User
		unmarshal(t, rec, &got)
		assert.Equal(t, usr.ID, got.ID)
		assert.NotNil(t, got.LastLogin)

		cookie := sessionCookie(t, rec, app.conf.Server.SessionCookieName)
		assert.True(t, cookie.HttpOnly)

		rec = app.do(http.MethodGet, "/api/user", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		unmarshal(t, rec, &got)
		assert.Equal(t, usr.ID, got.ID)
	})
}

func Test_authApi_logout(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "Hero", "hero", user.RoleStudent)
	cookie := app.login(t, "hero")

	rec := app.do(http.MethodPost, "/api/logout", cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)
	cleared := sessionCookie(t, rec, app.conf.Server.SessionCookieName)
	assert.Equal(t, "", cleared.Value)
	assert.True(t, cleared.MaxAge < 0)

	// the old cookie no longer resolves
	rec = app.do(http.MethodGet, "/api/user", cookie)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errUnauthenticated)}, rec)

	// logging out twice is fine
	rec = app.do(http.MethodPost, "/api/logout", cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(http.MethodPost, "/api/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_guard(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "Hero", "hero", user.RoleStudent)
	app.createUser(t, "Admin", "admin", user.RoleAdmin)
	studentCookie := app.login(t, "hero")
	adminCookie := app.login(t, "admin")

	tampered := *studentCookie
	tampered.Value += "x"
	forged := &http.Cookie{Name: app.conf.Server.SessionCookieName, Value: "some-token"}

	runHTTPTests(t, app, []httpTest{
		{name: "no session", path: "/api/user", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errUnauthenticated)},
		{name: "tampered cookie", path: "/api/user", cookie: &tampered, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errUnauthenticated)},
		{name: "unsigned cookie", path: "/api/user", cookie: forged, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errUnauthenticated)},
		{name: "any role (student)", path: "/api/user", cookie: studentCookie},
		{name: "any role (admin)", path: "/api/user", cookie: adminCookie},
		{name: "admin only (anonymous)", path: "/api/admin/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errUnauthenticated)},
		{name: "admin only (student)", path: "/api/admin/users", cookie: studentCookie, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "admin only (admin)", path: "/api/admin/users", cookie: adminCookie},
		{name: "student only (admin)", path: "/api/student/fees", cookie: adminCookie, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "student only (student)", path: "/api/student/fees", cookie: studentCookie, wantData: marchallList(t)},
	})
}

func Test_userApi_query(t *testing.T) {
	app := newTestApp(t)
	admin := app.createUser(t, "Admin", "admin", user.RoleAdmin)
	hero := app.createUser(t, "Hero", "hero", user.RoleStudent)
	awe := app.createUser(t, "Awe Some", "awe", user.RoleStudent)
	cookie := app.login(t, "admin")

	// login updated the admin's last login
	admin, err := app.usrRepo.GetUser(context.Background(), user.GetFilter{ID: admin.ID})
	require.NoError(t, err)

	runHTTPTests(t, app, []httpTest{
		{name: "all", path: "/api/admin/users?ordering=id", cookie: cookie, wantData: marchallList(t, admin, hero, awe)},
		{name: "search", path: "/api/admin/users?search=HER", cookie: cookie, wantData: marchallList(t, hero)},
		{name: "search (unknown)", path: "/api/admin/users?search=lol", cookie: cookie, wantData: marchallList(t)},
		{name: "role", path: "/api/admin/users?role=student&ordering=id", cookie: cookie, wantData: marchallList(t, hero, awe)},
		{name: "role (unknown)", path: "/api/admin/users?role=teacher", cookie: cookie, wantData: marchallList(t)},
		{name: "order by -name", path: "/api/admin/users?ordering=-name", cookie: cookie, wantData: marchallList(t, hero, awe, admin)},
		{name: "unknown ordering ignored", path: "/api/admin/users?ordering=password_hash,id", cookie: cookie, wantData: marchallList(t, admin, hero, awe)},
	})
}

func Test_userApi_create(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "Admin", "admin", user.RoleAdmin)
	cookie := app.login(t, "admin")

	body := marchallObj(t, map[string]interface{}{
		"name":             "Second Admin",
		"username":         "admin2",
		"email":            "admin2@test.school",
		"password":         testPwd,
		"password_confirm": testPwd,
		"role":             "admin",
	})
	rec := app.do(http.MethodPost, "/api/admin/users", cookie, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got user.User
	unmarshal(t, rec, &got)
	assert.Equal(t, user.RoleAdmin, got.Role)
	_, err := app.studentRepo.GetProfile(context.Background(), student.GetFilter{UserID: got.ID})
	assert.ErrorIs(t, err, student.ErrNotFound)

	// a provisioned student gets the supplied profile
	body = marchallObj(t, map[string]interface{}{
		"name":             "Hero",
		"username":         "hero",
		"password":         testPwd,
		"password_confirm": testPwd,
		"role":             "student",
		"student":          map[string]string{"class": "Grade 5", "section": "B"},
	})
	rec = app.do(http.MethodPost, "/api/admin/users", cookie, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	unmarshal(t, rec, &got)
	p, err := app.studentRepo.GetProfile(context.Background(), student.GetFilter{UserID: got.ID})
	require.NoError(t, err)
	assert.Equal(t, "Grade 5", p.Class)
	assert.Equal(t, "B", p.Section)

	// an admin has no student profile
	body = marchallObj(t, map[string]interface{}{
		"name":             "Third Admin",
		"username":         "admin3",
		"password":         testPwd,
		"password_confirm": testPwd,
		"role":             "admin",
		"student":          map[string]string{"class": "Grade 5"},
	})
	rec = app.do(http.MethodPost, "/api/admin/users", cookie, body)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"student": "only students have a student profile"}),
	}, rec)
}

func Test_userApi_destroy(t *testing.T) {
	app := newTestApp(t)
	admin := app.createUser(t, "Admin", "admin", user.RoleAdmin)
	hero := app.createUser(t, "Hero", "hero", user.RoleStudent)
	cookie := app.login(t, "admin")
	heroCookie := app.login(t, "hero")

	path := func(id int) string { return "/api/admin/users/" + strconv.Itoa(id) }

	runHTTPTests(t, app, []httpTest{
		{name: "cannot delete self", method: http.MethodDelete, path: path(admin.ID), cookie: cookie, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "malformed id", method: http.MethodDelete, path: "/api/admin/users/lol", cookie: cookie, wantCode: http.StatusNotFound},
		{name: "unknown id", method: http.MethodDelete, path: path(999), cookie: cookie, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "user not found"})},
		{name: "deleted", method: http.MethodDelete, path: path(hero.ID), cookie: cookie, wantCode: http.StatusNoContent},
		{name: "already deleted", method: http.MethodDelete, path: path(hero.ID), cookie: cookie, wantCode: http.StatusNotFound},
		{name: "sessions of the deleted user are gone", path: "/api/user", cookie: heroCookie, wantCode: http.StatusUnauthorized},
	})

	profiles, err := app.studentRepo.QueryProfiles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func Test_userApi_setPassword(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "Admin", "admin", user.RoleAdmin)
	hero := app.createUser(t, "Hero", "hero", user.RoleStudent)
	cookie := app.login(t, "admin")
	heroCookie := app.login(t, "hero")

	path := "/api/admin/users/" + strconv.Itoa(hero.ID) + "/password"
	newPwd := "Zr7!wQe4nB"

	rec := app.do(http.MethodPut, path, cookie, marchallObj(t, map[string]string{"password": newPwd, "password_confirm": newPwd}))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// existing sessions are closed
	rec = app.do(http.MethodGet, "/api/user", heroCookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodPost, "/api/login", nil, marchallObj(t, map[string]string{"username": "hero", "password": newPwd}))
	assert.Equal(t, http.StatusOK, rec.Code)
}
