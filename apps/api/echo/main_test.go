package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/stephenschool/schoolconnect/apps/api/echo"
	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/auth"
	"github.com/stephenschool/schoolconnect/core/fee"
	"github.com/stephenschool/schoolconnect/core/inquiry"
	"github.com/stephenschool/schoolconnect/core/session"
	"github.com/stephenschool/schoolconnect/core/site"
	"github.com/stephenschool/schoolconnect/core/student"
	"github.com/stephenschool/schoolconnect/core/user"
	"github.com/stephenschool/schoolconnect/services/email"
	"github.com/stephenschool/schoolconnect/services/logger"
	"github.com/stephenschool/schoolconnect/storage/database/dummydb"
	"github.com/stephenschool/schoolconnect/tests"
)

const testPwd = "Kx9#mPq2vL"

// testApp is a Server backed by in-memory storage.
type testApp struct {
	conf        *core.Config
	server      *echoapi.Server
	usrRepo     user.Repository
	studentRepo student.Repository
	feeRepo     fee.Repository
	mailSvc     *emailsvc.ConsoleServiceMock
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)

	db := dummydb.Open()
	usrRepo := dummydb.NewUserRepository(db)
	studentRepo := dummydb.NewStudentRepository(db)
	feeRepo := dummydb.NewFeeRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	usrSvc := user.NewService(usrRepo)
	studentSvc := student.NewService(studentRepo)
	sessions := session.NewManager(dummydb.NewSessionStore(db), conf.Server.SessionIdleTimeout)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		AuthSvc:    auth.NewService(usrSvc, sessions),
		UserSvc:    usrSvc,
		StudentSvc: studentSvc,
		FeeSvc:     fee.NewService(feeRepo, studentSvc, logger),
		InquirySvc: inquiry.NewService(dummydb.NewInquiryRepository(db), mailSvc),
		SiteSvc:    site.NewService(dummydb.NewSiteRepository(db), mailSvc, conf.AdminEmail),
		Validate:   validate,
		Translator: translator,
	})
	t.Cleanup(func() { _ = server.Close() })

	return &testApp{
		conf:        conf,
		server:      server,
		usrRepo:     usrRepo,
		studentRepo: studentRepo,
		feeRepo:     feeRepo,
		mailSvc:     mailSvc,
	}
}

// createUser inserts a user with the test password.
func (app *testApp) createUser(t *testing.T, name, uname string, role user.Role) user.User {
	return testutil.CreateUser(t, app.usrRepo, name, uname, testPwd, role)
}

// login opens a session for uname and returns its cookie.
func (app *testApp) login(t *testing.T, uname string) *http.Cookie {
	t.Helper()

	body := marchallObj(t, echoapi.LoginRequest{Username: uname, Password: testPwd})
	req, rec := newRequest(http.MethodPost, "/api/login", body)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return sessionCookie(t, rec, app.conf.Server.SessionCookieName)
}

func (app *testApp) do(method, path string, cookie *http.Cookie, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, cookie, data...)
	app.server.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	cookie   *http.Cookie
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path string, cookie *http.Cookie, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, nil, data...)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("sessionCookie(): no %q cookie in response", name)
	return nil
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	t.Helper()

	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.cookie, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}
