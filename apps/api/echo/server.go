package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/stephenschool/schoolconnect/core"
	"github.com/stephenschool/schoolconnect/core/auth"
	"github.com/stephenschool/schoolconnect/core/fee"
	"github.com/stephenschool/schoolconnect/core/inquiry"
	"github.com/stephenschool/schoolconnect/core/site"
	"github.com/stephenschool/schoolconnect/core/student"
	"github.com/stephenschool/schoolconnect/core/user"
)

type ServerDeps struct {
	Conf       *core.Config
	Logger     core.Logger
	AuthSvc    *auth.Service
	UserSvc    *user.Service
	StudentSvc *student.Service
	FeeSvc     *fee.Service
	InquirySvc *inquiry.Service
	SiteSvc    *site.Service
	Validate   *validator.Validate
	Translator ut.Translator
}

type Server struct {
	deps     ServerDeps
	app      *echo.Echo
	cookies  *sessionCookies
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		cookies:  newSessionCookies(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	api := s.app.Group("/api")
	guard := newGuard(s.deps.AuthSvc, s.cookies)

	// login and register are throttled per client IP when a limit is configured
	var throttle []echo.MiddlewareFunc
	if conf.Server.LoginRateLimit > 0 {
		store := middleware.NewRateLimiterMemoryStore(rate.Limit(conf.Server.LoginRateLimit))
		throttle = append(throttle, middleware.RateLimiter(store))
	}

	registerAuthAPI(api, guard, throttle, s.cookies, s.deps)
	registerUserAPI(api, guard, s.deps)
	registerStudentAPI(api, guard, s.deps)
	registerFeeAPI(api, guard, s.deps)
	registerInquiryAPI(api, guard, s.deps)
	registerSiteAPI(api, guard, s.deps)
	registerShowcaseAPI(api, guard, s.deps)
}

// Start serves until the server is shut down. Any other failure is sent to Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

// Errors reports the failures of Start.
func (s *Server) Errors() <-chan error { return s.errors }

// ShutdownSignal receives SIGINT, SIGTERM and internal shutdown requests.
func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
