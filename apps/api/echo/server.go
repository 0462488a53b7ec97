package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/record"
	"github.com/trezcool/ams/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		// RequireAuth puts the records endpoints behind a JWT and deletes behind the admin role.
		RequireAuth bool
		API         record.API
		UserSvc     *user.Service
		Logger      core.Logger
		// Shutdown is called when a handler fails with a core shutdown error.
		Shutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.GetBool("debug")
	shutdown := s.opts.Shutdown
	if shutdown == nil {
		shutdown = func() {}
	}

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.GetBool("testMode")) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORS())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, shutdown)
	s.app.Debug = debug
	s.app.HideBanner = true

	s.app.GET("/", home)
	s.app.GET(core.HealthPath(), s.health)

	jwt := middleware.JWTWithConfig(appJWTConfig)
	registerAuthAPI(s.app.Group("/auth"), jwt, s.opts.UserSvc)

	r := routes{g: s.app, auth: noopMiddleware, admin: noopMiddleware}
	if s.opts.RequireAuth {
		r.auth, r.admin = jwt, roleMiddleware(user.RoleAdmin)
	}
	registerRecordsAPI(r, s.opts.API)
}

// Start blocks until the server stops; a graceful Stop is not an error.
func (s *server) Start() error {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.GetString("appName")+" Records API!")
}

func (s *server) health(ctx echo.Context) error {
	status := s.opts.API.Health(ctx.Request().Context())
	if !status.OK {
		return ctx.JSON(http.StatusServiceUnavailable, status)
	}
	return ctx.JSON(http.StatusOK, status)
}
