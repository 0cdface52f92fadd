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

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/review"
	"github.com/trezcool/darasa/core/settings"
	"github.com/trezcool/darasa/core/team"
)

type (
	ServerDeps struct {
		Conf        *core.Config
		Logger      core.Logger
		TeamSvc     *team.Service
		SettingsSvc *settings.Service
		AssignSvc   *assignment.Service
		GradeSvc    *grade.Service
		CourseSvc   *course.Service
		Resolver    *review.Resolver
		Validate    *validator.Validate
		Translator  ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

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
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerAuthAPI(v1, s.deps)
	registerTeamAPI(v1, jwt, s.deps)
	registerSettingsAPI(v1, jwt, s.deps)
	registerAssignmentAPI(v1, jwt, s.deps)
	registerGradeAPI(v1, jwt, s.deps)
	registerCourseAPI(v1, jwt, s.deps)
}

func (s *Server) Start() {
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.errs <- s.app.Start(s.deps.Conf.Server.Addr)
}

func (s *Server) Errors() <-chan error {
	return s.errs
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Darasa API!")
}
