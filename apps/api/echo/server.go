package echoapi

import (
	"context"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/scorebook/apps/workspace"
	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/services/metrics"
)

type (
	Options struct {
		Address        string
		Debug          bool
		TestMode       bool
		DisableReqLogs bool

		Workspace  *workspace.Workspace
		Logger     core.Logger
		Metrics    *metrics.Collector  // optional
		Gatherer   prometheus.Gatherer // serves /metrics when set
		Validate   *validator.Validate
		Translator ut.Translator
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
	s.app.HideBanner = true
	s.app.Logger.SetLevel(log.INFO)
	if s.opts.Debug {
		s.app.Logger.SetLevel(log.DEBUG)
	}

	s.app.Pre(middleware.RemoveTrailingSlash())
	if s.opts.Metrics != nil {
		s.app.Use(metricsMiddleware(s.opts.Metrics))
	}
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.opts.Debug || s.opts.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger)
	s.app.Debug = s.opts.Debug

	s.app.GET("/", home)
	if s.opts.Gatherer != nil {
		s.app.GET("/metrics", echo.WrapHandler(metrics.Handler(s.opts.Gatherer)))
	}

	v1 := s.app.Group("/v1")
	ws := s.opts.Workspace
	book := bookMiddleware(ws)

	registerAuthAPI(v1, ws)
	registerRosterAPI(v1, book, ws, s.opts.Validate, s.opts.Translator)
	registerRubricAPI(v1, book, s.opts.Validate, s.opts.Translator)
	registerDataAPI(v1, book, ws, s.opts.Validate, s.opts.Translator)
}

// Start blocks until the server stops. http.ErrServerClosed is returned after Stop.
func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Welcome to Scorebook API!"})
}

func metricsMiddleware(collector *metrics.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil && !ctx.Response().Committed {
				ctx.Error(err) // commits the response so the status is known
			}
			collector.RecordRequest(ctx.Request().Method, ctx.Response().Status, time.Since(start))
			return nil
		}
	}
}
