// Package bootstrap wires the dependencies shared by the API server and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	echoapi "github.com/trezcool/scorebook/apps/api/echo"
	"github.com/trezcool/scorebook/apps/workspace"
	"github.com/trezcool/scorebook/core"
	emailsvc "github.com/trezcool/scorebook/services/email"
	logsvc "github.com/trezcool/scorebook/services/logger"
	"github.com/trezcool/scorebook/services/metrics"
	"github.com/trezcool/scorebook/storage"
)

type App struct {
	Conf       *core.Config
	Logger     *logsvc.RollbarLogger
	KV         core.KVStore
	Registry   *prometheus.Registry
	Metrics    *metrics.Collector
	Workspace  *workspace.Workspace
	Validate   *validator.Validate
	Translator ut.Translator
}

// New opens the configured storage and starts a workspace on it. std receives every log line.
func New(ctx context.Context, conf *core.Config, std *log.Logger) (*App, error) {
	logger := logsvc.NewRollbarLogger(std, conf)

	kv, err := storage.Open(ctx, conf)
	if err != nil {
		logger.Close()
		return nil, errors.Wrap(err, "opening storage")
	}

	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, os.Stdout)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	ws := workspace.New(workspace.Deps{
		Conf:     conf,
		KV:       kv,
		Logger:   logger,
		Mailer:   mailSvc,
		Recorder: collector,
	})
	if err = ws.Start(ctx); err != nil {
		_ = kv.Close()
		logger.Close()
		return nil, errors.Wrap(err, "starting workspace")
	}

	validate, translator := core.NewValidator()
	return &App{
		Conf:       conf,
		Logger:     logger,
		KV:         kv,
		Registry:   reg,
		Metrics:    collector,
		Workspace:  ws,
		Validate:   validate,
		Translator: translator,
	}, nil
}

// Close releases the storage and flushes pending reports.
func (app *App) Close() {
	if err := app.KV.Close(); err != nil {
		app.Logger.Error("closing storage failed", err)
	}
	app.Logger.Close()
}

func (app *App) NewServer() echoapi.Server {
	return echoapi.NewServer(&echoapi.Options{
		Address:        app.Conf.Server.Address,
		Debug:          app.Conf.Debug,
		TestMode:       app.Conf.TestMode,
		DisableReqLogs: app.Conf.Server.DisableReqLogs,
		Workspace:      app.Workspace,
		Logger:         app.Logger,
		Metrics:        app.Metrics,
		Gatherer:       app.Registry,
		Validate:       app.Validate,
		Translator:     app.Translator,
	})
}

// Serve runs the HTTP API until it fails, ctx is done or the process is interrupted.
func (app *App) Serve(ctx context.Context) error {
	server := app.NewServer()
	app.Logger.Info(fmt.Sprintf("API listening on %s : mode %q, storage %q", app.Conf.Server.Address, app.Conf.Mode, app.Conf.Storage.Driver))

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server error")

	case sig := <-shutdown:
		app.Logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
	case <-ctx.Done():
		app.Logger.Info("context done: Start shutdown...")
	}

	// give outstanding requests a deadline for completion
	sctx, cancel := context.WithTimeout(context.Background(), app.Conf.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(sctx); err != nil {
		return errors.Wrap(err, "could not stop server gracefully")
	}
	return nil
}
