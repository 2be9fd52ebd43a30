// Command sessiond serves the session table of an in-memory session manager.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/sessionkit/modules/sessions"
	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/httpserver"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/pipeline"
	"github.com/dmitrymomot/sessionkit/pkg/requestid"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	Name     string `env:"APP_NAME" envDefault:"sessiond"`
	LogLevel string `env:"LOG_LEVEL"`
}

func main() {
	var (
		app       appConfig
		sessCfg   session.Config
		serverCfg httpserver.Config
	)
	config.MustLoad(&app)
	config.MustLoad(&sessCfg)
	config.MustLoad(&serverCfg)

	logOpts := []logger.Option{
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if app.LogLevel != "" {
		logOpts = append(logOpts, logger.WithLevel(logger.ParseLevel(app.LogLevel)))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	mgr := session.NewFromConfig(sessCfg, session.WithLogger(log))

	p := pipeline.New(pipeline.WithLogger(log))
	p.AddHandler(pipeline.AnyPath, pipeline.AnyVerb, mgr.Handle)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(p.Handler)

	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Mount("/sessions", sessions.NewService(mgr, log).Router())

	log.Info("starting",
		slog.Duration("session_expiration", mgr.Expiration()),
		slog.String("cookie_path", mgr.CookiePath()),
	)

	srv := httpserver.NewFromConfig(serverCfg, httpserver.WithLogger(log))
	if err := srv.Run(context.Background(), r); err != nil {
		log.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}
