// Package httpserver runs an http.Handler with graceful shutdown, timeouts
// and structured start/stop logging.
//
// Run opens the listener first, so address errors are returned immediately
// (wrapped with ErrStart), then serves until the context is cancelled, an
// interrupt/TERM signal arrives or Shutdown is called. Shutdown is idempotent
// and bounded by the shutdown timeout; its failures wrap ErrShutdown.
//
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.HealthCheckHandler(log))
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
package httpserver
