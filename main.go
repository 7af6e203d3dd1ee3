package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func route(api *api) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", api.healthHandler)
	mux.HandleFunc("GET /drivers", api.getDriversHandler)
	mux.HandleFunc("GET /drivers/{id}/image", api.getDriverImageHandler)
	mux.HandleFunc("DELETE /drivers/{id}/image", api.deleteDriverImageHandler)
	mux.HandleFunc("GET /races", api.getRacesHandler)
	mux.HandleFunc("GET /resolutions", api.getResolutionsHandler)

	return withMiddleware(api.logger, mux)
}

// withMiddleware wraps h so the request id is set before logging and
// panic recovery read it.
func withMiddleware(logger *zap.Logger, h http.Handler) http.Handler {
	h = loggingMiddleware(logger, h)
	h = recoverMiddleware(logger, h)
	h = requestIDMiddleware(h)

	return h
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []resolverOption{
		withLookupTimeout(cfg.LookupTimeout),
		withPlaceholderTTL(cfg.PlaceholderTTL),
		withLogger(logger),
	}

	var store *resolutionStore
	if cfg.DatabaseURL != "" {
		db, err := openDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := initSchema(ctx, db); err != nil {
			return err
		}
		store = &resolutionStore{db: db}
		opts = append(opts, withRecorder(store))
	} else {
		logger.Info("DATABASE_URL is not set, resolution log disabled")
	}

	lookupClient := &http.Client{Timeout: cfg.LookupTimeout}
	api := &api{
		addr:     cfg.Addr,
		f1:       newF1Client(cfg.F1APIURL, nil),
		images:   newImageResolver(newWikiSource(cfg.WikiAPIURL, lookupClient), newImageCache(), opts...),
		store:    store,
		logger:   logger,
		parallel: 4,
	}

	srv := &http.Server{
		Addr:              api.addr,
		Handler:           route(api),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", api.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
