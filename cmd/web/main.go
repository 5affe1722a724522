// Package main starts the practice log web front-end: it wires the cookie
// session store, the REST API client, services, handlers and the HTTP(S)
// server, and shuts down gracefully on SIGINT or SIGTERM.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/practicelog/internal/auth"
	"github.com/atinyakov/practicelog/internal/client/api"
	"github.com/atinyakov/practicelog/internal/config"
	"github.com/atinyakov/practicelog/internal/logger"
	"github.com/atinyakov/practicelog/internal/middleware"
	"github.com/atinyakov/practicelog/internal/server/handler/http"
	"github.com/atinyakov/practicelog/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse command-line, file and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	if err := options.Validate(); err != nil {
		zapLogger.Fatal("invalid configuration", zap.Error(err))
	}
	if !options.IsProduction() && options.SessionSecret == "" {
		zapLogger.Warn("SESSION_SECRET not set, using development secret")
	}

	// Cookie session holding the bearer token.
	store, err := auth.NewStore(auth.StoreOptions{
		Secrets: options.SessionSecrets(),
		Secure:  options.IsProduction(),
	})
	if err != nil {
		zapLogger.Fatal("cannot init session store", zap.Error(err))
	}

	// REST API client and business-logic services.
	client := api.New(options.APIURL, options.APITimeout)
	authService := service.NewAuthService(client)
	practiceService := service.NewPracticeService(client)

	views, err := http.NewRenderer()
	if err != nil {
		zapLogger.Fatal("cannot parse templates", zap.Error(err))
	}

	authHandler := &http.AuthHandler{AuthService: authService, Store: store, Views: views, Logger: zapLogger}
	homeHandler := &http.HomeHandler{PracticeService: practiceService, Store: store, Views: views, Logger: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(store, authHandler, homeHandler, middleware.AuthLimit, options.TrustProxy, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if options.UseTLS() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server",
			zap.String("addr", options.Addr),
			zap.String("api", client.BaseURL),
			zap.Bool("tls", options.UseTLS()),
			zap.String("env", options.Env),
		)
		if options.UseTLS() {
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
