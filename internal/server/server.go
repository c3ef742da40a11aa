// Package server sets up the HTTP router and runs the server.
//
// It is the HTTP half of the composition root: internal/app builds the
// services, this package maps them to routes.
//
// ROUTES:
//
//	GET  /healthz                       liveness + storage ping
//	GET  /metrics                       Prometheus scrape endpoint
//	POST /api/auth/register             create account and log in
//	POST /api/auth/login                open a session
//	POST /api/auth/logout               close the session
//	GET  /api/auth/me                   current session            (session)
//	GET  /api/species[?q=]              catalogue, optionally searched
//	GET  /api/species/{id}              one species
//	GET  /api/species/{id}/specimens    specimens by visibility
//	GET  /api/species/{id}/map          map points and centre
//	POST /api/species                   contribute a species       (session)
//	POST /api/specimens                 submit a specimen
//	GET  /api/specimens[?addedBy=]      visible specimens, newest first
//	GET  /api/specimens/mine            the caller's specimens     (session)
//
// Every /api route runs behind OptionalSession, so handlers and services
// always see the caller's session (or none) in the request context.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/mushroom-tracker/internal/app"
	"github.com/sakif/mushroom-tracker/internal/auth"
	"github.com/sakif/mushroom-tracker/internal/handler"
	"github.com/sakif/mushroom-tracker/internal/middleware"
)

// Server owns the router and the application it serves.
type Server struct {
	router *chi.Mux
	app    *app.App
	port   int
	logger *slog.Logger
}

// New builds the router for a. The server takes ownership of a and closes
// it when Start returns.
func New(a *app.App) *Server {
	s := &Server{
		router: chi.NewRouter(),
		app:    a,
		port:   a.Config.Server.Port,
		logger: a.Logger,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes registers middleware and routes.
//
// Order: RequestID first so the logger can read it, Recoverer inside the
// logger and metrics so a panic is still recorded as a 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics())
	s.router.Use(chimiddleware.Recoverer)

	var pinger handler.Pinger
	if p, ok := s.app.Store.(handler.Pinger); ok {
		pinger = p
	}
	health := handler.NewHealthHandler(pinger, s.logger)
	s.router.Get("/healthz", health.HandleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	a := s.app
	authH := handler.NewAuthHandler(a.Auth, a.Config.Session.Lifetime, s.logger)
	speciesH := handler.NewSpeciesHandler(a.Catalogue, a.Aggregator, s.logger)
	specimenH := handler.NewSpecimenHandler(a.Submission, a.Aggregator, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.OptionalSession(a.Auth))

		r.Post("/auth/register", authH.HandleRegister)
		r.Post("/auth/login", authH.HandleLogin)
		r.Post("/auth/logout", authH.HandleLogout)

		r.Get("/species", speciesH.HandleList)
		r.Get("/species/{id}", speciesH.HandleGetByID)
		r.Get("/species/{id}/specimens", speciesH.HandleSpecimens)
		r.Get("/species/{id}/map", speciesH.HandleMap)

		r.Post("/specimens", specimenH.HandleSubmit)
		r.Get("/specimens", specimenH.HandleList)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(a.Auth))
			r.Get("/auth/me", authH.HandleMe)
			r.Post("/species", speciesH.HandleCreate)
			r.Get("/specimens/mine", specimenH.HandleMine)
		})
	})
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully:
// stop accepting connections, give in-flight requests 30 seconds, close
// the store.
func (s *Server) Start() error {
	defer func() {
		if err := s.app.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.port)),
			slog.String("storage", s.app.Config.Storage.Driver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
