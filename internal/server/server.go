// Package server wires the application together: database, services,
// handlers, middleware, and routes. It is the composition root; main.go
// only loads config and calls Start.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sizem-re/placelist/internal/auth"
	"github.com/sizem-re/placelist/internal/config"
	"github.com/sizem-re/placelist/internal/handler"
	"github.com/sizem-re/placelist/internal/middleware"
	sqliteRepo "github.com/sizem-re/placelist/internal/repository/sqlite"
	"github.com/sizem-re/placelist/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, token service,
// credential verifiers, services, handlers, routes. Each layer receives
// only the interfaces it needs.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	// The sign-in message and OAuth paths are each optional; an instance
	// can run with either or both.
	var signIn *auth.SignInVerifier
	if s.cfg.SignInSecret != "" {
		signIn, err = auth.NewSignInVerifier(s.cfg.SignInSecret)
		if err != nil {
			return fmt.Errorf("creating sign-in verifier: %w", err)
		}
	} else {
		s.logger.Warn("SIGNIN_SECRET not set, /auth/verify is disabled")
	}

	var provider *auth.Provider
	if s.cfg.ProviderClientID != "" {
		provider = auth.NewProvider(auth.ProviderConfig{
			ClientID:     s.cfg.ProviderClientID,
			ClientSecret: s.cfg.ProviderClientSecret,
			AuthURL:      s.cfg.ProviderAuthURL,
			TokenURL:     s.cfg.ProviderTokenURL,
			UserURL:      s.cfg.ProviderUserURL,
			CallbackURL:  s.cfg.ProviderCallbackURL,
		})
	} else {
		s.logger.Warn("PROVIDER_CLIENT_ID not set, OAuth login is disabled")
	}

	authService := service.NewAuthService(s.db, tokens, signIn, provider, s.logger)
	placeService := service.NewPlaceService(s.db, s.logger)
	listService := service.NewListService(s.db, s.db, s.logger)
	repairService := service.NewRepairService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	placeHandler := handler.NewPlaceHandler(placeService, s.logger)
	listHandler := handler.NewListHandler(listService, s.logger)
	repairHandler := handler.NewRepairHandler(repairService, s.cfg.AdminKeyHash, s.logger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/verify", authHandler.HandleVerify)
		r.Get("/login", authHandler.HandleLogin)
		r.Get("/callback", authHandler.HandleCallback)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Most routes serve anonymous callers too; the session, when
		// present, narrows or widens what they see.
		r.Use(auth.OptionalAuth(tokens))

		r.With(auth.RequireAuth(tokens)).Get("/me", authHandler.HandleMe)

		r.Post("/places", placeHandler.HandleCreate)
		r.Get("/places", placeHandler.HandleList)
		r.Get("/places/{id}", placeHandler.HandleGet)
		r.Patch("/places/{id}", placeHandler.HandlePatch)
		r.Delete("/places/{id}", placeHandler.HandleDelete)
		r.Get("/places/{id}/lists", listHandler.HandleListsContainingPlace)

		r.Post("/lists", listHandler.HandleCreate)
		r.Get("/lists", listHandler.HandleList)
		r.Get("/lists/{id}", listHandler.HandleGet)
		r.Patch("/lists/{id}", listHandler.HandleUpdate)
		r.Delete("/lists/{id}", listHandler.HandleDelete)
		r.Get("/lists/{id}/places", listHandler.HandleMemberships)

		r.Post("/list-places", listHandler.HandleAddPlace)
		r.Delete("/list-places", listHandler.HandleRemovePlace)
	})

	s.router.Post("/admin/reassign-owner", repairHandler.HandleReassignOwner)

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
