package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/port-russell/marina/config"
	"github.com/port-russell/marina/internal/auth"
	"github.com/port-russell/marina/internal/backup"
	"github.com/port-russell/marina/internal/docs"
	"github.com/port-russell/marina/internal/events"
	"github.com/port-russell/marina/internal/handlers"
	"github.com/port-russell/marina/internal/importer"
	"github.com/port-russell/marina/internal/logging"
	"github.com/port-russell/marina/internal/mq"
	"github.com/port-russell/marina/internal/services"
	"github.com/port-russell/marina/internal/storage"
	"github.com/port-russell/marina/internal/views"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	repos      *Repositories
	queue      *mq.MQ
	backups    *backup.Scheduler
	logger     *slog.Logger
}

// Services are the use-cases the router dispatches to.
type Services struct {
	Users        *services.UserService
	Catways      *services.CatwayService
	Reservations *services.ReservationService
}

// NewServices wires the use-cases over repos. notifier may be nil.
func NewServices(repos *Repositories, hasher *auth.Hasher, notifier events.Notifier) Services {
	return Services{
		Users:        services.NewUserService(repos.Users, hasher, notifier),
		Catways:      services.NewCatwayService(repos.Catways, notifier),
		Reservations: services.NewReservationService(repos.Reservations, notifier),
	}
}

// RouterConfig carries everything NewRouter needs.
type RouterConfig struct {
	Services     Services
	Issuer       *auth.Issuer
	Logger       *slog.Logger
	CookieSecure bool
}

// NewRouter builds the full route tree. Pages behind the session gate are
// /dashboard, /catways, /reservations and /users.
func NewRouter(cfg RouterConfig) (chi.Router, error) {
	if cfg.Issuer == nil {
		return nil, errors.New("token issuer is required")
	}
	renderer, err := views.New()
	if err != nil {
		return nil, err
	}
	docsHandler, err := docs.New()
	if err != nil {
		return nil, err
	}

	responder := handlers.NewResponder(renderer)
	authHandler := handlers.NewAuthHandler(cfg.Services.Users, cfg.Issuer, responder, cfg.CookieSecure)
	reservationHandler := handlers.NewReservationHandler(cfg.Services.Reservations, responder)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		handlers.MethodOverride,
		handlers.RequestLogger(cfg.Logger),
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
		handlers.FlashMiddleware,
	)

	router.Get("/healthz", handlers.Healthz)
	router.Handle("/static/*", http.StripPrefix("/static/", views.Static()))
	router.Route("/docs", func(r chi.Router) {
		docs.Router(r, docsHandler)
	})
	handlers.AuthRouter(router, authHandler)

	router.Group(func(r chi.Router) {
		r.Use(authHandler.RequireSession)

		r.Get("/dashboard", handlers.NewDashboardHandler(cfg.Services.Reservations, responder).Show)
		r.Route("/catways", func(r chi.Router) {
			handlers.CatwayRouter(r, handlers.NewCatwayHandler(cfg.Services.Catways, responder), reservationHandler)
		})
		r.Route("/reservations", func(r chi.Router) {
			handlers.ReservationRouter(r, reservationHandler)
		})
		r.Route("/users", func(r chi.Router) {
			handlers.UserRouter(r, handlers.NewUserHandler(cfg.Services.Users, responder))
		})
	})

	return router, nil
}

// New constructs a Server from configuration: persistence, optional event
// broker, token issuer and routes.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET is required: %w", err)
	}

	repos, err := OpenRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queue, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	var notifier events.Notifier = events.Nop{}
	if queue != nil {
		notifier = events.NewPublisher(queue, cfg.MQ.Channel)
	}

	svcs := NewServices(repos, auth.NewHasher(cfg.Auth.BcryptCost), notifier)
	if err := seedAdmin(logging.ContextWithLogger(ctx, logger), svcs.Users, cfg.Auth); err != nil {
		closeAll(repos, queue)
		return nil, err
	}

	router, err := NewRouter(RouterConfig{
		Services:     svcs,
		Issuer:       issuer,
		Logger:       logger,
		CookieSecure: cfg.Auth.CookieSecure,
	})
	if err != nil {
		closeAll(repos, queue)
		return nil, err
	}

	backups, err := startBackups(ctx, cfg, repos, logger)
	if err != nil {
		closeAll(repos, queue)
		return nil, err
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 3000
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		repos:      repos,
		queue:      queue,
		backups:    backups,
		logger:     logger,
	}, nil
}

// startBackups schedules snapshots to object storage when BACKUP_SCHEDULE is set.
func startBackups(ctx context.Context, cfg config.Config, repos *Repositories, logger *slog.Logger) (*backup.Scheduler, error) {
	if cfg.Backup.Schedule == "" {
		return nil, nil
	}
	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("backup storage: %w", err)
	}
	job := backup.NewJob(importer.New(repos.Catways, repos.Reservations), objects, cfg.Backup.Prefix)
	scheduler := backup.NewScheduler(job, logger)
	if err := scheduler.Start(cfg.Backup.Schedule); err != nil {
		return nil, err
	}
	return scheduler, nil
}

func seedAdmin(ctx context.Context, users *services.UserService, cfg config.AuthConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	created, err := users.EnsureUser(ctx, services.UserInput{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}
	if created {
		logging.FromContext(ctx).InfoContext(ctx, "admin account created", "email", cfg.AdminEmail)
	}
	return nil
}

func closeAll(repos *Repositories, queue *mq.MQ) {
	if queue != nil {
		_ = queue.Close()
	}
	_ = repos.Close()
}

// Router exposes the chi router for route registration.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and backups, then releases the broker
// and database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.backups != nil {
		s.backups.Stop(ctx)
	}
	closeAll(s.repos, s.queue)
	return err
}
