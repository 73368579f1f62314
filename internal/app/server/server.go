package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"folha/internal/domain/auth"
	"folha/internal/domain/payroll"
	"folha/internal/domain/payslip"
	"folha/internal/platform/cache"
	"folha/internal/platform/config"
	"folha/internal/platform/crypto"
	"folha/internal/platform/db"
	"folha/internal/platform/jobs"
	"folha/internal/platform/metrics"
	authhandler "folha/internal/transport/http/handlers/auth"
	payrollhandler "folha/internal/transport/http/handlers/payroll"
	"folha/internal/transport/http/api"
	"folha/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Logger  *zap.Logger
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Router  http.Handler

	closers []func()
}

// Deps are the collaborators the router is built from.
type Deps struct {
	Config  config.Config
	Logger  *zap.Logger
	Payroll *payroll.Service
	Auth    *auth.Service
	Jobs    *jobs.Service
	Archive jobs.RunFunc
	Metrics *metrics.Collector
	Ready   func(context.Context) error
}

// New wires storage, services and the router. Without DATABASE_URL the app
// serves the built-in demo data from memory.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}

	store, users, err := app.openStores(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	policy, err := payroll.ParseNegativePolicy(string(cfg.NegativePolicy))
	if err != nil {
		app.Close()
		return nil, err
	}
	opts := []payroll.ServiceOption{
		payroll.WithWorkers(cfg.PayslipBatchWorkers),
		payroll.WithLogger(logger.Named("payroll")),
	}
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		opts = append(opts, payroll.WithCache(cache.New(rdb, cfg.PayslipCacheTTL, logger.Named("cache"))))
	}
	renderer := payslip.NewRenderer()
	renderer.Author = "folha"
	renderer.Logger = logger.Named("payslip")
	payrollService := payroll.NewService(store, payroll.NewCalculator(policy), renderer, opts...)
	payrollService.OnRender = app.Metrics.RecordRender

	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		app.Close()
		return nil, err
	}
	archive := payslip.NewArchive(cfg.PayslipDir, sealer)
	archiveJob := jobs.PayslipArchive(payrollService, archive, time.Now)

	app.Jobs = jobs.New(app.DB, logger.Named("jobs"))
	if cfg.ArchiveSchedule != "" {
		if err := app.Jobs.Schedule(cfg.ArchiveSchedule, jobs.JobPayslipArchive, archiveJob); err != nil {
			app.Close()
			return nil, fmt.Errorf("ARCHIVE_SCHEDULE: %w", err)
		}
	}

	app.Router = NewRouter(Deps{
		Config:  cfg,
		Logger:  logger,
		Payroll: payrollService,
		Auth:    auth.NewService(users, cfg.JWTSecret, cfg.TokenTTL),
		Jobs:    app.Jobs,
		Archive: archiveJob,
		Metrics: app.Metrics,
		Ready:   app.ready,
	})
	return app, nil
}

func (a *App) openStores(ctx context.Context) (payroll.Store, auth.UserStore, error) {
	cfg := a.Config
	if cfg.InMemory() {
		demo := db.Demo()
		users, err := demo.HashedUsers(db.SeedPassword(cfg))
		if err != nil {
			return nil, nil, err
		}
		a.Logger.Warn("DATABASE_URL not set, serving demo data from memory")
		return payroll.NewMemoryStore(&demo.Company, demo.Employees, demo.Advances), auth.NewMemoryStore(users...), nil
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("db connect: %w", err)
	}
	a.DB = pool
	a.closers = append(a.closers, pool.Close)

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir, a.Logger); err != nil {
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg, a.Logger); err != nil {
			return nil, nil, fmt.Errorf("seed: %w", err)
		}
	}
	return payroll.NewPGStore(pool), auth.NewStore(pool), nil
}

func (a *App) ready(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Ping(ctx)
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(deps.Logger, deps.Metrics))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Production()))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if deps.Ready != nil {
			if err := deps.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && deps.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(deps.Auth, deps.Logger.Named("auth"))
		r.With(middleware.RateLimit(cfg.LoginRateLimit, time.Minute, deps.Logger)).Post("/auth/login", authHandler.HandleLogin)

		payrollHandler := payrollhandler.NewHandler(deps.Payroll, deps.Jobs, deps.Archive, deps.Logger.Named("http"))
		payrollHandler.RegisterRoutes(r)
	})

	return router
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("folha server listening", zap.String("addr", a.Config.Addr), zap.String("env", a.Config.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	a.Logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
