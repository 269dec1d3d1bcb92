package app

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

	httpapi "github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/http"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/metrics"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/service"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/store"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/store/drivers/redis"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/store/drivers/sqlite"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/cryptox"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/slogx"
	goredis "github.com/redis/go-redis/v9"
)

// BuildVersion is overridden at build time with -ldflags "-X ...app.BuildVersion=...".
var BuildVersion = "v0.1.0"

// Application owns the auth service and everything it depends on.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db         store.Store
	redis      *redis.ChallengeStore // nil unless MFA_STORE=redis
	challenges store.MFAChallenges
	keys       *jwtx.KeyRing
	metrics    *metrics.Metrics

	tokenService        *service.TokenService
	accountService      *service.AccountService
	mfaService          *service.MFAService
	loginService        *service.LoginService
	partnerService      *service.PartnerService
	analyticsService    *service.AnalyticsService
	guard               *service.Guard
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New validates cfg and builds the application. Nothing listens until Run.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initChallengeStore(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	keys, err := InitAuthKeys(cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, err
	}
	app.keys = keys

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"mfa_store", app.cfg.MFAStore,
	)
	if app.cfg.MFAEchoCode {
		app.logger.Warn("MFA codes are echoed in login responses", "env", app.cfg.Env)
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeStores()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "err", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "err", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeStores() error {
	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "err", err)
			errs = append(errs, err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase opens the account database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initChallengeStore picks where pending MFA challenges live. SQLite keeps
// them next to the accounts; Redis lets several replicas share them.
func (app *Application) initChallengeStore() error {
	if app.cfg.MFAStore != MFAStoreRedis {
		app.challenges = app.db.MFAChallenges()
		return nil
	}

	rs := redis.NewChallengeStore(goredis.NewClient(redis.Options(
		app.cfg.RedisAddr,
		app.cfg.RedisPassword,
		app.cfg.RedisDB,
	)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rs.Ping(ctx); err != nil {
		_ = rs.Close()
		return fmt.Errorf("failed to reach redis at %s: %w", app.cfg.RedisAddr, err)
	}

	app.redis = rs
	app.challenges = rs
	app.logger.Info("MFA challenges stored in redis", "addr", app.cfg.RedisAddr, "db", app.cfg.RedisDB)
	return nil
}

func (app *Application) initServices() {
	app.tokenService = service.NewTokenService(app.keys, app.cfg.Issuer, app.cfg.TokenTTL, time.Now)

	app.accountService = &service.AccountService{
		Store:            app.db,
		AllowOwnerSignup: app.cfg.AllowOwnerSignup,
		Observer:         app.metrics,
	}
	app.mfaService = &service.MFAService{
		Accounts:    app.db.Accounts(),
		Challenges:  app.challenges,
		Tokens:      app.tokenService,
		CodeTTL:     app.cfg.MFACodeTTL,
		MaxAttempts: app.cfg.MFAMaxAttempts,
		Observer:    app.metrics,
	}
	app.loginService = &service.LoginService{
		Accounts: app.accountService,
		MFA:      app.mfaService,
		Tokens:   app.tokenService,
		Observer: app.metrics,
	}
	app.partnerService = &service.PartnerService{Store: app.db}
	app.analyticsService = &service.AnalyticsService{Store: app.db}
	app.guard = &service.Guard{Tokens: app.tokenService, Observer: app.metrics}

	app.housekeepingService = service.NewHousekeepingService(
		app.challenges,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.keys, BuildVersion, app.db, app.metrics, app.logger)

	if app.redis != nil {
		router.Checks["redis"] = app.redis.Ping
	}
	router.EchoMFACodes = app.cfg.MFAEchoCode
	router.LoginService = app.loginService
	router.AccountService = app.accountService
	router.PartnerService = app.partnerService
	router.AnalyticsService = app.analyticsService
	router.Guard = app.guard
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
