// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mediavault/adapters/auth"
	"mediavault/adapters/blob"
	"mediavault/adapters/cdn"
	"mediavault/adapters/clock"
	"mediavault/adapters/hasher"
	apihttp "mediavault/adapters/http"
	"mediavault/adapters/idgen"
	"mediavault/adapters/metrics"
	"mediavault/adapters/sqlite"
	"mediavault/app"
	"mediavault/config"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	Users     *app.UserService
	Assets    *app.AssetService
	Analytics *app.AnalyticsService
	Cleanup   *app.CleanupService

	configHolder     *config.Holder
	cancelBackground context.CancelFunc
}

// New creates and initializes the application from the given config file
// (environment variables fill in when the file is absent).
func New(configPath string) (*App, error) {
	cfg, err := config.LoadWithFallback(configPath)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

// NewWithHotReload creates the application with config hot reload: the
// config file is watched for changes and SIGHUP triggers a reload.
// Reloads swap the pricing schedule and cleanup retention in place;
// server, database and auth settings still require a restart.
func NewWithHotReload(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	a, err := NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}

	holder, err := config.NewHolder(configPath, a.Logger)
	if err != nil {
		a.DB.Close()
		return nil, err
	}
	holder.OnChange(a.applyReloadedConfig)
	holder.OnError(func(error) {
		if a.Metrics != nil {
			a.Metrics.ConfigReloadErrors.Inc()
		}
	})

	if err := holder.WatchFile(); err != nil {
		a.Logger.Error().Err(err).Msg("config file watch unavailable, SIGHUP reload only")
	}
	holder.WatchSignals()

	a.configHolder = holder
	return a, nil
}

func (a *App) applyReloadedConfig(cfg *config.Config) {
	a.Analytics.SetSchedule(cfg.PricingSchedule())
	a.Cleanup.SetRetention(cfg.Cleanup.Retention)

	if a.Metrics != nil {
		a.Metrics.ConfigReloads.Inc()
		a.Metrics.ConfigLastReload.SetToCurrentTime()
	}
	a.Logger.Info().Msg("runtime configuration applied")
}

// NewWithConfig creates and initializes the application.
func NewWithConfig(cfg *config.Config) (*App, error) {
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("initializing mediavault")

	a := &App{
		Logger: logger,
		Config: cfg,
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	a.DB = db
	logger.Info().Str("dsn", cfg.Database.DSN).Msg("database initialized")

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Msg("prometheus metrics enabled")
	}

	a.buildServices()
	a.buildHTTPServer()
	return a, nil
}

func (a *App) buildServices() {
	cfg := a.Config

	userStore := sqlite.NewUserStore(a.DB)
	assetStore := sqlite.NewAssetStore(a.DB)
	logStore := sqlite.NewAccessLogStore(a.DB)

	objects := blob.NewLocal(cfg.Storage.LocalRoot)
	invalidator := cdn.NewLogOnly(a.Logger)
	signer := cdn.NewHMACSigner(cfg.Storage.SignedURLKeyID, cfg.Storage.SignedURLSecret)

	realClock := clock.Real{}
	ids := idgen.UUID{}
	bcryptHasher := hasher.NewBcrypt(0)

	a.Users = app.NewUserService(userStore, bcryptHasher, realClock, ids, a.Logger)
	a.Assets = app.NewAssetService(assetStore, logStore, objects, invalidator, signer, realClock, ids, a.Logger)
	a.Analytics = app.NewAnalyticsService(assetStore, logStore, cfg.PricingSchedule(), a.Logger)
	a.Cleanup = app.NewCleanupService(assetStore, objects, realClock, cfg.Cleanup.Retention, a.Logger)
}

func (a *App) buildHTTPServer() {
	cfg := a.Config

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiration)
	handler := apihttp.NewHandler(apihttp.Deps{
		Users:     a.Users,
		Assets:    a.Assets,
		Analytics: a.Analytics,
		Tokens:    tokens,
		Metrics:   a.Metrics,
		Logger:    a.Logger,
	})

	router := handler.Router()
	if a.Metrics != nil {
		router.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	a.HTTPServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	a.Logger.Info().Str("addr", addr).Msg("http server configured")
}

// Run starts the HTTP server and background jobs and blocks until
// shutdown.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelBackground = cancel

	if a.Config.Cleanup.Enabled {
		go a.cleanupLoop(ctx)
		a.Logger.Info().
			Dur("interval", a.Config.Cleanup.Interval).
			Dur("retention", a.Config.Cleanup.Retention).
			Msg("cleanup scheduler started")
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

func (a *App) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(a.Config.Cleanup.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.RunCleanup(ctx); err != nil {
				a.Logger.Error().Err(err).Msg("scheduled cleanup failed")
			}
		}
	}
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.cancelBackground != nil {
		a.cancelBackground()
	}

	if a.configHolder != nil {
		a.configHolder.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// RunCleanup performs a single retention sweep and records its metrics.
func (a *App) RunCleanup(ctx context.Context) (app.CleanupReport, error) {
	report, err := a.Cleanup.Run(ctx)
	if a.Metrics != nil {
		a.Metrics.CleanupRuns.Inc()
		a.Metrics.CleanupDeleted.Add(float64(report.DeletedRecords))
		a.Metrics.CleanupFailures.Add(float64(report.Errors))
	}
	return report, err
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
