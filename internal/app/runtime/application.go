// Package runtime wires configuration, storage, services and the HTTP server
// into a runnable application.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	app "github.com/zerium/propertyd/internal/app"
	"github.com/zerium/propertyd/internal/app/httpapi"
	"github.com/zerium/propertyd/internal/app/metrics"
	"github.com/zerium/propertyd/internal/app/storage/postgres"
	"github.com/zerium/propertyd/internal/config"
	"github.com/zerium/propertyd/internal/middleware"
	"github.com/zerium/propertyd/internal/platform/migrations"
	"github.com/zerium/propertyd/pkg/logger"
)

// Application manages the HTTP server lifecycle around the wired services.
type Application struct {
	cfg        *config.Config
	log        *logger.Logger
	core       *app.Application
	httpServer *http.Server
	db         *sql.DB
	stopCh     chan struct{}
}

// NewApplication constructs an application from configuration. Without a
// database DSN the in-memory store backs everything, which is intended for
// local development only.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	})

	var (
		stores app.Stores
		db     *sql.DB
	)
	if cfg.Database.DSN != "" {
		db, err = openDatabase(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := migrations.Apply(migrateCtx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}

		store := postgres.New(db)
		stores = app.Stores{
			Users:      store,
			Properties: store,
			Contracts:  store,
			Payments:   store,
			Tickets:    store,
			Documents:  store,
		}
	} else {
		log.Warn("no database configured; using in-memory store")
	}

	core, err := app.New(stores, app.AuthConfig{
		Secret:   cfg.Auth.Secret,
		TokenTTL: time.Duration(cfg.Auth.TokenTTLHours) * time.Hour,
		ResetURL: cfg.Auth.ResetURL,
	}, log)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("build application: %w", err)
	}
	core.DB = db

	var sink httpapi.AuditSink
	switch {
	case cfg.Audit.Postgres && db != nil:
		sink = httpapi.NewPostgresAuditSink(db)
	case cfg.Audit.FilePath != "":
		fileSink, err := httpapi.NewFileAuditSink(cfg.Audit.FilePath)
		if err != nil {
			log.WithError(err).Warn("open audit file sink")
		} else {
			sink = fileSink
		}
	}

	apiHandler := httpapi.NewHandlerWithOptions(core, httpapi.Options{
		AuditMax:  cfg.Audit.Max,
		AuditSink: sink,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", apiHandler)

	stopCh := make(chan struct{})
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
	limiter.StartCleanup(10*time.Minute, stopCh)
	cors := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)

	handler := metrics.InstrumentHandler(cors.Handler(limiter.Handler(mux)))

	return &Application{
		cfg:  cfg,
		log:  log,
		core: core,
		db:   db,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		stopCh: stopCh,
	}, nil
}

// Run starts the services and the HTTP server, blocking until the context is
// cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.core.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the server, the services and the database.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	close(a.stopCh)

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := a.core.Stop(shutdownCtx); err != nil {
		a.log.WithError(err).Warn("error stopping services")
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return nil
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.Driver == "" {
		return nil, fmt.Errorf("database driver not configured")
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
