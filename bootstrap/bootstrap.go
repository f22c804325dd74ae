// Package bootstrap wires configuration, storage, services and the HTTP
// server into a runnable application.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/agendahof/accessgate/adapters/clock"
	"github.com/agendahof/accessgate/adapters/idgen"
	"github.com/agendahof/accessgate/adapters/metrics"
	"github.com/agendahof/accessgate/adapters/sqlite"
	"github.com/agendahof/accessgate/app"
	"github.com/agendahof/accessgate/config"
	"github.com/agendahof/accessgate/web"
	"github.com/rs/zerolog"
)

// App holds the wired application.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	DB       *sqlite.DB
	Access   *app.AccessService
	Webhooks *app.BillingWebhookService

	holder *config.Holder
	server *http.Server
}

// New builds the application from a config file path, with env fallback.
func New(cfgPath string) (*App, error) {
	cfg, err := config.LoadWithFallback(cfgPath)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

// NewWithHotReload builds the application and watches the config file.
func NewWithHotReload(cfgPath string) (*App, error) {
	logger := newLogger(nil)

	holder, err := config.NewHolder(cfgPath, logger)
	if err != nil {
		return nil, err
	}

	a, err := NewWithConfig(holder.Get())
	if err != nil {
		holder.Stop()
		return nil, err
	}
	a.holder = holder

	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config hot reload unavailable")
	}
	holder.WatchSignals()

	return a, nil
}

// NewWithConfig builds the application from an already-loaded config.
func NewWithConfig(cfg *config.Config) (*App, error) {
	logger := newLogger(cfg)

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	accounts := sqlite.NewAccountStore(db)
	subscriptions := sqlite.NewSubscriptionStore(db)
	receipts := sqlite.NewReceiptStore(db)

	var collector *metrics.Collector
	if !cfg.Metrics.Disabled {
		collector = metrics.New()
	}

	// Collector is passed through a nil-able interface; a typed nil would
	// defeat the service's nil checks.
	var accessMetrics app.AccessMetrics
	var webhookMetrics app.WebhookMetrics
	if collector != nil {
		accessMetrics = collector
		webhookMetrics = collector
	}

	realClock := clock.Real{}
	access := app.NewAccessService(accounts, subscriptions, receipts, realClock, accessMetrics, logger)
	webhooks := app.NewBillingWebhookService(subscriptions, idgen.UUID{}, realClock, webhookMetrics, logger)

	handler := web.NewHandler(access, webhooks, logger)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Access:   access,
		Webhooks: webhooks,
	}
	a.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.server.Addr).Msg("starting server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return a.Shutdown()
	}
}

// Shutdown stops the server and closes resources.
func (a *App) Shutdown() error {
	a.Logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var firstErr error
	if err := a.server.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if a.holder != nil {
		a.holder.Stop()
	}
	if err := a.DB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	format := "json"
	if cfg != nil {
		if l, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = l
		}
		format = cfg.Logging.Format
	}

	if format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger().Level(level)
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
}
