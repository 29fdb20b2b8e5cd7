// Package daemon wires config, database, engine and web service together.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/sparti-cms/sparti-settings/internal/config"
	database "github.com/sparti-cms/sparti-settings/internal/db"
	"github.com/sparti-cms/sparti-settings/internal/db/controller/setting"
	"github.com/sparti-cms/sparti-settings/internal/reconcile"
	"github.com/sparti-cms/sparti-settings/internal/settings"
	"github.com/sparti-cms/sparti-settings/internal/web"
)

// ErrConfigNil is returned when the daemon is created without a config.
var ErrConfigNil = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	engine     *reconcile.Engine
	webService *web.Service
}

// Bootstrap opens the database and builds the branding engine on top of it.
// CLI commands use it without starting the web service.
func Bootstrap(cfg *config.Config) (*gorm.DB, *reconcile.Engine, error) {
	if cfg == nil {
		return nil, nil, ErrConfigNil
	}

	db, err := database.Open(&cfg.DB)
	if err != nil {
		return nil, nil, err
	}

	engine, err := reconcile.New(
		setting.New(db),
		settings.Branding(),
		reconcile.WithConcurrency(cfg.Sync.Concurrency),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create engine: %w", err)
	}

	return db, engine, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	db, engine, err := Bootstrap(cfg)
	if err != nil {
		return nil, err
	}

	if err = seed(context.Background(), engine); err != nil {
		return nil, err
	}

	webService, err := web.New(cfg, db, engine)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:        cfg,
		db:         db,
		engine:     engine,
		webService: webService,
	}, nil
}

// Engine returns the branding engine of the daemon.
func (d *Daemon) Engine() *reconcile.Engine {
	return d.engine
}

// Start runs the web service until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)
	log.Info().Str("addr", addr).Msg("starting http server")

	return d.webService.Start(addr)
}

// seed fills the global defaults on a fresh database, so tenants have a
// source to sync from before anyone configured the global scope.
func seed(ctx context.Context, engine *reconcile.Engine) error {
	report, err := engine.MissingKeys(ctx, settings.Global())
	if err != nil {
		return fmt.Errorf("failed to read global settings: %w", err)
	}

	if report.ExistingCount > 0 {
		return nil
	}

	result, err := engine.EnsureDefaults(ctx, settings.Global())
	if err != nil {
		return fmt.Errorf("failed to seed global defaults: %w", err)
	}

	log.Info().Int("added", result.Added).Msg("seeded global branding defaults")

	return nil
}
