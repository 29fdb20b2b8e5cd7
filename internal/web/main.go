// Package web serves the json api of the settings engine.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/sparti-cms/sparti-settings/internal/config"
	accesslog "github.com/sparti-cms/sparti-settings/internal/logger/adapter/fiber"
	"github.com/sparti-cms/sparti-settings/internal/reconcile"
	"github.com/sparti-cms/sparti-settings/internal/web/handler"
	"github.com/sparti-cms/sparti-settings/internal/web/handler/defaults"
	"github.com/sparti-cms/sparti-settings/internal/web/handler/schema"
	"github.com/sparti-cms/sparti-settings/internal/web/handler/scopes"
	"github.com/sparti-cms/sparti-settings/internal/web/handler/status"
	"github.com/sparti-cms/sparti-settings/internal/web/handler/syncsettings"
	"github.com/sparti-cms/sparti-settings/internal/web/middleware/auth"
)

const (
	// APIPath prefixes every api route.
	APIPath = "/api"
	// CheckAlivePath answers 200 while the service accepts traffic.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address and blocks until it stops.
func (s *Service) Start(addr string) error {
	if err := s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("fiber listen error: %w", err)
	}

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// CheckAlive answers 200 while the service is alive and 503 during shutdown.
func (s *Service) CheckAlive(c fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, engine *reconcile.Engine) (*Service, error) {
	if cfg == nil || db == nil || engine == nil {
		return nil, errors.New("config, db and engine are required") //nolint:err113
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recoverer.New())
	}

	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	service := &Service{
		cfg: cfg,
		App: app,
	}
	service.alive.Store(true)

	app.Get(CheckAlivePath, service.CheckAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group(APIPath, auth.New(cfg.Webserver.APITokenHash))

	// init handlers (they register their own routes)
	handlers := []handler.Service{
		&status.Handler,
		&scopes.Handler,
		&defaults.Handler,
		&syncsettings.Handler,
		&schema.Handler,
	}

	for _, h := range handlers {
		if err := h.Init(api, db, engine); err != nil {
			return nil, err
		}
	}

	return service, nil
}
