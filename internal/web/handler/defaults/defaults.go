// Package defaults fills the missing defaults of every tenant.
package defaults

import (
	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"

	"github.com/sparti-cms/sparti-settings/internal/reconcile"
	"github.com/sparti-cms/sparti-settings/internal/web/handler"
)

// Path is the batch endpoint below the api group.
const Path = "/ensure-defaults"

// Service is the defaults handler service.
type Service struct {
	handler.Service
	engine *reconcile.Engine
}

// Handler is the defaults handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the batch route.
func (s *Service) Init(router fiber.Router, db *gorm.DB, engine *reconcile.Engine) error {
	if router == nil || db == nil || engine == nil {
		return handler.ErrNilDeps
	}

	s.engine = engine

	router.Post(Path, s.Post)

	return nil
}

// Post runs EnsureAllTenantsHaveDefaults. Failed tenants are part of the
// 200 response; only an unreadable tenant directory answers 500.
func (s *Service) Post(c fiber.Ctx) error {
	batch, err := s.engine.EnsureAllTenantsHaveDefaults(c.Context())
	if err != nil {
		return handler.SendStoreError(c, err, "failed to fill defaults")
	}

	return c.JSON(batch)
}
