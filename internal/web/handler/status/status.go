// Package status serves the completeness report of all tenants.
package status

import (
	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"

	"github.com/sparti-cms/sparti-settings/internal/reconcile"
	"github.com/sparti-cms/sparti-settings/internal/web/handler"
)

// Path is the path of the status endpoint below the api group.
const Path = "/status"

// Service is the status handler service.
type Service struct {
	handler.Service
	engine *reconcile.Engine
}

// Handler is the status handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the status route.
func (s *Service) Init(router fiber.Router, db *gorm.DB, engine *reconcile.Engine) error {
	if router == nil || db == nil || engine == nil {
		return handler.ErrNilDeps
	}

	s.engine = engine

	router.Get(Path, s.Get)

	return nil
}

// Get answers the StatusSummary of all tenants.
func (s *Service) Get(c fiber.Ctx) error {
	summary, err := s.engine.GetAllTenantsSyncStatus(c.Context())
	if err != nil {
		return handler.SendStoreError(c, err, "failed to read tenant status")
	}

	return c.JSON(summary)
}
