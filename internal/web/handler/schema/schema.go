// Package schema serves the settings schema and validates candidate settings.
package schema

import (
	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"

	"github.com/sparti-cms/sparti-settings/internal/reconcile"
	"github.com/sparti-cms/sparti-settings/internal/settings"
	"github.com/sparti-cms/sparti-settings/internal/web/handler"
)

const (
	// Path serves the schema document.
	Path = "/schema"
	// ValidatePath validates a settings object.
	ValidatePath = "/validate"
)

// Service is the schema handler service.
type Service struct {
	handler.Service
	schema *settings.Schema
}

// Handler is the schema handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the schema routes.
func (s *Service) Init(router fiber.Router, db *gorm.DB, engine *reconcile.Engine) error {
	if router == nil || db == nil || engine == nil {
		return handler.ErrNilDeps
	}

	s.schema = engine.Schema()

	router.Get(Path, s.Get)
	router.Post(ValidatePath, s.Validate)

	return nil
}

// Get answers the schema as JSON document.
func (s *Service) Get(c fiber.Ctx) error {
	doc, err := settings.EncodeDocument(s.schema)
	if err != nil {
		return handler.SendError(c, fiber.StatusInternalServerError, "failed to encode schema", err.Error())
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)

	return c.Send(doc)
}

// Validate checks a partial settings object and answers the Result.
// Invalid settings are not an error of the call: the answer is 200 with valid=false.
func (s *Service) Validate(c fiber.Ctx) error {
	var raw map[string]any
	if err := c.Bind().Body(&raw); err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, "invalid request body", err.Error())
	}

	_, result := settings.ValidateRaw(raw, s.schema)

	return c.JSON(result)
}
