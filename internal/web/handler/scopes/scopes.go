// Package scopes serves the settings of a single tenant or of the global scope.
package scopes

import (
	"errors"
	"slices"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/sparti-cms/sparti-settings/internal/db/controller/schemadoc"
	"github.com/sparti-cms/sparti-settings/internal/db/controller/setting"
	"github.com/sparti-cms/sparti-settings/internal/reconcile"
	"github.com/sparti-cms/sparti-settings/internal/settings"
	"github.com/sparti-cms/sparti-settings/internal/web/handler"
)

// Path is the scope route below the api group.
const Path = "/scopes/:" + handler.ParamScope

// Service is the scope handler service.
type Service struct {
	handler.Service
	db     *gorm.DB
	engine *reconcile.Engine
	store  *setting.Store
}

// Handler is the scope handler.
var Handler = Service{} //nolint:gochecknoglobals

// WriteResponse lists the keys a PUT wrote.
type WriteResponse struct {
	Scope   string   `json:"scope"`
	Written []string `json:"written"`
}

// Init registers the scope routes.
func (s *Service) Init(router fiber.Router, db *gorm.DB, engine *reconcile.Engine) error {
	if router == nil || db == nil || engine == nil {
		return handler.ErrNilDeps
	}

	s.db = db
	s.engine = engine
	s.store = setting.New(db)

	scope := router.Group(Path)
	scope.Get("/missing", s.Missing)
	scope.Get("/settings", s.Get)
	scope.Put("/settings", s.Put)
	scope.Post("/ensure-defaults", s.EnsureDefaults)
	scope.Get("/schema", s.Schema)

	return nil
}

// Missing answers the GapReport of the scope.
func (s *Service) Missing(c fiber.Ctx) error {
	scope, err := handler.Scope(c)
	if err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := s.engine.MissingKeys(c.Context(), scope)
	if err != nil {
		return handler.SendStoreError(c, err, "failed to detect missing keys")
	}

	return c.JSON(report)
}

// Get answers the stored settings of the scope.
func (s *Service) Get(c fiber.Ctx) error {
	scope, err := handler.Scope(c)
	if err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entries, err := s.engine.Settings(c.Context(), scope)
	if err != nil {
		return handler.SendStoreError(c, err, "failed to read settings")
	}

	return c.JSON(entries)
}

// Put validates a partial settings object against the schema and writes it.
// Nothing is written when a single key is invalid.
func (s *Service) Put(c fiber.Ctx) error {
	scope, err := handler.Scope(c)
	if err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var raw map[string]any
	if err = c.Bind().Body(&raw); err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, "invalid request body", err.Error())
	}

	schema := s.engine.Schema()

	values, result := settings.ValidateRaw(raw, schema)
	if !result.Valid {
		return handler.SendError(c, fiber.StatusBadRequest, "settings failed validation", result.Errors...)
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		if err = s.store.Set(c.Context(), scope, key, values[key], schema.Category); err != nil {
			return handler.SendStoreError(c, err, "failed to write settings")
		}
	}

	log.Info().Str("scope", scope.String()).Strs("keys", keys).Msg("settings written")

	return c.JSON(WriteResponse{Scope: scope.String(), Written: keys})
}

// EnsureDefaults fills the missing keys of the scope with schema defaults.
func (s *Service) EnsureDefaults(c fiber.Ctx) error {
	scope, err := handler.Scope(c)
	if err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := s.engine.EnsureDefaults(c.Context(), scope)
	if err != nil {
		return handler.SendStoreError(c, err, "failed to fill defaults")
	}

	return c.JSON(result)
}

// Schema answers the schema document stored for the scope by init-schemas.
// The language query parameter selects the translation, default otherwise.
func (s *Service) Schema(c fiber.Ctx) error {
	scope, err := handler.Scope(c)
	if err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	language := c.Query("language", schemadoc.DefaultLanguage)

	schema, err := schemadoc.Load(c.Context(), s.db, scope, s.engine.Schema().Key, language)
	switch {
	case errors.Is(err, schemadoc.ErrDocumentNotFound):
		return handler.SendError(c, fiber.StatusNotFound, err.Error())
	case err != nil:
		return handler.SendStoreError(c, err, "failed to load schema document")
	}

	doc, err := settings.EncodeDocument(schema)
	if err != nil {
		return handler.SendError(c, fiber.StatusInternalServerError, "failed to encode schema", err.Error())
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)

	return c.Send(doc)
}
