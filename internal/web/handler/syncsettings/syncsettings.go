// Package syncsettings copies settings between scopes.
package syncsettings

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"

	"github.com/sparti-cms/sparti-settings/internal/reconcile"
	"github.com/sparti-cms/sparti-settings/internal/settings"
	"github.com/sparti-cms/sparti-settings/internal/web/handler"
)

const (
	// Path syncs one scope onto another.
	Path = "/sync"
	// AllPath syncs a master onto every tenant.
	AllPath = "/sync-all"
)

// Service is the sync handler service.
type Service struct {
	handler.Service
	engine *reconcile.Engine
}

// Handler is the sync handler.
var Handler = Service{} //nolint:gochecknoglobals

// PolicyRequest selects the sync policy either by name or by the legacy flag pair.
// A policy name wins over the flags; without both nothing is overwritten.
type PolicyRequest struct {
	Policy      string   `json:"policy" validate:"omitempty,oneof=fill-missing overwrite"`
	Overwrite   *bool    `json:"overwrite"`
	OnlyMissing *bool    `json:"onlyMissing"`
	ExcludeKeys []string `json:"excludeKeys" validate:"dive,required"`
}

// Request is the body of POST /sync.
type Request struct {
	PolicyRequest
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// AllRequest is the body of POST /sync-all.
type AllRequest struct {
	PolicyRequest
	Master string `json:"master" validate:"required"`
}

// Options converts the request into engine options.
func (r PolicyRequest) Options() (reconcile.SyncOptions, error) {
	opts := reconcile.SyncOptions{ExcludeKeys: r.ExcludeKeys}

	if r.Policy != "" {
		policy, err := reconcile.ParsePolicy(r.Policy)
		opts.Policy = policy

		return opts, err
	}

	overwrite, onlyMissing := false, true
	if r.Overwrite != nil {
		overwrite = *r.Overwrite
	}

	if r.OnlyMissing != nil {
		onlyMissing = *r.OnlyMissing
	}

	opts.Policy = reconcile.PolicyFromFlags(overwrite, onlyMissing)

	return opts, nil
}

// Init registers the sync routes.
func (s *Service) Init(router fiber.Router, db *gorm.DB, engine *reconcile.Engine) error {
	if router == nil || db == nil || engine == nil {
		return handler.ErrNilDeps
	}

	s.engine = engine

	router.Post(Path, s.Post)
	router.Post(AllPath, s.PostAll)

	return nil
}

// Post syncs source onto target and answers the SyncReport.
func (s *Service) Post(c fiber.Ctx) error {
	var req Request

	if ok, err := handler.BindAndValidate(c, &req); !ok {
		return err
	}

	source, err := settings.ParseScope(req.Source)
	if err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, "invalid source", err.Error())
	}

	target, err := settings.ParseScope(req.Target)
	if err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, "invalid target", err.Error())
	}

	opts, err := req.Options()
	if err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := s.engine.SyncSettings(c.Context(), source, target, opts)
	if err != nil {
		if errors.Is(err, reconcile.ErrSameScope) {
			return handler.SendError(c, fiber.StatusBadRequest, err.Error())
		}

		return handler.SendStoreError(c, err, "failed to sync settings")
	}

	return c.JSON(report)
}

// PostAll syncs a master onto every other tenant and answers the BatchResult.
func (s *Service) PostAll(c fiber.Ctx) error {
	var req AllRequest

	if ok, err := handler.BindAndValidate(c, &req); !ok {
		return err
	}

	master, err := settings.ParseScope(req.Master)
	if err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, "invalid master", err.Error())
	}

	opts, err := req.Options()
	if err != nil {
		return handler.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	batch, err := s.engine.SyncAllTenantsFromMaster(c.Context(), master, opts)
	if err != nil {
		return handler.SendStoreError(c, err, "failed to sync tenants")
	}

	return c.JSON(batch)
}
