package handler

import (
	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"

	"github.com/sparti-cms/sparti-settings/internal/reconcile"
)

// Service is the interface for a web handler service.
// Handlers register their own routes on the api router.
type Service interface {
	Init(router fiber.Router, db *gorm.DB, engine *reconcile.Engine) error
}
