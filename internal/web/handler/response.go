package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/sparti-cms/sparti-settings/internal/settings"
)

// ErrNilDeps is returned by Init when a dependency is missing.
var ErrNilDeps = errors.New(ErrNilDepsMsg)

// ErrorResponse is the body of every failed api call.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

var validate = validator.New() //nolint:gochecknoglobals

// SendError writes an ErrorResponse with status.
func SendError(c fiber.Ctx, status int, message string, errs ...string) error {
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// SendStoreError logs err and answers 500.
func SendStoreError(c fiber.Ctx, err error, msg string) error {
	log.Error().Err(err).Str("path", c.Path()).Msg(msg)

	return SendError(c, fiber.StatusInternalServerError, msg, err.Error())
}

// Scope parses the :scope route parameter.
func Scope(c fiber.Ctx) (settings.Scope, error) {
	return settings.ParseScope(c.Params(ParamScope))
}

// BindAndValidate decodes the json body into out and runs its validate tags.
// On failure the 400 response is already written and ok is false.
func BindAndValidate(c fiber.Ctx, out any) (ok bool, err error) {
	if err = c.Bind().Body(out); err != nil {
		return false, SendError(c, fiber.StatusBadRequest, "invalid request body", err.Error())
	}

	if err = validate.Struct(out); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, SendError(c, fiber.StatusBadRequest, "invalid request body", err.Error())
		}

		messages := make([]string, len(validationErrors))
		for i, ve := range validationErrors {
			messages[i] = "field '" + strings.ToLower(ve.Field()[:1]) + ve.Field()[1:] +
				"' failed validation tag '" + ve.Tag() + "'"
		}

		return false, SendError(c, fiber.StatusBadRequest, "invalid request body", messages...)
	}

	return true, nil
}
