package auth

import (
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/sparti-cms/sparti-settings/internal/web/handler"
)

const bearerPrefix = "bearer "

// New returns a middleware accepting only requests carrying the token hashed as tokenHash.
func New(tokenHash string) fiber.Handler {
	if tokenHash == "" {
		log.Warn().Msg("api token hash is empty: api authentication disabled")

		return func(c fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c fiber.Ctx) error {
		token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return handler.SendError(c, fiber.StatusUnauthorized, "missing bearer token")
		}

		match, err := argon2id.ComparePasswordAndHash(token, tokenHash)
		if err != nil {
			log.Error().Err(err).Msg("api token hash can not be compared")
			return handler.SendError(c, fiber.StatusInternalServerError, "api token check failed")
		}

		if !match {
			log.Warn().Str("IP", c.IP()).Msg("invalid api token")
			return handler.SendError(c, fiber.StatusUnauthorized, "invalid bearer token")
		}

		return c.Next()
	}
}

// BearerToken extracts the token of an Authorization header value.
func BearerToken(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])

	return token, token != ""
}
