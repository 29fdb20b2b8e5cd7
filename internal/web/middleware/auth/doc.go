// Package auth provides the bearer token middleware of the api.
//
// The token itself is never stored. The configuration holds its argon2id
// hash (see the "token generate" command) and every request presents the
// plain token in the Authorization header:
//
//	Authorization: Bearer <token>
//
// An empty hash disables the check, which is meant for local development.
//
// Usage:
//
//	api := app.Group("/api", auth.New(cfg.Webserver.APITokenHash))
package auth
