// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"

	"github.com/sparti-cms/sparti-settings/internal/config"
)

// MySQL builds the go-sql-driver Data Source Name from the configuration.
func MySQL(cfg *config.DB) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	if cfg.Extras != "" {
		out += "?" + cfg.Extras
	}

	return out
}

// Postgres builds a postgres connection URL from the configuration.
func Postgres(cfg *config.DB) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Name,
	}

	q, _ := url.ParseQuery(cfg.Extras)
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}

	u.RawQuery = q.Encode()

	return u.String()
}
