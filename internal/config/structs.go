package config

import (
	"github.com/sparti-cms/sparti-settings/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Sync      Sync
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
	APITokenHash   string // argon2id hash of the api bearer token, empty disables the check
}

// Sync holds the reconciliation settings.
type Sync struct {
	Concurrency int      // tenants processed at once by batch runs, 1 is sequential
	Languages   []string // languages init-schemas writes schema documents for
	ExcludeKeys []string // keys never copied by sync-all
}
