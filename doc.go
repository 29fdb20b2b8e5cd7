// Package main is the entry point of sparti-settings, the tenant settings
// reconciliation service of a multi-tenant CMS. It keeps the branding settings
// of every tenant complete by filling schema defaults, propagates settings from
// a master tenant or the global scope, and serves the same operations as a
// JSON API next to the sync-branding and init-schemas commands.
package main
