package config

import (
	"errors"
)

var (
	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnsupportedGormEngine error if config db.gormengine is unknown.
	ErrUnsupportedGormEngine = errors.New("toml config db.gormengine must be sqlite, mysql or postgres")

	// ErrEmptyDBPath error if sqlite is used without db.path.
	ErrEmptyDBPath = errors.New("toml config db.path can not be empty for sqlite")

	// ErrEmptyDBHost error if mysql or postgres is used without db.host.
	ErrEmptyDBHost = errors.New("toml config db.host can not be empty")

	// ErrNegativeConcurrency error if config sync.concurrency is below zero.
	ErrNegativeConcurrency = errors.New("toml config sync.concurrency can not be negative")
)
