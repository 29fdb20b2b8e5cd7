// Package config handles input from etc/*.toml files, SPARTI_* environment
// variables and a JSON override.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable read by the config.
	EnvPrefix = "SPARTI"

	// JSONOverrideEnv holds a JSON document merged over the file config.
	JSONOverrideEnv = "SPARTI_SETTINGS_CONFIG_JSON"

	defaultPath = "./etc/"
	fileName    = "main.toml"
)

// ReadConfig from <path>/main.toml, environment and the JSON override.
func ReadConfig(path string) (Config, error) {
	var c Config

	if path == "" {
		path = defaultPath
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(filepath.Join(path, fileName))
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	if JSONConfigEnv := os.Getenv(JSONOverrideEnv); JSONConfigEnv != "" {
		v.SetConfigType("json")

		if err := v.MergeConfig(strings.NewReader(JSONConfigEnv)); err != nil {
			return Config{}, errors.Wrap(err, "failed to merge json config override")
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	return c, validate(&c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "sparti-settings")
	v.SetDefault("db.gormengine", EngineSQLite)
	v.SetDefault("db.path", "./sparti-settings.db")
	v.SetDefault("db.automigrate", true)
	v.SetDefault("webserver.port", 8080)
	v.SetDefault("webserver.shutdowntime", 5)
	v.SetDefault("webserver.apitokenhash", "")
	v.SetDefault("sync.concurrency", 1)
	v.SetDefault("sync.languages", []string{"default"})
	v.SetDefault("sync.excludekeys", []string{})
	v.SetDefault("log.loglevel", "info")
	v.SetDefault("log.appname", "sparti-settings")
	v.SetDefault("log.servicename", "sparti-settings")
	v.SetDefault("log.console.enabled", true)
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer

	if err := toml.NewEncoder(&buffer).Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings the service can not start without.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case EngineSQLite:
		if c.DB.Path == "" {
			return errors.Wrap(ErrEmptyDBPath, invalidErrMessage)
		}
	case EngineMySQL, EnginePostgres:
		if c.DB.Host == "" {
			return errors.Wrap(ErrEmptyDBHost, invalidErrMessage)
		}
	default:
		return errors.Wrapf(ErrUnsupportedGormEngine, "%s: %q", invalidErrMessage, c.DB.GormEngine)
	}

	if c.Sync.Concurrency < 0 {
		return errors.Wrap(ErrNegativeConcurrency, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	if c.Sync.Concurrency == 0 {
		c.Sync.Concurrency = 1
	}

	if len(c.Sync.Languages) == 0 {
		c.Sync.Languages = []string{"default"}
	}

	return nil
}
