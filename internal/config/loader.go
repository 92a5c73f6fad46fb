package config

import (
	"bytes"
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"
)

// Environment variables that override the file-borne credentials
const (
	EnvUsername = "MLOL_USERNAME"
	EnvPassword = "MLOL_PASSWORD"
)

// keyDelimiter replaces viper's default "." so that the dotted key names of
// the config format stay literal instead of becoming nested paths.
const keyDelimiter = "::"

// Loader reads, schema-checks and validates a configuration file
type Loader struct {
	path         string
	schemaLoader gojsonschema.JSONLoader
}

// NewLoader creates a loader for the given config file
func NewLoader(path string) *Loader {
	return &Loader{
		path:         path,
		schemaLoader: gojsonschema.NewStringLoader(configSchema),
	}
}

// Load reads the file, checks it against the schema, decodes it over the
// defaults, applies environment overrides and validates the result
func (l *Loader) Load() (*Config, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, configErr(l.path, "cannot read file: %v", err)
	}

	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return nil, configErr(l.path, "malformed JSON: %v", err)
	}

	if err := l.checkSchema(raw); err != nil {
		return nil, err
	}

	v.BindEnv("user.name", EnvUsername)
	v.BindEnv("user.password", EnvPassword)

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, configErr(l.path, "cannot decode: %v", err)
	}

	cfg.URL = strings.TrimRight(cfg.URL, "/")

	if err := cfg.Validate(); err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Path = l.path
		}
		return nil, err
	}

	return cfg, nil
}

// checkSchema validates the raw file against the JSON schema
func (l *Loader) checkSchema(raw []byte) error {
	result, err := gojsonschema.Validate(l.schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return configErr(l.path, "schema check failed: %v", err)
	}

	if !result.Valid() {
		var errMsg string
		for i, verr := range result.Errors() {
			if i > 0 {
				errMsg += "; "
			}
			errMsg += verr.String()
		}
		return configErr(l.path, "%s", errMsg)
	}

	return nil
}

// Load is a convenience function that creates a loader and loads the config
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}
