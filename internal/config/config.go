// Package config loads the settings shared by the jsonval command and its
// services from a YAML or JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/aretw0/jsonval"
	"github.com/aretw0/jsonval/internal/cache"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the decoded configuration file.
type Config struct {
	// LogLevel is the level of the process logger, not of validation reports.
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	CacheSize  int                 `mapstructure:"cache_size"`
	SchemaDir  string              `mapstructure:"schema_dir"`
	Validation jsonval.CallOptions `mapstructure:"validation"`

	Redis RedisConfig `mapstructure:"redis"`
	HTTP  HTTPConfig  `mapstructure:"http"`
}

// RedisConfig enables the shared schema registry when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// HTTPConfig configures the validation service.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:   "info",
		LogFormat:  "text",
		CacheSize:  cache.DefaultSize,
		Validation: jsonval.DefaultCallOptions(),
		HTTP:       HTTPConfig{Addr: ":8080"},
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error when path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := Decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Decode maps a generic document onto out, leaving fields that raw does not
// mention untouched. Levels are decoded from their names and durations from
// strings like "5m".
func Decode(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
			numberHook,
		),
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// CallOptions overlays raw onto base.
func CallOptions(raw map[string]any, base jsonval.CallOptions) (jsonval.CallOptions, error) {
	opts := base
	if len(raw) == 0 {
		return opts, nil
	}
	if err := Decode(raw, &opts); err != nil {
		return base, err
	}
	return opts, nil
}

// numberHook turns json.Number into an int or float so payloads decoded
// with UseNumber map onto numeric fields.
func numberHook(from, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return n.Int64()
	case reflect.Float32, reflect.Float64:
		return n.Float64()
	}
	return data, nil
}
