// Package config loads the vali.yaml configuration of the CLI.
//
// The raw document is validated and defaulted by a vali scheme before it is
// decoded into Config, so a typo in a key or an out-of-range port is
// reported with the same messages users get for their own data.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/vali"
	"github.com/aretw0/vali/internal/logging"
	"github.com/aretw0/vali/pkg/dsl"
	"github.com/aretw0/vali/pkg/schema"
	"github.com/aretw0/vali/pkg/validator"
)

const (
	// EnvVar names the environment variable holding the config file path.
	EnvVar = "VALI_CONFIG"
	// DefaultFile is read from the working directory when present.
	DefaultFile = "vali.yaml"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the typed configuration.
type Config struct {
	LogLevel string `json:"log_level"`
	Strict   bool   `json:"strict"`
	MaxDepth int    `json:"max_depth"`
	Store    Store  `json:"store"`
	Serve    Serve  `json:"serve"`
}

// Store selects where named schemes live.
type Store struct {
	Backend string `json:"backend"`
	Dir     string `json:"dir"`
	Redis   Redis  `json:"redis"`
}

// Redis configures the redis backend.
type Redis struct {
	Addr     string        `json:"addr"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	Prefix   string        `json:"prefix"`
	TTL      time.Duration `json:"ttl"`
}

// Serve configures the HTTP server.
type Serve struct {
	Port    int  `json:"port"`
	Metrics bool `json:"metrics"`
}

var (
	redisFields = dsl.Fields(
		dsl.F("addr", dsl.String().NotEmpty().Default("localhost:6379")),
		dsl.F("password", dsl.String().Default("")),
		dsl.F("db", dsl.Number().Cast().Between(0, 15).Default(0)),
		dsl.F("prefix", dsl.String().NotEmpty().Default("vali:scheme:")),
		dsl.F("ttl", dsl.String().Default("0s").Verify(verifyDuration)),
	)
	storeFields = dsl.Fields(
		dsl.F("backend", dsl.String().Enum(BackendMemory, BackendFile, BackendRedis).Default(BackendFile)),
		dsl.F("dir", dsl.String().NotEmpty().Default(".vali/schemes")),
		dsl.F("redis", section(redisFields)),
	)
	serveFields = dsl.Fields(
		dsl.F("port", dsl.Number().Cast().Between(1, 65535).Default(8080)),
		dsl.F("metrics", dsl.Boolean().Cast().Default(true)),
	)
	configScheme = dsl.Fields(
		dsl.F("log_level", dsl.String().Enum("debug", "info", "warn", "error").Default("info")),
		dsl.F("strict", dsl.Boolean().Cast().Default(false)),
		dsl.F("max_depth", dsl.Number().Cast().Min(1).Default(validator.DefaultMaxDepth)),
		dsl.F("store", section(storeFields)),
		dsl.F("serve", section(serveFields)),
	).MustBuild()
)

// section declares a nested object whose absence yields the defaults of
// its own fields.
func section(b *dsl.Builder) *dsl.EntryBuilder {
	s := b.MustBuild()
	return dsl.Object(b).DefaultFunc(func(any) any {
		res, err := validator.Validate(map[string]any{}, validator.WithScheme(s))
		if err != nil || !res.OK() {
			return map[string]any{}
		}
		return res.Data
	})
}

func verifyDuration(value, parent any, key string) error {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("Parameter %q is not a valid duration.", key)
	}
	return nil
}

// Scheme returns the scheme configuration documents are validated with.
func Scheme() *schema.Scheme { return configScheme }

// Load reads the configuration from path, or from $VALI_CONFIG, or from
// ./vali.yaml. When none is given and vali.yaml does not exist, the
// defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Parse(nil)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates and decodes a YAML configuration document. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	var cfg Config
	if err := vali.Decode(raw, configScheme, &cfg, validator.Strict(), validator.WithErrorPrefix("invalid config: ")); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Level returns the parsed log level.
func (c *Config) Level() slog.Level {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}
