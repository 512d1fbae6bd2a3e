// Package config loads server settings from a TOML file with one table per
// environment, then applies environment variable overrides.
//
// FILE LAYOUT:
//
//	[development]
//	port = 3003
//	db_driver = "sqlite"
//	...
//
//	[test]
//	db_path = ":memory:"
//
// The -env flag picks the table. A missing file is not an error: Load falls
// back to Defaults so `go run ./cmd/server` works on a fresh checkout.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// devSecret is only ever used outside production, when JWT_SECRET is unset.
const devSecret = "bloglist-dev-secret-change-me"

type Config struct {
	Environment string `toml:"-"`

	Port int `toml:"port"`

	// storage
	DBDriver    string `toml:"db_driver"`
	DBPath      string `toml:"db_path"`
	DatabaseURL string `toml:"database_url"`

	// auth
	JWTSecret string   `toml:"jwt_secret"`
	TokenTTL  Duration `toml:"token_ttl"`

	// logging
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
	LogFile     string `toml:"log_file"`
	LogToStdout bool   `toml:"log_to_stdout"`

	MetricsEnabled bool `toml:"metrics_enabled"`
	CacheSizeMB    int  `toml:"cache_size_mb"`

	TemplateDir string `toml:"template_dir"`
	StaticDir   string `toml:"static_dir"`
}

// Duration lets TOML values like "1h" or "30m" decode into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Toml mirrors the file: one optional table per environment.
type Toml struct {
	Development *Config
	Production  *Config
	Test        *Config
}

// Get returns the table for env, accepting the short forms dev/prod.
func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", EnvDevelopment:
		return t.Development, nil
	case "prod", EnvProduction:
		return t.Production, nil
	case EnvTest:
		return t.Test, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// NormalizeEnv maps dev/prod aliases to their canonical names.
func NormalizeEnv(env string) (string, error) {
	switch strings.ToLower(env) {
	case "dev", EnvDevelopment:
		return EnvDevelopment, nil
	case "prod", EnvProduction:
		return EnvProduction, nil
	case EnvTest:
		return EnvTest, nil
	default:
		return "", fmt.Errorf("config: unknown env: %s", env)
	}
}

// Defaults returns the built-in settings for env.
func Defaults(env string) *Config {
	cfg := &Config{
		Environment:    env,
		Port:           3003,
		DBDriver:       DriverSQLite,
		DBPath:         "data/bloglist.db",
		LogLevel:       "debug",
		LogFormat:      "text",
		LogToStdout:    true,
		MetricsEnabled: true,
		CacheSizeMB:    8,
		TemplateDir:    "web/templates",
		StaticDir:      "web/static",
	}

	switch env {
	case EnvTest:
		cfg.DBPath = ":memory:"
		cfg.LogLevel = "warn"
		cfg.MetricsEnabled = false
	case EnvProduction:
		cfg.LogLevel = "info"
		cfg.LogFormat = "json"
	}
	return cfg
}

// Load reads the env table from the TOML file at path, layers it over
// Defaults and applies environment variable overrides.
func Load(env, path string) (*Config, error) {
	env, err := NormalizeEnv(env)
	if err != nil {
		return nil, err
	}

	cfg := Defaults(env)

	var t Toml
	md, err := toml.DecodeFile(path, &t)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: decoding %s: %w", path, err)
		}
	} else {
		fileCfg, _ := t.Get(env)
		if fileCfg != nil {
			merge(cfg, fileCfg)
			// 0 is a meaningful value here: it turns the list cache off.
			if md.IsDefined(env, "cache_size_mb") {
				cfg.CacheSizeMB = fileCfg.CacheSizeMB
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" && env != EnvProduction {
		cfg.JWTSecret = devSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge copies every non-zero field of src over dst. Booleans are copied
// as-is whenever the table exists, so a table must state them explicitly
// to keep a default of true. Load handles an explicit cache_size_mb = 0.
func merge(dst, src *Config) {
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.DBDriver != "" {
		dst.DBDriver = src.DBDriver
	}
	if src.DBPath != "" {
		dst.DBPath = src.DBPath
	}
	if src.DatabaseURL != "" {
		dst.DatabaseURL = src.DatabaseURL
	}
	if src.JWTSecret != "" {
		dst.JWTSecret = src.JWTSecret
	}
	if src.TokenTTL.Duration != 0 {
		dst.TokenTTL = src.TokenTTL
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogFormat != "" {
		dst.LogFormat = src.LogFormat
	}
	if src.LogFile != "" {
		dst.LogFile = src.LogFile
	}
	dst.LogToStdout = src.LogToStdout
	dst.MetricsEnabled = src.MetricsEnabled
	if src.CacheSizeMB != 0 {
		dst.CacheSizeMB = src.CacheSizeMB
	}
	if src.TemplateDir != "" {
		dst.TemplateDir = src.TemplateDir
	}
	if src.StaticDir != "" {
		dst.StaticDir = src.StaticDir
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.DBDriver = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	return nil
}

// Validate reports the first setting the server cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("config: db_path is required for sqlite")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: database_url is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown db_driver %q", c.DBDriver)
	}

	if len(c.JWTSecret) < 16 {
		return errors.New("config: jwt_secret must be at least 16 characters (set JWT_SECRET)")
	}
	if c.TokenTTL.Duration < 0 {
		return errors.New("config: token_ttl must not be negative")
	}
	if c.CacheSizeMB < 0 {
		return errors.New("config: cache_size_mb must not be negative")
	}
	return nil
}

func (c *Config) IsTest() bool { return c.Environment == EnvTest }
