// Package config loads server settings from defaults, an optional YAML
// file, an optional .env file and REALTY_* environment variables, in that
// order of precedence from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/evcraddock/realty/internal/auth"
	"github.com/evcraddock/realty/internal/db"
	"github.com/evcraddock/realty/internal/storage"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "REALTY_"

// DevJWTSecret signs tokens in dev mode when no secret is configured.
const DevJWTSecret = "realty-dev-secret-do-not-use-in-production"

// Seed describes the admin account created on first start.
type Seed struct {
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// Config holds all server settings.
type Config struct {
	Port        int            `yaml:"port"`
	DevMode     bool           `yaml:"dev_mode"`
	Database    db.Config      `yaml:"database"`
	Auth        auth.Config    `yaml:"auth"`
	Storage     storage.Config `yaml:"storage"`
	CORSOrigins []string       `yaml:"cors_origins"`
	Seed        Seed           `yaml:"seed"`
}

// Default returns the settings used when nothing is configured.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("getting home directory: %w", err)
	}
	base := filepath.Join(home, ".realty")

	return Config{
		Port: 8080,
		Database: db.Config{
			Driver: db.DriverSQLite,
			DSN:    filepath.Join(base, "realty.db"),
		},
		Auth: auth.DefaultConfig(),
		Storage: storage.Config{
			Driver:  storage.DriverLocal,
			Dir:     filepath.Join(base, "uploads"),
			BaseURL: "/uploads",
		},
		Seed: Seed{
			AdminEmail:    "admin@realestate.com",
			AdminPassword: "Admin123!",
		},
	}, nil
}

// Load reads the configuration and validates it for serving.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Read builds the configuration without validating it. path names an
// optional YAML file; an empty path skips it, a missing named file is an
// error. A .env file in the working directory is loaded if present.
func Read(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.DevMode && cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = DevJWTSecret
	}
	cfg.Database.Debug = cfg.DevMode

	return cfg, nil
}

// Validate checks that the settings can start a server.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("%sJWT_SECRET is required outside dev mode", EnvPrefix))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token ttl must be positive"))
	}
	if c.Auth.LoginRate <= 0 || c.Auth.LoginBurst <= 0 {
		errs = append(errs, fmt.Errorf("login rate and burst must be positive"))
	}
	switch c.Database.Driver {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	switch c.Storage.Driver {
	case storage.DriverLocal:
	case storage.DriverS3:
		if c.Storage.S3.Bucket == "" {
			errs = append(errs, fmt.Errorf("%sS3_BUCKET is required for the s3 storage driver", EnvPrefix))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.Storage.Driver))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"DB_DRIVER":            &cfg.Database.Driver,
		"DB_DSN":               &cfg.Database.DSN,
		"JWT_SECRET":           &cfg.Auth.JWTSecret,
		"STORAGE_DRIVER":       &cfg.Storage.Driver,
		"STORAGE_DIR":          &cfg.Storage.Dir,
		"STORAGE_BASE_URL":     &cfg.Storage.BaseURL,
		"S3_BUCKET":            &cfg.Storage.S3.Bucket,
		"S3_REGION":            &cfg.Storage.S3.Region,
		"S3_ACCESS_KEY_ID":     &cfg.Storage.S3.AccessKeyID,
		"S3_SECRET_ACCESS_KEY": &cfg.Storage.S3.SecretAccessKey,
		"S3_ENDPOINT":          &cfg.Storage.S3.Endpoint,
		"S3_PUBLIC_URL":        &cfg.Storage.S3.PublicURL,
		"ADMIN_EMAIL":          &cfg.Seed.AdminEmail,
		"ADMIN_PASSWORD":       &cfg.Seed.AdminPassword,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	var errs []error
	if v, ok := lookup("PORT"); ok {
		n, err := strconv.Atoi(v)
		errs = append(errs, wrapEnv("PORT", err))
		cfg.Port = n
	}
	if v, ok := lookup("DEV_MODE"); ok {
		b, err := strconv.ParseBool(v)
		errs = append(errs, wrapEnv("DEV_MODE", err))
		cfg.DevMode = b
	}
	if v, ok := lookup("TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		errs = append(errs, wrapEnv("TOKEN_TTL", err))
		cfg.Auth.TokenTTL = d
	}
	if v, ok := lookup("LOGIN_RATE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		errs = append(errs, wrapEnv("LOGIN_RATE", err))
		cfg.Auth.LoginRate = f
	}
	if v, ok := lookup("LOGIN_BURST"); ok {
		n, err := strconv.Atoi(v)
		errs = append(errs, wrapEnv("LOGIN_BURST", err))
		cfg.Auth.LoginBurst = n
	}
	if v, ok := lookup("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(v)
	}
	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func wrapEnv(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
