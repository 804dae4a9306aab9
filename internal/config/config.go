// Package config reads the process environment, optionally seeded from a
// dotenv file, into a validated Config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	defaultEnvFile = ".env"
	minSecretLen   = 32
)

var (
	ErrMissing = errors.New("required variable is not set")
	ErrInvalid = errors.New("invalid variable")
)

type Config struct {
	Env                  string
	Port                 int
	AuthSecret           string
	AuthURL              string
	DatabaseURL          string
	ClientOrigin         string
	RedisURL             string
	SessionTTL           time.Duration
	SessionPurgeInterval time.Duration
	TrustProxy           bool
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Load reads ENV_FILE (default .env) into the environment without
// overriding variables that are already set, then parses and validates.
// A missing default file is fine; a missing ENV_FILE is not.
func Load() (Config, error) {
	file := os.Getenv("ENV_FILE")
	explicit := file != ""
	if !explicit {
		file = defaultEnvFile
	}
	if err := godotenv.Load(file); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", file, err)
		}
	}
	return FromEnv()
}

// FromEnv parses the current environment.
func FromEnv() (Config, error) {
	var errs []error
	cfg := Config{
		Env:          getenv("APP_ENV", EnvDevelopment),
		AuthSecret:   os.Getenv("AUTH_SECRET"),
		AuthURL:      getenv("AUTH_URL", "http://localhost:3000"),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ClientOrigin: getenv("CLIENT_ORIGIN", "http://localhost:5173"),
		RedisURL:     strings.TrimSpace(os.Getenv("REDIS_URL")),
	}

	switch cfg.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("%w APP_ENV: %q is not one of development, production, test", ErrInvalid, cfg.Env))
	}

	port, err := strconv.Atoi(getenv("PORT", "3000"))
	if err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("%w PORT: must be between 1 and 65535", ErrInvalid))
	}
	cfg.Port = port

	switch {
	case cfg.AuthSecret == "":
		errs = append(errs, fmt.Errorf("%w: AUTH_SECRET", ErrMissing))
	case len(cfg.AuthSecret) < minSecretLen:
		errs = append(errs, fmt.Errorf("%w AUTH_SECRET: must be at least %d characters", ErrInvalid, minSecretLen))
	}

	if u, err := url.Parse(cfg.AuthURL); err != nil || !u.IsAbs() || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w AUTH_URL: %q is not an absolute url", ErrInvalid, cfg.AuthURL))
	}

	if cfg.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("%w: DATABASE_URL", ErrMissing))
	} else if !supportedDatabase(cfg.DatabaseURL) {
		errs = append(errs, fmt.Errorf("%w DATABASE_URL: unsupported scheme", ErrInvalid))
	}

	if cfg.SessionTTL, err = duration("SESSION_TTL", "168h"); err != nil {
		errs = append(errs, err)
	} else if cfg.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("%w SESSION_TTL: must be positive", ErrInvalid))
	}
	if cfg.SessionPurgeInterval, err = duration("SESSION_PURGE_INTERVAL", "1h"); err != nil {
		errs = append(errs, err)
	} else if cfg.SessionPurgeInterval < 0 {
		errs = append(errs, fmt.Errorf("%w SESSION_PURGE_INTERVAL: must not be negative", ErrInvalid))
	}

	if raw := os.Getenv("TRUST_PROXY"); raw != "" {
		if cfg.TrustProxy, err = strconv.ParseBool(raw); err != nil {
			errs = append(errs, fmt.Errorf("%w TRUST_PROXY: %q", ErrInvalid, raw))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func duration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getenv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%w %s: %v", ErrInvalid, key, err)
	}
	return d, nil
}

func supportedDatabase(raw string) bool {
	for _, prefix := range []string{
		"postgres://", "postgresql://", "mysql://", "sqlite://", "file:", "mongodb://", "mongodb+srv://",
	} {
		if strings.HasPrefix(raw, prefix) {
			return true
		}
	}
	return raw == ":memory:"
}
