// Package database opens the PostgreSQL pool that backs the city catalogue
// when CITIES_SOURCE=postgres.
package database

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ApplicationName is reported to the server in pg_stat_activity.
const ApplicationName = "airglance"

// Config holds database connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// MaxConns and MinConns size the pool. The catalogue is read once at
	// startup, then only pinged by readiness, so small values suffice.
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration

	// ConnectAttempts is how many times Connect pings before giving up.
	ConnectAttempts int
}

// ConfigFromEnv reads DB_* variables. Malformed numbers fall back to defaults.
func ConfigFromEnv() Config {
	return Config{
		Host:            env("DB_HOST", "localhost"),
		Port:            envInt("DB_PORT", 5432),
		User:            env("DB_USER", "airglance"),
		Password:        env("DB_PASSWORD", "localdev"),
		Database:        env("DB_NAME", "airglance"),
		SSLMode:         env("DB_SSL_MODE", "disable"),
		MaxConns:        envInt("DB_MAX_CONNS", 4),
		MinConns:        envInt("DB_MIN_CONNS", 0),
		ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnectAttempts: envInt("DB_CONNECT_ATTEMPTS", 5),
	}
}

// ConnectionString returns a postgres:// URL with credentials escaped.
func (c Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Connect opens the pool and waits for the server to answer, retrying with
// exponential backoff so the API can start alongside its database container.
func Connect(ctx context.Context, cfg Config, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns) //nolint:gosec // small config value
	}
	poolConfig.MinConns = int32(cfg.MinConns) //nolint:gosec // small config value
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	retries := uint64(0)
	if cfg.ConnectAttempts > 1 {
		retries = uint64(cfg.ConnectAttempts - 1)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)

	err = backoff.RetryNotify(
		func() error { return pool.Ping(ctx) },
		policy,
		func(err error, wait time.Duration) {
			logger.Warn().Err(err).Str("host", cfg.Host).Dur("retry_in", wait).Msg("database not ready")
		},
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}
