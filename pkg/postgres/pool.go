package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config describes one PostgreSQL database. SSLMode defaults to "require".
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// ApplicationName shows up in pg_stat_activity.
	ApplicationName string
	MaxConns        int32
	MinConns        int32
}

// DSN is the libpq-style URL pgx connects with.
func (c Config) DSN() string { return c.url("postgres") }

// MigrateURL is DSN under the pgx5 scheme golang-migrate registers.
func (c Config) MigrateURL() string { return c.url("pgx5") }

func (c Config) url(scheme string) string {
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if c.SSLMode == "" {
		q.Set("sslmode", "require")
	}
	if c.ApplicationName != "" {
		q.Set("application_name", c.ApplicationName)
	}
	return (&url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}).String()
}

// PoolOption tunes a pool before it connects.
type PoolOption func(*pgxpool.Config)

// WithMaxConns caps open connections. Non-positive values keep pgx's default.
func WithMaxConns(n int32) PoolOption {
	return func(pc *pgxpool.Config) {
		if n > 0 {
			pc.MaxConns = n
		}
	}
}

// WithMinConns keeps n connections warm.
func WithMinConns(n int32) PoolOption {
	return func(pc *pgxpool.Config) {
		if n > 0 {
			pc.MinConns = n
		}
	}
}

// NewPool connects to the database in cfg and pings it.
func NewPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	return Connect(ctx, cfg.DSN(), WithMaxConns(cfg.MaxConns), WithMinConns(cfg.MinConns))
}

// Connect opens a pool for dsn. Connections are recycled hourly and
// dropped after half an hour idle. The pool is closed again if the first
// ping fails.
func Connect(ctx context.Context, dsn string, opts ...PoolOption) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 30 * time.Minute
	for _, opt := range opts {
		opt(pc)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck reports whether the database answers a ping.
func HealthCheck(ctx context.Context, db Pinger) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check: %w", err)
	}
	return nil
}
