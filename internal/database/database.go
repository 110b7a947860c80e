// Package database probes the connection described by the resolved
// DATABASES.default block.  The driver is pgx through database/sql, wrapped
// in sqlx like the rest of the stack.
//
// Public entry points:
//
//	DSN(db)        – postgres:// URL for a settings.Database.
//	Open(ctx, db)  – open a small pool and Ping it.
//
// Only `check --ping-db` uses this package; the resolver never connects.
package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/taiga-settings/internal/settings"
)

const (
	driverName  = "pgx"
	pingTimeout = 5 * time.Second
)

// ErrUnsupportedEngine is returned for any engine other than PostgreSQL.
var ErrUnsupportedEngine = errors.New("unsupported database engine")

// DSN renders db as a postgres:// URL.  Host may carry a ":port" suffix.
func DSN(db settings.Database) (string, error) {
	if db.Engine != settings.PostgresEngine {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEngine, db.Engine)
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(db.User, db.Password),
		Host:   db.Host,
		Path:   "/" + db.Name,
	}
	return u.String(), nil
}

// Open returns a *sqlx.DB with a deliberately tiny pool (one probe, then
// Close), after a successful Ping.
func Open(ctx context.Context, db settings.Database) (*sqlx.DB, error) {
	dsn, err := DSN(db)
	if err != nil {
		return nil, err
	}

	conn, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if err := Ping(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Ping checks the connection within pingTimeout.
func Ping(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}
