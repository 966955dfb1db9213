// Package database opens and supervises the connection pool for the
// MySQL server whose tables GoFresh tracks.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/dbsmedya/gofresh/internal/config"
)

const (
	// dialTimeout bounds the TCP connect so an unreachable host fails the
	// run instead of hanging it.
	dialTimeout = 5 * time.Second

	connMaxLifetime = 10 * time.Minute

	maxPingAttempts = 3
	initialBackoff  = time.Second
)

// Manager owns the connection pool for the tracked MySQL server.
type Manager struct {
	DB  *sql.DB
	cfg *config.Config
}

// NewManager returns a manager that will connect per cfg.Database.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// Connect opens the pool and verifies the server answers. The ping is
// retried with exponential backoff so a server mid-restart does not fail
// the whole run.
func (m *Manager) Connect(ctx context.Context) error {
	dbc := &m.cfg.Database

	db, err := sql.Open("mysql", DSN(dbc))
	if err != nil {
		return fmt.Errorf("failed to open database handle: %w", err)
	}

	if dbc.MaxConnections > 0 {
		db.SetMaxOpenConns(dbc.MaxConnections)
	}
	if dbc.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(dbc.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := pingWithRetry(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to connect to %s:%d: %w", dbc.Host, dbc.Port, err)
	}

	m.DB = db
	return nil
}

// pingWithRetry dials the server through the pool. database/sql opens
// connections lazily, so the ping is what actually reaches the network.
func pingWithRetry(ctx context.Context, db *sql.DB) error {
	var err error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxPingAttempts; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if attempt == maxPingAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}

	return fmt.Errorf("no response after %d attempts: %w", maxPingAttempts, err)
}

// DSN renders the go-sql-driver DSN for the configured server.
func DSN(cfg *config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = dialTimeout
	mc.TLSConfig = tlsMode(cfg.TLS)
	return mc.FormatDSN()
}

// tlsMode maps the config values onto the driver's tls parameter.
// Unknown values fall back to preferred, matching the config default.
func tlsMode(mode string) string {
	switch mode {
	case "disable":
		return "false"
	case "required":
		return "true"
	default:
		return "preferred"
	}
}

// Close releases the pool. Safe on a manager that never connected.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	if err := m.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
