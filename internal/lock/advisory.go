// Package lock serializes per-table reconciles across GoFresh instances
// using MySQL advisory locks.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrLockTimeout is returned when the lock wait expires because another
// instance holds the lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// releaseTimeout bounds the cleanup query issued after the protected
// section finishes. Release runs on a fresh context, so a cancelled caller
// cannot leave the lock dangling until the connection drops.
const releaseTimeout = 5 * time.Second

// TableLock is a named MySQL advisory lock scoped to one tracked table.
// Create instances with NewTableLock; the zero value is not usable.
//
// MySQL advisory locks belong to the session that takes them, so Acquire
// pins one pool connection and Release returns it. A TableLock must not
// be shared between goroutines.
type TableLock struct {
	db   *sql.DB
	name string
	conn *sql.Conn // pinned while held
	held bool
}

// LockName returns the advisory lock name for a table id. Every GoFresh
// instance pointed at the same server derives the same name, which is what
// makes the lock an instance-wide mutex.
func LockName(tableID int64) string {
	return fmt.Sprintf("gofresh:table:%d", tableID)
}

// NewTableLock creates the advisory lock guarding one table's record.
func NewTableLock(db *sql.DB, tableID int64) *TableLock {
	return &TableLock{db: db, name: LockName(tableID)}
}

// Name returns the MySQL lock name.
func (l *TableLock) Name() string { return l.name }

// Held reports whether this instance currently holds the lock.
func (l *TableLock) Held() bool { return l.held }

// Acquire waits up to timeoutSeconds for the lock. MySQL treats a negative
// timeout as an infinite wait.
//
// GET_LOCK returns 1 on success, 0 on timeout and NULL on a server-side
// failure. Timeouts map to ErrLockTimeout so callers can tell contention
// from breakage. The connection that ran GET_LOCK stays pinned until
// Release so the release reaches the owning session.
func (l *TableLock) Acquire(ctx context.Context, timeoutSeconds int) error {
	if l.held {
		return nil
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to pin a lock connection: %w", err)
	}

	var res sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", l.name, timeoutSeconds).Scan(&res); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}
	if !res.Valid {
		_ = conn.Close()
		return fmt.Errorf("GET_LOCK returned NULL for lock %q", l.name)
	}

	switch res.Int64 {
	case 1:
		l.conn = conn
		l.held = true
		return nil
	case 0:
		_ = conn.Close()
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, l.name)
	default:
		_ = conn.Close()
		return fmt.Errorf("unexpected GET_LOCK return value: %d", res.Int64)
	}
}

// Release frees the lock and unpins its connection. Releasing a lock that
// was never acquired is a no-op.
//
// RELEASE_LOCK returns 1 when released, 0 when the lock belongs to another
// session and NULL when it does not exist. The held flag is cleared in
// every case; whatever the server reports, this session no longer owns it.
func (l *TableLock) Release(ctx context.Context) error {
	if !l.held {
		return nil
	}
	conn := l.conn
	l.conn = nil
	l.held = false
	defer func() { _ = conn.Close() }()

	var res sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", l.name).Scan(&res); err != nil {
		return fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}
	if !res.Valid {
		return fmt.Errorf("RELEASE_LOCK returned NULL for lock %q", l.name)
	}
	if res.Int64 != 1 {
		return fmt.Errorf("lock %q was not held by this session", l.name)
	}
	return nil
}

// WithLock runs fn while holding the lock. The release happens in a defer,
// so fn panicking cannot leak the lock. Release errors are ignored; the
// server drops the lock when the session ends.
func (l *TableLock) WithLock(ctx context.Context, timeoutSeconds int, fn func() error) error {
	if err := l.Acquire(ctx, timeoutSeconds); err != nil {
		return err
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		_ = l.Release(releaseCtx)
	}()

	return fn()
}
