// Package store provides freshness record persistence for GoFresh.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dbsmedya/gofresh/internal/logger"
	"github.com/dbsmedya/gofresh/internal/sqlutil"
	"github.com/dbsmedya/gofresh/internal/statsmeta"
)

// ErrNotFound is returned when no freshness record exists for a table id.
var ErrNotFound = errors.New("freshness record not found")

// DefaultMetaTable is the records table used when none is configured.
const DefaultMetaTable = "gofresh_stats_meta"

const createMetaTableSQL = `
CREATE TABLE IF NOT EXISTS %s (
	table_id BIGINT PRIMARY KEY,
	schema_name VARCHAR(255) NOT NULL,
	table_name VARCHAR(255) NOT NULL,
	payload MEDIUMTEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	INDEX idx_schema_table (schema_name, table_name),
	INDEX idx_updated (updated_at)
) ENGINE=InnoDB;
`

// Store persists freshness records in MySQL.
//
// Records are serialized through the statsmeta codec and stored one row per
// table, keyed by table id. The payload column carries the full wire format,
// so records written by older builds of GoFresh stay readable.
type Store struct {
	db     *sql.DB
	table  string // records table, backtick-quoted
	logger *logger.Logger
}

// NewStore creates a store backed by the given database connection.
// An empty table name selects DefaultMetaTable.
func NewStore(db *sql.DB, table string, log *logger.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if table == "" {
		table = DefaultMetaTable
	}
	quoted, err := sqlutil.QuoteIdentifierSafe(table)
	if err != nil {
		return nil, fmt.Errorf("invalid records table name: %w", err)
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &Store{
		db:     db,
		table:  quoted,
		logger: log,
	}, nil
}

// InitSchema creates the persistence table if it doesn't exist. Running
// it against an existing table is a no-op, so every startup may call it.
func (s *Store) InitSchema(ctx context.Context) error {
	s.logger.Debug("Initializing freshness record table")

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(createMetaTableSQL, s.table)); err != nil {
		return fmt.Errorf("failed to create records table %s: %w", s.table, err)
	}

	s.logger.Info("Freshness record table initialized")
	return nil
}

// Save upserts a record. The row is keyed by table id, so repeated saves
// after each reconcile overwrite the previous payload.
func (s *Store) Save(ctx context.Context, meta *statsmeta.TableMeta) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to serialize record for table %d: %w", meta.TableID, err)
	}

	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (table_id, schema_name, table_name, payload) VALUES (?, ?, ?, ?) "+
			"ON DUPLICATE KEY UPDATE schema_name = VALUES(schema_name), table_name = VALUES(table_name), payload = VALUES(payload)", s.table),
		meta.TableID, meta.DatabaseName, meta.TableName, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save record for table %d: %w", meta.TableID, err)
	}

	s.logger.Debugf("Saved record for table %d (%s.%s)", meta.TableID, meta.DatabaseName, meta.TableName)
	return nil
}

// Load retrieves the record for a table id.
// Returns ErrNotFound when no row exists.
func (s *Store) Load(ctx context.Context, tableID int64) (*statsmeta.TableMeta, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT payload FROM %s WHERE table_id = ?", s.table),
		tableID,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: table %d", ErrNotFound, tableID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record for table %d: %w", tableID, err)
	}

	var meta statsmeta.TableMeta
	if err := json.Unmarshal(payload, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode record for table %d: %w", tableID, err)
	}

	return &meta, nil
}

// LoadAll retrieves every stored record, ordered by table id.
// Fails fast on the first payload that does not decode.
func (s *Store) LoadAll(ctx context.Context) ([]*statsmeta.TableMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT table_id, payload FROM %s ORDER BY table_id ASC", s.table),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warnf("Failed to close rows: %v", err)
		}
	}()

	var metas []*statsmeta.TableMeta
	for rows.Next() {
		var tableID int64
		var payload []byte
		if err := rows.Scan(&tableID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}

		var meta statsmeta.TableMeta
		if err := json.Unmarshal(payload, &meta); err != nil {
			return nil, fmt.Errorf("failed to decode record for table %d: %w", tableID, err)
		}
		metas = append(metas, &meta)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	s.logger.Debugf("Loaded %d records", len(metas))
	return metas, nil
}

// Delete removes the record for a table id. Deleting a missing row is not
// an error; the end state is the same.
func (s *Store) Delete(ctx context.Context, tableID int64) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE table_id = ?", s.table),
		tableID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete record for table %d: %w", tableID, err)
	}

	s.logger.Debugf("Deleted record for table %d", tableID)
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// SetLogger sets a custom logger for the store.
func (s *Store) SetLogger(log *logger.Logger) {
	s.logger = log
}
