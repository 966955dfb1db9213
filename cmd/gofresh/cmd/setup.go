package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbsmedya/gofresh/internal/config"
	"github.com/dbsmedya/gofresh/internal/database"
	"github.com/dbsmedya/gofresh/internal/logger"
	"github.com/dbsmedya/gofresh/internal/store"
	"github.com/dbsmedya/gofresh/internal/tracker"
)

// session bundles the dependencies every database-facing command builds
// at startup: validated config, logger, an open connection, the record
// store and a hydrated tracker.
type session struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.Manager
	records *store.Store
	tracker *tracker.Tracker
}

// openSession loads and validates configuration, connects to MySQL,
// ensures the metadata table exists and hydrates the tracker from it.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat, overrides.HealthThreshold)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	manager := database.NewManager(cfg)
	if err := manager.Connect(ctx); err != nil {
		return nil, err
	}

	records, err := store.NewStore(manager.DB, cfg.Tracking.MetaTable, log)
	if err != nil {
		_ = manager.Close()
		return nil, err
	}
	if err := records.InitSchema(ctx); err != nil {
		_ = manager.Close()
		return nil, err
	}

	tr, err := tracker.New(records, log, cfg.Tracking)
	if err != nil {
		_ = manager.Close()
		return nil, err
	}
	tr.SetLockDB(manager.DB)

	if err := tr.Hydrate(ctx); err != nil {
		_ = manager.Close()
		return nil, err
	}

	return &session{
		cfg:     cfg,
		log:     log,
		db:      manager,
		records: records,
		tracker: tr,
	}, nil
}

// close releases the session's connection and flushes buffered log output.
func (s *session) close() {
	if err := s.db.Close(); err != nil {
		s.log.Warnf("Failed to close database connection: %v", err)
	}
	_ = s.log.Sync()
}

// splitQualified parses a schema-qualified table name of the form
// "schema.table".
func splitQualified(name string) (string, string, error) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid table name %q (expected schema.table)", name)
	}
	return parts[0], parts[1], nil
}
