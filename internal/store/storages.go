package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
)

// AgentStorages groups all on-device repositories into a single value that
// can be passed around the service layer.
type AgentStorages struct {
	// DocumentRepository is the outbox view over locally created business
	// documents.
	DocumentRepository DocumentRepository

	// AccountRepository holds the provisioned accounts and the current
	// mark.
	AccountRepository AccountRepository

	// CheckpointRepository holds the last successful sync position per
	// account.
	CheckpointRepository CheckpointRepository
}

// NewAgentStorages initialises the agent storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs and returns an [AgentStorages] value wired to fresh
//     repositories.
//
// Returns an error if the database connection cannot be established or if
// migration fails.
func NewAgentStorages(cfg config.AgentStorage, logger *logger.Logger) (*AgentStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &AgentStorages{
		DocumentRepository:   NewDocumentRepository(db, logger),
		AccountRepository:    NewAccountRepository(db, logger),
		CheckpointRepository: NewCheckpointRepository(db, logger),
	}, nil
}
