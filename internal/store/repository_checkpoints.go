package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/models"
)

// checkpointRepository is the SQLite-backed implementation of
// [CheckpointRepository].
type checkpointRepository struct {
	*DB
	logger *logger.Logger
}

// NewCheckpointRepository constructs a [CheckpointRepository] backed by the
// provided database connection and logger.
func NewCheckpointRepository(db *DB, logger *logger.Logger) CheckpointRepository {
	return &checkpointRepository{
		DB:     db,
		logger: logger,
	}
}

// Get implements [CheckpointRepository].
func (r *checkpointRepository) Get(ctx context.Context, accountID int64) (models.Checkpoint, error) {
	var checkpoint models.Checkpoint

	row := r.DB.QueryRowContext(ctx, getCheckpoint, accountID)
	err := row.Scan(&checkpoint.AccountID, &checkpoint.Cursor, &checkpoint.SyncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Checkpoint{}, ErrCheckpointNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "checkpointRepository.Get").
			Int64("account_id", accountID).
			Msg("failed to load sync checkpoint")
		return models.Checkpoint{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return checkpoint, nil
}

// Put implements [CheckpointRepository].
func (r *checkpointRepository) Put(ctx context.Context, checkpoint models.Checkpoint) error {
	_, err := r.DB.ExecContext(ctx, putCheckpoint,
		checkpoint.AccountID,
		checkpoint.Cursor,
		checkpoint.SyncedAt,
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "checkpointRepository.Put").
			Int64("account_id", checkpoint.AccountID).
			Msg("failed to store sync checkpoint")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

// Clear implements [CheckpointRepository].
func (r *checkpointRepository) Clear(ctx context.Context, accountID int64) error {
	_, err := r.DB.ExecContext(ctx, clearCheckpoint, accountID)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "checkpointRepository.Clear").
			Int64("account_id", accountID).
			Msg("failed to clear sync checkpoint")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}
