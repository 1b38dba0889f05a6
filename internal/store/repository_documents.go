// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/models"
)

// documentRepository is the SQLite-backed implementation of
// [DocumentRepository]. It executes all outbox operations directly against
// the "documents" table using the embedded [*DB] connection.
//
// Every public method obtains a context-scoped logger via
// [logger.FromContext] so that all database interactions are traced with
// structured fields (account_id, category, document id).
type documentRepository struct {
	*DB
	logger *logger.Logger
}

// NewDocumentRepository constructs a [DocumentRepository] backed by the
// provided database connection and logger.
func NewDocumentRepository(db *DB, logger *logger.Logger) DocumentRepository {
	return &documentRepository{
		DB:     db,
		logger: logger,
	}
}

// CountPending implements [DocumentRepository].
func (r *documentRepository) CountPending(ctx context.Context, category models.DocumentCategory, accountID int64) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildCountPendingQuery(category, accountID)
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.CountPending").
			Str("category", string(category)).
			Int64("account_id", accountID).
			Msg("failed to build count query")
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int
	if err = r.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "documentRepository.CountPending").
			Str("category", string(category)).
			Int64("account_id", accountID).
			Msg("failed to count pending documents")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

// ListPending implements [DocumentRepository].
func (r *documentRepository) ListPending(ctx context.Context, category models.DocumentCategory, accountID int64) ([]models.Document, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListPendingQuery(category, accountID)
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.ListPending").
			Str("category", string(category)).
			Int64("account_id", accountID).
			Msg("failed to build list query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.ListPending").
			Str("category", string(category)).
			Int64("account_id", accountID).
			Msg("failed to query pending documents")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	docs := make([]models.Document, 0, 16)
	for rows.Next() {
		var doc models.Document
		var category, state string

		scanErr := rows.Scan(
			&doc.ID,
			&doc.AccountID,
			&category,
			&state,
			&doc.Payload,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "documentRepository.ListPending").
				Int64("account_id", accountID).
				Msg("failed to scan pending document row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}

		doc.Category = models.DocumentCategory(category)
		doc.State = models.DeliveryState(state)
		docs = append(docs, doc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return docs, nil
}

// MarkDelivered implements [DocumentRepository]. Each id is flipped in its
// own statement: a crash mid-call leaves the documents updated so far
// consistently delivered and the rest still pending, which is exactly the
// retry-safe shape the sync driver expects.
func (r *documentRepository) MarkDelivered(ctx context.Context, category models.DocumentCategory, ids []string) error {
	log := logger.FromContext(ctx)
	now := time.Now()

	for _, id := range ids {
		query, args, err := buildMarkDeliveredQuery(category, id, now)
		if err != nil {
			log.Err(err).
				Str("func", "documentRepository.MarkDelivered").
				Str("category", string(category)).
				Str("document_id", id).
				Msg("failed to build update query")
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).
				Str("func", "documentRepository.MarkDelivered").
				Str("category", string(category)).
				Str("document_id", id).
				Msg("failed to mark document delivered")
			return fmt.Errorf("failed to mark document delivered (id=%s): %w", id, err)
		}
	}

	return nil
}

// Save implements [DocumentRepository].
func (r *documentRepository) Save(ctx context.Context, doc models.Document) error {
	log := logger.FromContext(ctx)

	query, args, err := buildSaveDocumentQuery(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "documentRepository.Save").
			Str("document_id", doc.ID).
			Str("category", string(doc.Category)).
			Msg("failed to save document")
		return fmt.Errorf("failed to save document (id=%s): %w", doc.ID, err)
	}

	return nil
}

// Delete implements [DocumentRepository].
func (r *documentRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteDocumentQuery(id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "documentRepository.Delete").
			Str("document_id", id).
			Msg("failed to delete document")
		return fmt.Errorf("failed to delete document (id=%s): %w", id, err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrDocumentNotFound
	}

	return nil
}
