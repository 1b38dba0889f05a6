// Package store implements the on-device persistence layer of the sync
// engine: accounts, outbox-eligible documents, and per-account sync
// checkpoints, all backed by a single SQLite database.
//
// The engine mutates only delivery-state fields of documents; business
// payloads pass through as opaque blobs. Flag transitions are atomic per
// document so a crash mid-round leaves a consistent subset delivered rather
// than a torn state.
package store

import (
	"context"

	"github.com/MKhiriev/go-field-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// DocumentRepository is the outbox view over locally persisted documents.
// All methods are scoped by account; documents never cross accounts.
type DocumentRepository interface {
	// CountPending returns the number of documents of category awaiting
	// delivery for accountID.
	CountPending(ctx context.Context, category models.DocumentCategory, accountID int64) (int, error)

	// ListPending returns the pending documents of category for accountID,
	// ordered by creation time. Documents still in the editing state are
	// never included.
	ListPending(ctx context.Context, category models.DocumentCategory, accountID int64) ([]models.Document, error)

	// MarkDelivered flips the listed documents of category to the
	// delivered state. Each document is updated in its own statement so a
	// crash mid-call leaves a consistent subset delivered. Documents that
	// have meanwhile left the pending state are skipped, not failed.
	MarkDelivered(ctx context.Context, category models.DocumentCategory, ids []string) error

	// Save inserts or replaces a document. User-facing code calls it on
	// every edit; the engine itself only reads.
	Save(ctx context.Context, doc models.Document) error

	// Delete removes a document in any state.
	Delete(ctx context.Context, id string) error
}

// AccountRepository persists the set of provisioned accounts, of which at
// most one is current.
type AccountRepository interface {
	// Current returns the account marked current, or ErrNoCurrentAccount.
	Current(ctx context.Context) (models.Account, error)

	// SetCurrent marks accountID as current and clears the mark from every
	// other account in one transaction.
	SetCurrent(ctx context.Context, accountID int64) error

	// Save inserts or updates an account by remote ID and returns it with
	// the local ID populated.
	Save(ctx context.Context, account models.Account) (models.Account, error)

	// UpdateToken stores a fresh session token for accountID.
	UpdateToken(ctx context.Context, accountID int64, token string) error
}

// CheckpointRepository persists the last successful sync position per
// account.
type CheckpointRepository interface {
	// Get returns the checkpoint for accountID, or ErrCheckpointNotFound
	// when the account has never completed a sync (the full-sync trigger).
	Get(ctx context.Context, accountID int64) (models.Checkpoint, error)

	// Put inserts or replaces the checkpoint for checkpoint.AccountID.
	Put(ctx context.Context, checkpoint models.Checkpoint) error

	// Clear removes the checkpoint for accountID, forcing the next round
	// to be a full sync.
	Clear(ctx context.Context, accountID int64) error
}
