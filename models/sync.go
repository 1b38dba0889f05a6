// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncEventKind discriminates the events emitted during one sync round.
type SyncEventKind string

const (
	// SyncProgress is a non-terminal informational event.
	SyncProgress SyncEventKind = "progress"

	// SyncSuccess terminates a round; all uploaded documents were
	// acknowledged and the checkpoint advanced.
	SyncSuccess SyncEventKind = "success"

	// SyncError terminates a round; no local state was mutated and the
	// round is safe to retry as-is.
	SyncError SyncEventKind = "error"
)

// SyncResult is one event of the ordered, finite stream produced by a sync
// round: zero or more Progress events followed by exactly one Success or
// Error, after which the stream closes.
type SyncResult struct {
	Kind    SyncEventKind `json:"kind"`
	Message string        `json:"message"`
}

// Terminal reports whether the event ends the round.
func (r SyncResult) Terminal() bool {
	return r.Kind == SyncSuccess || r.Kind == SyncError
}

// Checkpoint records the last successful sync for one account: when it
// finished and the opaque server-side change cursor to resume deltas from.
// An absent or unreadable checkpoint is the trigger for a full sync.
type Checkpoint struct {
	AccountID int64     `json:"account_id"`
	Cursor    string    `json:"cursor"`
	SyncedAt  time.Time `json:"synced_at"`
}

// CatalogBatch is one portion of reference data downloaded from the server,
// applied to local storage as-is.
type CatalogBatch struct {
	// Kind names the reference entity the batch carries (products, clients,
	// price lists, ...). Opaque to the engine.
	Kind string `json:"kind"`

	// Items are the serialized entities.
	Items [][]byte `json:"items"`

	// Cursor is the server change cursor after this batch. The last batch
	// of a round carries the value persisted into the checkpoint.
	Cursor string `json:"cursor"`
}
