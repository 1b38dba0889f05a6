// Package service implements the synchronization engine of the device agent:
// the reachability monitor, the pending-work inspector, the sync protocol
// driver, the account service, and the connection lifecycle manager that
// orchestrates them.
package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-field-sync/models"
)

// ReachabilityMonitor watches connectivity and exposes a boolean
// "internet usable" signal. "Usable" requires a validated probe round-trip,
// so a connected-but-captive network reports unavailable.
type ReachabilityMonitor interface {
	// Start begins probing. Idempotent: calling twice does not
	// double-register.
	Start()

	// Stop halts probing. Idempotent.
	Stop()

	// IsAvailable gives a synchronous point-in-time answer.
	IsAvailable() bool

	// Subscribe returns a latest-value stream that emits the current value
	// immediately and thereafter only on change. Historical edges are
	// never buffered.
	Subscribe() <-chan bool
}

// PendingInspector answers "is there undelivered local work" for the current
// account by querying storage. Both methods resolve the current account
// first; with no current account they return the empty result, not an error.
type PendingInspector interface {
	// HasPendingData reports whether at least one document awaits delivery.
	HasPendingData(ctx context.Context) (bool, error)

	// Summary returns per-category pending counts. A storage failure in
	// one category degrades that category's count to zero and is logged;
	// it never aborts the other categories.
	Summary(ctx context.Context) (models.PendingSummary, error)
}

// SyncDriver executes one round of synchronization against the remote.
// At most one round (of either kind) is in flight at a time; a second
// invocation while one is running returns an already-closed stream with no
// events.
type SyncDriver interface {
	// RunDifferential uploads every pending document category-by-category,
	// then downloads server-side changes since the last checkpoint. On the
	// terminal Success only documents actually included in the round are
	// flipped to delivered; on Error nothing is mutated.
	RunDifferential(ctx context.Context) <-chan models.SyncResult

	// RunFull ignores the checkpoint and re-downloads the entire reference
	// catalog. Used on first run and to recover from checkpoint loss.
	RunFull(ctx context.Context) <-chan models.SyncResult

	// IsRefreshing reports whether a round is currently in flight.
	IsRefreshing() bool
}

// CatalogApplier lands downloaded reference-data batches in local storage.
// The sync engine treats catalog entities as opaque; the application plugs
// in the real implementation.
type CatalogApplier interface {
	Apply(ctx context.Context, batch models.CatalogBatch) error
}

// AccountService exposes the current account and a stream of account
// switches. Every component that cares about the current account subscribes
// to the one stream instead of maintaining ad-hoc listener lists.
type AccountService interface {
	// Current returns the account marked current or
	// [store.ErrNoCurrentAccount].
	Current(ctx context.Context) (models.Account, error)

	// SetCurrent switches the current account and notifies subscribers.
	SetCurrent(ctx context.Context, accountID int64) error

	// Save upserts an account record.
	Save(ctx context.Context, account models.Account) (models.Account, error)

	// Subscribe returns a latest-value stream of current-account changes.
	// A zero-ID account value means no account is current.
	Subscribe() <-chan models.Account
}

// EngineStatus is a published snapshot of the lifecycle manager's state for
// UI consumption.
type EngineStatus struct {
	Connection models.ConnectionState `json:"connection"`
	LastSyncAt time.Time              `json:"last_sync_at"`
	Refreshing bool                   `json:"refreshing"`
	Foreground bool                   `json:"foreground"`
}

// LifecycleManager owns the decision of when a live connection is warranted.
// It reacts to foreground/background transitions, reachability edges,
// account switches and elapsed idle time, and drives the sync driver once
// connected. Construct one per process and run it under a supervisor; it is
// failure-transparent with respect to the transport.
type LifecycleManager interface {
	// Run is the supervisory loop. It blocks until ctx is cancelled.
	Run(ctx context.Context)

	// AppForeground signals that the app became interactive. Cancels a
	// pending grace-period disconnect and re-evaluates triggers.
	AppForeground()

	// AppBackground signals that the app left the foreground. Starts the
	// grace-period timer; the connection is torn down only if the timer
	// fires with no pending data.
	AppBackground()

	// CheckAndConnect evaluates the gating predicate and connects when it
	// passes. Idempotent and safe to call repeatedly (Sync Now button,
	// periodic job).
	CheckAndConnect(ctx context.Context) error

	// TriggerDataSync starts a differential round and returns its event
	// stream. A round already in flight yields a closed, empty stream.
	TriggerDataSync(ctx context.Context) <-chan models.SyncResult

	// SetIdleInterval changes the idle threshold, clamped into the sane
	// range, and reschedules the periodic check immediately.
	SetIdleInterval(interval time.Duration)

	// ConnectionStates returns a latest-value stream of connection state
	// observations for UI status indicators.
	ConnectionStates() <-chan models.ConnectionState

	// PendingSummaries returns a latest-value stream of pending-work
	// summaries, published after trigger evaluations and sync rounds.
	PendingSummaries() <-chan models.PendingSummary

	// Status returns a point-in-time snapshot for the status endpoint.
	Status() EngineStatus
}
