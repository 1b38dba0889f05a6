package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/adapter"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/models"
)

// syncDriver implements [SyncDriver]. One instance serves the whole process;
// the refreshing flag is what guarantees the single-in-flight-round
// invariant that all cross-round ordering relies on.
type syncDriver struct {
	documents   store.DocumentRepository
	accounts    store.AccountRepository
	checkpoints store.CheckpointRepository
	transport   adapter.Transport
	applier     CatalogApplier
	logger      *logger.Logger

	refreshing atomic.Bool
}

// NewSyncDriver constructs a [SyncDriver] over the given storages, transport
// and catalog applier.
func NewSyncDriver(storages *store.AgentStorages, transport adapter.Transport, applier CatalogApplier, logger *logger.Logger) SyncDriver {
	return &syncDriver{
		documents:   storages.DocumentRepository,
		accounts:    storages.AccountRepository,
		checkpoints: storages.CheckpointRepository,
		transport:   transport,
		applier:     applier,
		logger:      logger,
	}
}

// IsRefreshing implements [SyncDriver].
func (s *syncDriver) IsRefreshing() bool {
	return s.refreshing.Load()
}

// RunDifferential implements [SyncDriver].
func (s *syncDriver) RunDifferential(ctx context.Context) <-chan models.SyncResult {
	return s.run(ctx, false)
}

// RunFull implements [SyncDriver].
func (s *syncDriver) RunFull(ctx context.Context) <-chan models.SyncResult {
	return s.run(ctx, true)
}

func (s *syncDriver) run(ctx context.Context, full bool) <-chan models.SyncResult {
	events := make(chan models.SyncResult, 8)

	if !s.refreshing.CompareAndSwap(false, true) {
		// another round is in flight; the refused stream closes without
		// emitting anything
		s.logger.Debug().
			Str("func", "syncDriver.run").
			Err(ErrSyncInFlight).
			Msg("sync invocation refused")
		close(events)
		return events
	}

	go func() {
		defer close(events)
		defer s.refreshing.Store(false)
		s.round(ctx, full, events)
	}()

	return events
}

// uploadedBatch records the documents of one category actually included in
// the round. Only these are flipped to delivered on success; anything
// written after the snapshot stays pending for the next round.
type uploadedBatch struct {
	category models.DocumentCategory
	ids      []string
}

func (s *syncDriver) round(ctx context.Context, full bool, events chan<- models.SyncResult) {
	account, err := s.accounts.Current(ctx)
	if errors.Is(err, store.ErrNoCurrentAccount) {
		// valid steady state, not a failure
		events <- models.SyncResult{Kind: models.SyncSuccess, Message: "no account configured, nothing to sync"}
		return
	}
	if err != nil {
		events <- models.SyncResult{Kind: models.SyncError, Message: fmt.Sprintf("resolve current account: %v", err)}
		return
	}

	var uploaded []uploadedBatch
	if !full {
		uploaded, err = s.uploadPending(ctx, account.ID, events)
		if err != nil {
			s.logger.Err(err).
				Str("func", "syncDriver.round").
				Int64("account_id", account.ID).
				Msg("upload phase failed, round abandoned")
			events <- models.SyncResult{Kind: models.SyncError, Message: err.Error()}
			return
		}
	}

	cursor := ""
	if !full {
		checkpoint, err := s.checkpoints.Get(ctx, account.ID)
		switch {
		case errors.Is(err, store.ErrCheckpointNotFound):
			// first run or lost checkpoint: behaves like a full download
		case err != nil:
			// unreadable checkpoint: drop the row and re-download from
			// scratch instead of wedging every round until someone edits
			// the database by hand
			s.logger.Err(err).
				Str("func", "syncDriver.round").
				Int64("account_id", account.ID).
				Msg("checkpoint unreadable, falling back to a full download")
			if clearErr := s.checkpoints.Clear(ctx, account.ID); clearErr != nil {
				s.logger.Err(clearErr).
					Str("func", "syncDriver.round").
					Int64("account_id", account.ID).
					Msg("failed to clear unreadable checkpoint")
			}
		default:
			cursor = checkpoint.Cursor
		}
	}

	events <- models.SyncResult{Kind: models.SyncProgress, Message: "downloading reference changes"}

	batches, err := s.transport.DownloadChanges(ctx, cursor)
	if err != nil {
		events <- models.SyncResult{Kind: models.SyncError, Message: fmt.Sprintf("download changes: %v", err)}
		return
	}

	nextCursor := cursor
	for _, batch := range batches {
		if err = s.applier.Apply(ctx, batch); err != nil {
			events <- models.SyncResult{Kind: models.SyncError, Message: fmt.Sprintf("apply %s batch: %v", batch.Kind, err)}
			return
		}
		if batch.Cursor != "" {
			nextCursor = batch.Cursor
		}
	}

	// Commit phase. From here on the round has happened: flag flips are
	// atomic per document and the server upserts by ID, so a crash in the
	// middle leaves a consistent, retry-safe subset. Shutdown must not
	// interrupt this step.
	commitCtx := context.WithoutCancel(ctx)

	total := 0
	for _, batch := range uploaded {
		if err = s.documents.MarkDelivered(commitCtx, batch.category, batch.ids); err != nil {
			events <- models.SyncResult{Kind: models.SyncError, Message: fmt.Sprintf("mark %s delivered: %v", batch.category, err)}
			return
		}
		total += len(batch.ids)
	}

	checkpoint := models.Checkpoint{
		AccountID: account.ID,
		Cursor:    nextCursor,
		SyncedAt:  time.Now(),
	}
	if err = s.checkpoints.Put(commitCtx, checkpoint); err != nil {
		events <- models.SyncResult{Kind: models.SyncError, Message: fmt.Sprintf("store checkpoint: %v", err)}
		return
	}

	s.logger.Info().
		Str("func", "syncDriver.round").
		Int64("account_id", account.ID).
		Bool("full", full).
		Int("delivered", total).
		Int("batches", len(batches)).
		Msg("sync round finished")

	events <- models.SyncResult{
		Kind:    models.SyncSuccess,
		Message: fmt.Sprintf("delivered %d document(s), applied %d batch(es)", total, len(batches)),
	}
}

// uploadPending snapshots and uploads the pending documents of every
// category, in category order. Each category is all-or-nothing: the first
// failing category abandons the round before any flag is touched.
func (s *syncDriver) uploadPending(ctx context.Context, accountID int64, events chan<- models.SyncResult) ([]uploadedBatch, error) {
	uploaded := make([]uploadedBatch, 0, 4)

	for _, category := range models.Categories() {
		docs, err := s.documents.ListPending(ctx, category, accountID)
		if err != nil {
			return nil, fmt.Errorf("list pending %s: %w", category, err)
		}
		if len(docs) == 0 {
			continue
		}

		events <- models.SyncResult{
			Kind:    models.SyncProgress,
			Message: fmt.Sprintf("uploading %s: %d item(s)", category, len(docs)),
		}

		if err = s.transport.UploadDocuments(ctx, category, docs); err != nil {
			return nil, fmt.Errorf("upload %s: %w", category, err)
		}

		ids := make([]string, 0, len(docs))
		for _, doc := range docs {
			ids = append(ids, doc.ID)
		}
		uploaded = append(uploaded, uploadedBatch{category: category, ids: ids})
	}

	return uploaded, nil
}
