// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/mock"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/models"
)

// recordingApplier collects applied batches without a mockgen mock
// (avoids an import cycle with the mock package).
type recordingApplier struct {
	applied []models.CatalogBatch
	err     error
}

func (a *recordingApplier) Apply(_ context.Context, batch models.CatalogBatch) error {
	if a.err != nil {
		return a.err
	}
	a.applied = append(a.applied, batch)
	return nil
}

// newTestSyncDriver builds the driver over mocked repositories and transport.
func newTestSyncDriver(
	t *testing.T,
	ctrl *gomock.Controller,
) (
	*syncDriver,
	*mock.MockDocumentRepository,
	*mock.MockAccountRepository,
	*mock.MockCheckpointRepository,
	*mock.MockTransport,
	*recordingApplier,
) {
	t.Helper()
	mockDocs := mock.NewMockDocumentRepository(ctrl)
	mockAccounts := mock.NewMockAccountRepository(ctrl)
	mockCheckpoints := mock.NewMockCheckpointRepository(ctrl)
	mockTransport := mock.NewMockTransport(ctrl)
	applier := &recordingApplier{}

	storages := &store.AgentStorages{
		DocumentRepository:   mockDocs,
		AccountRepository:    mockAccounts,
		CheckpointRepository: mockCheckpoints,
	}

	driver := NewSyncDriver(storages, mockTransport, applier, logger.Nop()).(*syncDriver)

	return driver, mockDocs, mockAccounts, mockCheckpoints, mockTransport, applier
}

// collect drains the event stream and returns every event, failing the test
// if the stream does not close in time.
func collect(t *testing.T, events <-chan models.SyncResult) []models.SyncResult {
	t.Helper()

	var got []models.SyncResult
	timeout := time.After(2 * time.Second)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, event)
		case <-timeout:
			t.Fatal("sync event stream did not close")
		}
	}
}

func terminal(t *testing.T, events []models.SyncResult) models.SyncResult {
	t.Helper()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	require.True(t, last.Terminal(), "last event must be terminal, got %q", last.Kind)
	return last
}

// ── RunDifferential ──────────────────────────────────────────────────────────

func TestSyncDriver_RunDifferential_NoAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	driver, _, mockAccounts, _, _, _ := newTestSyncDriver(t, ctrl)
	ctx := context.Background()

	mockAccounts.EXPECT().Current(ctx).Return(models.Account{}, store.ErrNoCurrentAccount)

	events := collect(t, driver.RunDifferential(ctx))

	last := terminal(t, events)
	assert.Equal(t, models.SyncSuccess, last.Kind)
}

func TestSyncDriver_RunDifferential_UploadThenDownload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	driver, mockDocs, mockAccounts, mockCheckpoints, mockTransport, applier := newTestSyncDriver(t, ctrl)
	ctx := context.Background()
	account := models.Account{ID: 7, LiveSync: true}

	// pending work: 2 orders, 1 image; cash and locations empty
	orders := []models.Document{
		{ID: "o1", AccountID: 7, Category: models.CategoryOrders, State: models.StatePending},
		{ID: "o2", AccountID: 7, Category: models.CategoryOrders, State: models.StatePending},
	}
	images := []models.Document{
		{ID: "i1", AccountID: 7, Category: models.CategoryImages, State: models.StatePending},
	}

	mockAccounts.EXPECT().Current(ctx).Return(account, nil)

	mockDocs.EXPECT().ListPending(ctx, models.CategoryOrders, account.ID).Return(orders, nil)
	mockDocs.EXPECT().ListPending(ctx, models.CategoryCash, account.ID).Return(nil, nil)
	mockDocs.EXPECT().ListPending(ctx, models.CategoryImages, account.ID).Return(images, nil)
	mockDocs.EXPECT().ListPending(ctx, models.CategoryLocations, account.ID).Return(nil, nil)

	// uploads happen in category order
	gomock.InOrder(
		mockTransport.EXPECT().UploadDocuments(ctx, models.CategoryOrders, orders).Return(nil),
		mockTransport.EXPECT().UploadDocuments(ctx, models.CategoryImages, images).Return(nil),
	)

	mockCheckpoints.EXPECT().Get(ctx, account.ID).
		Return(models.Checkpoint{AccountID: 7, Cursor: "c-41"}, nil)

	batches := []models.CatalogBatch{
		{Kind: "products", Items: [][]byte{[]byte(`{}`)}, Cursor: "c-42"},
	}
	mockTransport.EXPECT().DownloadChanges(ctx, "c-41").Return(batches, nil)

	// commit: only the snapshotted IDs flip, then the checkpoint advances
	mockDocs.EXPECT().MarkDelivered(gomock.Any(), models.CategoryOrders, []string{"o1", "o2"}).Return(nil)
	mockDocs.EXPECT().MarkDelivered(gomock.Any(), models.CategoryImages, []string{"i1"}).Return(nil)
	mockCheckpoints.EXPECT().Put(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, checkpoint models.Checkpoint) error {
			assert.Equal(t, int64(7), checkpoint.AccountID)
			assert.Equal(t, "c-42", checkpoint.Cursor)
			assert.False(t, checkpoint.SyncedAt.IsZero())
			return nil
		})

	events := collect(t, driver.RunDifferential(ctx))

	last := terminal(t, events)
	assert.Equal(t, models.SyncSuccess, last.Kind)
	assert.Contains(t, last.Message, "delivered 3 document(s)")
	assert.Contains(t, last.Message, "applied 1 batch(es)")
	require.Len(t, applier.applied, 1)
	assert.Equal(t, "products", applier.applied[0].Kind)
}

func TestSyncDriver_RunDifferential_UploadFails_NothingMutated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	driver, mockDocs, mockAccounts, _, mockTransport, _ := newTestSyncDriver(t, ctrl)
	ctx := context.Background()
	account := models.Account{ID: 3}

	orders := []models.Document{
		{ID: "o1", AccountID: 3, Category: models.CategoryOrders, State: models.StatePending},
	}

	mockAccounts.EXPECT().Current(ctx).Return(account, nil)
	mockDocs.EXPECT().ListPending(ctx, models.CategoryOrders, account.ID).Return(orders, nil)
	mockTransport.EXPECT().UploadDocuments(ctx, models.CategoryOrders, orders).
		Return(errors.New("server unavailable"))
	// no MarkDelivered, no checkpoint Put: the round is abandoned untouched

	events := collect(t, driver.RunDifferential(ctx))

	last := terminal(t, events)
	assert.Equal(t, models.SyncError, last.Kind)
	assert.Contains(t, last.Message, "upload orders")
}

func TestSyncDriver_RunDifferential_NoCheckpoint_DownloadsFromScratch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	driver, mockDocs, mockAccounts, mockCheckpoints, mockTransport, _ := newTestSyncDriver(t, ctrl)
	ctx := context.Background()
	account := models.Account{ID: 5}

	mockAccounts.EXPECT().Current(ctx).Return(account, nil)
	for _, category := range models.Categories() {
		mockDocs.EXPECT().ListPending(ctx, category, account.ID).Return(nil, nil)
	}

	mockCheckpoints.EXPECT().Get(ctx, account.ID).
		Return(models.Checkpoint{}, store.ErrCheckpointNotFound)

	// empty cursor asks the server for the complete catalog
	mockTransport.EXPECT().DownloadChanges(ctx, "").Return(nil, nil)
	mockCheckpoints.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

	events := collect(t, driver.RunDifferential(ctx))

	last := terminal(t, events)
	assert.Equal(t, models.SyncSuccess, last.Kind)
	assert.Contains(t, last.Message, "delivered 0 document(s)")
}

func TestSyncDriver_RunDifferential_UnreadableCheckpoint_Recovers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	driver, mockDocs, mockAccounts, mockCheckpoints, mockTransport, _ := newTestSyncDriver(t, ctrl)
	ctx := context.Background()
	account := models.Account{ID: 5}

	mockAccounts.EXPECT().Current(ctx).Return(account, nil)
	for _, category := range models.Categories() {
		mockDocs.EXPECT().ListPending(ctx, category, account.ID).Return(nil, nil)
	}

	// a checkpoint row that cannot be read is dropped and the round
	// re-downloads from scratch instead of failing forever
	mockCheckpoints.EXPECT().Get(ctx, account.ID).
		Return(models.Checkpoint{}, store.ErrScanningRows)
	mockCheckpoints.EXPECT().Clear(ctx, account.ID).Return(nil)

	mockTransport.EXPECT().DownloadChanges(ctx, "").Return(nil, nil)
	mockCheckpoints.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

	events := collect(t, driver.RunDifferential(ctx))

	last := terminal(t, events)
	assert.Equal(t, models.SyncSuccess, last.Kind)
}

func TestSyncDriver_RunDifferential_ApplyFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	driver, mockDocs, mockAccounts, mockCheckpoints, mockTransport, applier := newTestSyncDriver(t, ctrl)
	ctx := context.Background()
	account := models.Account{ID: 5}

	mockAccounts.EXPECT().Current(ctx).Return(account, nil)
	for _, category := range models.Categories() {
		mockDocs.EXPECT().ListPending(ctx, category, account.ID).Return(nil, nil)
	}
	mockCheckpoints.EXPECT().Get(ctx, account.ID).
		Return(models.Checkpoint{Cursor: "c-1"}, nil)
	mockTransport.EXPECT().DownloadChanges(ctx, "c-1").
		Return([]models.CatalogBatch{{Kind: "clients"}}, nil)

	applier.err = errors.New("disk full")
	// checkpoint must not advance past an unapplied batch

	events := collect(t, driver.RunDifferential(ctx))

	last := terminal(t, events)
	assert.Equal(t, models.SyncError, last.Kind)
	assert.Contains(t, last.Message, "apply clients batch")
}

// ── RunFull ──────────────────────────────────────────────────────────────────

func TestSyncDriver_RunFull_IgnoresCheckpointAndPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	driver, _, mockAccounts, mockCheckpoints, mockTransport, applier := newTestSyncDriver(t, ctrl)
	ctx := context.Background()
	account := models.Account{ID: 9}

	mockAccounts.EXPECT().Current(ctx).Return(account, nil)
	// no ListPending, no checkpoint Get: full sync is download-only
	mockTransport.EXPECT().DownloadChanges(ctx, "").
		Return([]models.CatalogBatch{{Kind: "products", Cursor: "c-100"}}, nil)
	mockCheckpoints.EXPECT().Put(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, checkpoint models.Checkpoint) error {
			assert.Equal(t, "c-100", checkpoint.Cursor)
			return nil
		})

	events := collect(t, driver.RunFull(ctx))

	last := terminal(t, events)
	assert.Equal(t, models.SyncSuccess, last.Kind)
	require.Len(t, applier.applied, 1)
}

// ── single-flight ────────────────────────────────────────────────────────────

func TestSyncDriver_SecondInvocationRefused(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	driver, _, mockAccounts, _, _, _ := newTestSyncDriver(t, ctrl)
	ctx := context.Background()

	release := make(chan struct{})
	mockAccounts.EXPECT().Current(ctx).
		DoAndReturn(func(context.Context) (models.Account, error) {
			<-release
			return models.Account{}, store.ErrNoCurrentAccount
		})

	first := driver.RunDifferential(ctx)
	assert.True(t, driver.IsRefreshing())

	// refused stream closes without emitting anything
	second := driver.RunFull(ctx)
	events := collect(t, second)
	assert.Empty(t, events)

	close(release)
	firstEvents := collect(t, first)
	assert.Equal(t, models.SyncSuccess, terminal(t, firstEvents).Kind)
	assert.False(t, driver.IsRefreshing())
}
