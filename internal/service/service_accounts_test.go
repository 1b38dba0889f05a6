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

func newTestAccountService(
	t *testing.T,
	ctrl *gomock.Controller,
) (*accountService, *mock.MockAccountRepository) {
	t.Helper()
	mockAccounts := mock.NewMockAccountRepository(ctrl)

	storages := &store.AgentStorages{AccountRepository: mockAccounts}
	svc := NewAccountService(storages, logger.Nop()).(*accountService)

	return svc, mockAccounts
}

func TestAccountService_SetCurrent_NotifiesSubscribers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockAccounts := newTestAccountService(t, ctrl)
	ctx := context.Background()
	account := models.Account{ID: 2, RemoteID: "device-77", LiveSync: true, Current: true}

	mockAccounts.EXPECT().SetCurrent(ctx, int64(2)).Return(nil)
	mockAccounts.EXPECT().Current(ctx).Return(account, nil)

	updates := svc.Subscribe()

	require.NoError(t, svc.SetCurrent(ctx, 2))

	select {
	case got := <-updates:
		assert.Equal(t, int64(2), got.ID)
		assert.Equal(t, "device-77", got.RemoteID)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not observe the account switch")
	}
}

func TestAccountService_SetCurrent_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockAccounts := newTestAccountService(t, ctrl)
	ctx := context.Background()

	mockAccounts.EXPECT().SetCurrent(ctx, int64(2)).Return(errors.New("no such account"))

	updates := svc.Subscribe()

	require.Error(t, svc.SetCurrent(ctx, 2))

	select {
	case <-updates:
		t.Fatal("failed switch must not notify subscribers")
	default:
	}
}

func TestAccountService_Subscribe_LatestValueWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockAccounts := newTestAccountService(t, ctrl)
	ctx := context.Background()

	first := models.Account{ID: 1, Current: true}
	second := models.Account{ID: 2, Current: true}

	gomock.InOrder(
		mockAccounts.EXPECT().SetCurrent(ctx, int64(1)).Return(nil),
		mockAccounts.EXPECT().Current(ctx).Return(first, nil),
		mockAccounts.EXPECT().SetCurrent(ctx, int64(2)).Return(nil),
		mockAccounts.EXPECT().Current(ctx).Return(second, nil),
	)

	updates := svc.Subscribe()

	require.NoError(t, svc.SetCurrent(ctx, 1))
	require.NoError(t, svc.SetCurrent(ctx, 2))

	// the unread first switch is replaced, not queued behind
	got := <-updates
	assert.Equal(t, int64(2), got.ID)
}

func TestAccountService_CurrentAndSaveDelegate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockAccounts := newTestAccountService(t, ctrl)
	ctx := context.Background()

	mockAccounts.EXPECT().Current(ctx).Return(models.Account{ID: 3}, nil)
	got, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)

	saved := models.Account{RemoteID: "device-1", ServerURL: "https://sync.example.com"}
	mockAccounts.EXPECT().Save(ctx, saved).Return(models.Account{ID: 10, RemoteID: "device-1"}, nil)
	stored, err := svc.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.ID)
}
