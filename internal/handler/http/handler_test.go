package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/service"
	"github.com/MKhiriev/go-field-sync/models"
)

type stubLifecycle struct {
	status service.EngineStatus
}

func (s *stubLifecycle) Run(context.Context)                                      {}
func (s *stubLifecycle) AppForeground()                                           {}
func (s *stubLifecycle) AppBackground()                                           {}
func (s *stubLifecycle) CheckAndConnect(context.Context) error                    { return nil }
func (s *stubLifecycle) TriggerDataSync(context.Context) <-chan models.SyncResult { return nil }
func (s *stubLifecycle) SetIdleInterval(time.Duration)                            {}
func (s *stubLifecycle) ConnectionStates() <-chan models.ConnectionState          { return nil }
func (s *stubLifecycle) PendingSummaries() <-chan models.PendingSummary           { return nil }
func (s *stubLifecycle) Status() service.EngineStatus                             { return s.status }

type stubPending struct {
	summary models.PendingSummary
	err     error
}

func (s *stubPending) HasPendingData(context.Context) (bool, error) {
	return s.summary.HasPendingData(), s.err
}

func (s *stubPending) Summary(context.Context) (models.PendingSummary, error) {
	return s.summary, s.err
}

func newTestHandler(t *testing.T) (*Handler, *stubLifecycle, *stubPending) {
	t.Helper()
	lifecycle := &stubLifecycle{}
	pending := &stubPending{}
	return NewHandler(lifecycle, pending, logger.Nop()), lifecycle, pending
}

func TestHandler_Status(t *testing.T) {
	handler, lifecycle, _ := newTestHandler(t)
	lifecycle.status = service.EngineStatus{
		Connection: models.ConnectionState{Phase: models.ConnectionConnected},
		LastSyncAt: time.Now(),
		Foreground: true,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got service.EngineStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.ConnectionConnected, got.Connection.Phase)
	assert.True(t, got.Foreground)
}

func TestHandler_PendingSummary(t *testing.T) {
	handler, _, pending := newTestHandler(t)
	pending.summary = models.PendingSummary{OrdersCount: 2, ImagesCount: 1}

	req := httptest.NewRequest(http.MethodGet, "/api/pending", nil)
	rec := httptest.NewRecorder()
	handler.Init().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.PendingSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.OrdersCount)
	assert.Equal(t, 1, got.ImagesCount)
	assert.Equal(t, 3, got.Total())
}

func TestHandler_PendingSummary_StorageError(t *testing.T) {
	handler, _, pending := newTestHandler(t)
	pending.err = errors.New("db closed")

	req := httptest.NewRequest(http.MethodGet, "/api/pending", nil)
	rec := httptest.NewRecorder()
	handler.Init().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_UnknownRouteIs404(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	rec := httptest.NewRecorder()
	handler.Init().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
