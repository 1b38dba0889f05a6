package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/models"
)

// pendingInspector implements [PendingInspector] over the local document
// repository. The summary is recomputed from storage on every call; nothing
// is cached here, so it can never drift from the outbox tables.
type pendingInspector struct {
	documents store.DocumentRepository
	accounts  store.AccountRepository
	logger    *logger.Logger
}

// NewPendingInspector constructs a [PendingInspector] over the given
// repositories.
func NewPendingInspector(storages *store.AgentStorages, logger *logger.Logger) PendingInspector {
	return &pendingInspector{
		documents: storages.DocumentRepository,
		accounts:  storages.AccountRepository,
		logger:    logger,
	}
}

// HasPendingData implements [PendingInspector].
func (p *pendingInspector) HasPendingData(ctx context.Context) (bool, error) {
	summary, err := p.Summary(ctx)
	if err != nil {
		return false, err
	}
	return summary.HasPendingData(), nil
}

// Summary implements [PendingInspector]. Each category is counted with an
// independent query; a failing category is logged and degraded to zero so
// one bad table never hides the rest of the outbox.
func (p *pendingInspector) Summary(ctx context.Context) (models.PendingSummary, error) {
	account, err := p.accounts.Current(ctx)
	if errors.Is(err, store.ErrNoCurrentAccount) {
		return models.PendingSummary{}, nil
	}
	if err != nil {
		return models.PendingSummary{}, fmt.Errorf("resolve current account: %w", err)
	}

	var summary models.PendingSummary
	for _, category := range models.Categories() {
		count, err := p.documents.CountPending(ctx, category, account.ID)
		if err != nil {
			p.logger.Err(err).
				Str("func", "pendingInspector.Summary").
				Str("category", string(category)).
				Int64("account_id", account.ID).
				Msg("pending count failed, degrading category to zero")
			continue
		}

		switch category {
		case models.CategoryOrders:
			summary.OrdersCount = count
		case models.CategoryCash:
			summary.CashCount = count
		case models.CategoryImages:
			summary.ImagesCount = count
		case models.CategoryLocations:
			summary.LocationsCount = count
		}
	}

	return summary, nil
}
