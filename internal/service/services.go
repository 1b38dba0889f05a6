package service

import (
	"context"

	"github.com/MKhiriev/go-field-sync/internal/adapter"
	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/models"
)

// AgentServices groups the sync-engine components into a single value wired
// by the application supervisor.
type AgentServices struct {
	Reachability ReachabilityMonitor
	Accounts     AccountService
	Pending      PendingInspector
	SyncDriver   SyncDriver
	Lifecycle    LifecycleManager
}

// NewAgentServices wires the engine from the bottom up: repositories feed
// the inspector and driver, which feed the lifecycle manager. The applier
// may be nil, in which case downloaded catalog batches are counted and
// dropped (useful until the catalog storage collaborator is plugged in).
func NewAgentServices(
	cfg *config.AgentConfig,
	storages *store.AgentStorages,
	transport adapter.Transport,
	applier CatalogApplier,
	log *logger.Logger,
) *AgentServices {
	if applier == nil {
		applier = &discardCatalogApplier{logger: log}
	}

	reachability := NewReachabilityMonitor(cfg.Reachability, log)
	accounts := NewAccountService(storages, log)
	pending := NewPendingInspector(storages, log)
	driver := NewSyncDriver(storages, transport, applier, log)
	lifecycle := NewLifecycleManager(
		LifecycleConfig{
			IdleInterval:        cfg.Engine.IdleInterval,
			GracePeriod:         cfg.Engine.GracePeriod,
			SettleDelay:         cfg.Engine.SettleDelay,
			ConnectInBackground: cfg.Engine.ConnectInBackground,
		},
		transport,
		reachability,
		accounts,
		pending,
		driver,
		log,
	)

	return &AgentServices{
		Reachability: reachability,
		Accounts:     accounts,
		Pending:      pending,
		SyncDriver:   driver,
		Lifecycle:    lifecycle,
	}
}

// discardCatalogApplier logs and drops reference batches. It stands in until
// the catalog storage collaborator is wired by the host application.
type discardCatalogApplier struct {
	logger *logger.Logger
}

func (a *discardCatalogApplier) Apply(_ context.Context, batch models.CatalogBatch) error {
	a.logger.Debug().
		Str("func", "discardCatalogApplier.Apply").
		Str("kind", batch.Kind).
		Int("items", len(batch.Items)).
		Msg("catalog batch discarded (no applier configured)")
	return nil
}
