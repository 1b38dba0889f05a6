package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/service"
)

// Processor is plugged into the asynq worker loop. Both task kinds share one
// body: verify connectivity, check pending work, hand off to the lifecycle
// manager. Returning an error tells asynq to retry with backoff, which is
// how "report retry to the OS scheduler" is expressed here.
type Processor struct {
	lifecycle    service.LifecycleManager
	pending      service.PendingInspector
	reachability service.ReachabilityMonitor
	logger       *logger.Logger
}

// NewProcessor constructs a job processor over the engine components.
func NewProcessor(
	lifecycle service.LifecycleManager,
	pending service.PendingInspector,
	reachability service.ReachabilityMonitor,
	logger *logger.Logger,
) *Processor {
	return &Processor{
		lifecycle:    lifecycle,
		pending:      pending,
		reachability: reachability,
		logger:       logger,
	}
}

// Handler registers the sync job handlers.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSyncCheck, p.handleSyncCheck)
	mux.HandleFunc(TaskSyncNow, p.handleSyncCheck)
	return mux
}

func (p *Processor) handleSyncCheck(ctx context.Context, task *asynq.Task) error {
	reason := "periodic"
	if len(task.Payload()) > 0 {
		var payload SyncPayload
		if err := json.Unmarshal(task.Payload(), &payload); err == nil && payload.Reason != "" {
			reason = payload.Reason
		}
	}

	// required-network constraint: without connectivity the job is
	// reported for retry so backoff kicks in
	if !p.reachability.IsAvailable() {
		p.logger.Debug().
			Str("func", "Processor.handleSyncCheck").
			Str("reason", reason).
			Msg("network unavailable, job will be retried")
		return fmt.Errorf("network unavailable")
	}

	summary, err := p.pending.Summary(ctx)
	if err != nil {
		p.logger.Err(err).
			Str("func", "Processor.handleSyncCheck").
			Msg("pending summary failed")
		return fmt.Errorf("pending summary: %w", err)
	}

	p.logger.Info().
		Str("func", "Processor.handleSyncCheck").
		Str("reason", reason).
		Int("pending_total", summary.Total()).
		Msg("background sync check")

	if err := p.lifecycle.CheckAndConnect(ctx); err != nil {
		return fmt.Errorf("check and connect: %w", err)
	}

	return nil
}
