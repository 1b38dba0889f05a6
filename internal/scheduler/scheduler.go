package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
)

// Scheduler owns the recurring sync-check registration, the worker serving
// the jobs, and the client used for manual one-off enqueues. It implements
// the workers.Worker contract.
type Scheduler struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	client    *asynq.Client
	mux       *asynq.ServeMux
	period    string
	logger    *logger.Logger
}

// New constructs the background scheduler. A requested period below the host
// floor is raised to the floor rather than rejected.
func New(cfg config.AgentScheduler, log *logger.Logger) *Scheduler {
	period := cfg.Period
	if period < config.MinSchedulerPeriod {
		period = config.MinSchedulerPeriod
	}

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	server := asynq.NewServer(redisOpt, asynq.Config{
		// one worker: sync jobs must never run concurrently anyway
		Concurrency: 1,
		Queues:      map[string]int{queueName: 1},
	})

	return &Scheduler{
		server:    server,
		scheduler: asynq.NewScheduler(redisOpt, nil),
		client:    asynq.NewClient(redisOpt),
		period:    fmt.Sprintf("@every %s", period),
		logger:    log,
	}
}

// Register attaches the processor and the recurring entry. Separate from New
// so tests can construct a Scheduler without touching redis.
func (s *Scheduler) Register(processor *Processor) error {
	s.mux = processor.Handler()

	task := asynq.NewTask(TaskSyncCheck, nil)
	entryID, err := s.scheduler.Register(s.period, task,
		asynq.Queue(queueName),
		asynq.MaxRetry(5),
		asynq.TaskID(TaskSyncCheck), // uniquely named: re-registration replaces, never duplicates
	)
	if err != nil {
		return fmt.Errorf("register periodic sync check: %w", err)
	}

	s.logger.Info().
		Str("func", "Scheduler.Register").
		Str("entry_id", entryID).
		Str("period", s.period).
		Msg("periodic sync check registered")

	return nil
}

// Run implements the workers.Worker contract: it starts the scheduler and
// the worker server in the background.
func (s *Scheduler) Run() {
	if err := s.scheduler.Start(); err != nil {
		s.logger.Err(err).Str("func", "Scheduler.Run").Msg("failed to start periodic scheduler")
	}
	if err := s.server.Start(s.mux); err != nil {
		s.logger.Err(err).Str("func", "Scheduler.Run").Msg("failed to start job server")
	}
}

// SyncNow enqueues the one-off manual job.
func (s *Scheduler) SyncNow(ctx context.Context, reason string) error {
	return EnqueueSyncNow(ctx, s.client, SyncPayload{Reason: reason})
}

// Shutdown stops the scheduler, the worker and the client.
func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
	s.server.Shutdown()
	_ = s.client.Close()
}
