// Package agent wires the sync engine together: configuration, storage,
// transport, services, background jobs and the local status endpoint, under
// one signal-aware supervisor.
package agent

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-field-sync/internal/adapter"
	"github.com/MKhiriev/go-field-sync/internal/config"
	handlerhttp "github.com/MKhiriev/go-field-sync/internal/handler/http"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/scheduler"
	"github.com/MKhiriev/go-field-sync/internal/service"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/internal/workers"
)

// App owns the assembled agent runtime.
type App struct {
	cfg       *config.AgentConfig
	log       *logger.Logger
	services  *service.AgentServices
	scheduler *scheduler.Scheduler
	status    *http.Server
}

// NewApp builds the whole agent from configuration. Construction performs
// no network I/O beyond opening the local database.
func NewApp(log *logger.Logger) (*App, error) {
	cfg, err := config.GetAgentConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	storages, err := store.NewAgentStorages(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create storages: %w", err)
	}

	transport, err := adapter.NewHTTPTransport(cfg.Adapter, log)
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}

	svcs := service.NewAgentServices(cfg, storages, transport, nil, log)

	jobScheduler := scheduler.New(cfg.Scheduler, log)
	processor := scheduler.NewProcessor(svcs.Lifecycle, svcs.Pending, svcs.Reachability, log)
	if err := jobScheduler.Register(processor); err != nil {
		return nil, fmt.Errorf("register background jobs: %w", err)
	}

	statusHandler := handlerhttp.NewHandler(svcs.Lifecycle, svcs.Pending, log)
	statusServer := &http.Server{
		Addr:    cfg.Status.Address,
		Handler: statusHandler.Init(),
	}

	return &App{
		cfg:       cfg,
		log:       log,
		services:  svcs,
		scheduler: jobScheduler,
		status:    statusServer,
	}, nil
}

// Run starts every background worker and blocks until SIGINT/SIGTERM.
// Shutdown cancels the supervisory context; an in-flight sync round's commit
// step is not cancellable and finishes on its own.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lifecycleWorker := workerFunc(func() {
		go a.services.Lifecycle.Run(ctx)
	})

	statusWorker := workerFunc(func() {
		go func() {
			if err := a.status.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.log.Err(err).Str("func", "App.Run").Msg("status endpoint stopped")
			}
		}()
	})

	all := workers.NewWorkers(
		workerFunc(a.services.Reachability.Start),
		lifecycleWorker,
		a.scheduler,
		statusWorker,
	)
	all.Run()

	a.log.Info().
		Str("func", "App.Run").
		Str("status_address", a.cfg.Status.Address).
		Msg("agent started")

	<-ctx.Done()

	a.log.Info().Str("func", "App.Run").Msg("shutting down")

	a.scheduler.Shutdown()
	a.services.Reachability.Stop()
	_ = a.status.Shutdown(context.Background())

	return nil
}

// workerFunc adapts a plain function to the workers.Worker interface.
type workerFunc func()

func (f workerFunc) Run() { f() }
