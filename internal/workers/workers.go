package workers

// Workers aggregates the agent's background workers: the reachability
// monitor, the lifecycle manager loop and the job scheduler all start
// through one Run call.
type Workers struct {
	workers []Worker
}

// NewWorkers builds a Workers aggregate in start order.
func NewWorkers(list ...Worker) *Workers {
	return &Workers{workers: list}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
