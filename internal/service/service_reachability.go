package service

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
)

// reachabilityMonitor implements [ReachabilityMonitor] by probing a
// validated-internet endpoint on a fixed cadence. The probe expects a
// 204 No Content answer; anything else (including a captive portal's
// interception page) counts as unavailable.
type reachabilityMonitor struct {
	client   *resty.Client
	probeURL string
	interval time.Duration
	logger   *logger.Logger

	mu        sync.Mutex
	started   bool
	available bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	subs      []chan bool
}

// NewReachabilityMonitor constructs a [ReachabilityMonitor] from the probe
// configuration. The monitor is idle until Start is called and assumes
// unavailable until the first probe succeeds.
func NewReachabilityMonitor(cfg config.AgentReachability, logger *logger.Logger) ReachabilityMonitor {
	client := resty.New().
		SetTimeout(cfg.ProbeTimeout)

	return &reachabilityMonitor{
		client:   client,
		probeURL: cfg.ProbeURL,
		interval: cfg.ProbeInterval,
		logger:   logger,
	}
}

// Start implements [ReachabilityMonitor]. Idempotent: a second call while
// running is a no-op.
func (m *reachabilityMonitor) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go m.loop(ctx)
}

// Stop implements [ReachabilityMonitor]. Idempotent; the monitor degrades to
// "assume unavailable" once stopped.
func (m *reachabilityMonitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()

	m.setAvailable(false)
}

func (m *reachabilityMonitor) loop(ctx context.Context) {
	defer m.wg.Done()

	// first probe immediately so subscribers get a real value fast
	m.setAvailable(m.probe(ctx))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.setAvailable(m.probe(ctx))
		}
	}
}

func (m *reachabilityMonitor) probe(ctx context.Context) bool {
	resp, err := m.client.R().
		SetContext(ctx).
		Get(m.probeURL)
	if err != nil {
		m.logger.Debug().
			Str("func", "reachabilityMonitor.probe").
			Err(err).
			Msg("connectivity probe failed")
		return false
	}

	// a captive portal answers 200 with its login page; only the expected
	// empty answer proves the internet is actually reachable
	return resp.StatusCode() == http.StatusNoContent
}

// IsAvailable implements [ReachabilityMonitor].
func (m *reachabilityMonitor) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// Subscribe implements [ReachabilityMonitor]. The returned channel carries
// the current value immediately, then one value per edge. Stale unread
// values are replaced, never queued.
func (m *reachabilityMonitor) Subscribe() <-chan bool {
	ch := make(chan bool, 1)

	m.mu.Lock()
	ch <- m.available
	m.subs = append(m.subs, ch)
	m.mu.Unlock()

	return ch
}

// setAvailable records the probe outcome and notifies subscribers on edges
// only.
func (m *reachabilityMonitor) setAvailable(available bool) {
	m.mu.Lock()
	changed := m.available != available
	m.available = available
	subs := m.subs
	m.mu.Unlock()

	if !changed {
		return
	}

	m.logger.Info().
		Str("func", "reachabilityMonitor.setAvailable").
		Bool("available", available).
		Msg("connectivity changed")

	for _, ch := range subs {
		select {
		case ch <- available:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- available:
			default:
			}
		}
	}
}
