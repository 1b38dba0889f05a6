package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/adapter"
	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/models"
)

// LifecycleConfig carries the effective timing and policy knobs for the
// lifecycle manager. Values come pre-clamped from the config layer but
// SetIdleInterval re-clamps on its own, so a manager constructed by hand in
// tests behaves the same.
type LifecycleConfig struct {
	IdleInterval        time.Duration
	GracePeriod         time.Duration
	SettleDelay         time.Duration
	ConnectInBackground bool
}

// lifecycleManager implements [LifecycleManager]. One instance exists per
// process; everything that needs checkAndConnect receives the handle through
// constructor injection rather than a package global.
type lifecycleManager struct {
	cfg          LifecycleConfig
	transport    adapter.Transport
	reachability ReachabilityMonitor
	accounts     AccountService
	pending      PendingInspector
	driver       SyncDriver
	logger       *logger.Logger

	// connectMu serializes connection attempts across trigger sources.
	connectMu sync.Mutex

	mu           sync.Mutex
	account      models.Account
	foreground   bool
	lastSync     time.Time
	idleInterval time.Duration
	connState    models.ConnectionState
	graceTimer   *time.Timer
	runCtx       context.Context
	connSubs     []chan models.ConnectionState
	summarySubs  []chan models.PendingSummary

	intervalCh chan time.Duration
}

// NewLifecycleManager constructs the process-wide [LifecycleManager]. The
// manager is passive until Run is called, but CheckAndConnect and the app
// lifecycle hooks work immediately, which the periodic scheduler relies on.
func NewLifecycleManager(
	cfg LifecycleConfig,
	transport adapter.Transport,
	reachability ReachabilityMonitor,
	accounts AccountService,
	pending PendingInspector,
	driver SyncDriver,
	logger *logger.Logger,
) LifecycleManager {
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = config.DefaultGracePeriod
	}

	return &lifecycleManager{
		cfg:          cfg,
		transport:    transport,
		reachability: reachability,
		accounts:     accounts,
		pending:      pending,
		driver:       driver,
		logger:       logger,
		foreground:   true,
		idleInterval: config.ClampIdleInterval(cfg.IdleInterval),
		connState:    models.ConnectionState{Phase: models.ConnectionDisconnected},
		intervalCh:   make(chan time.Duration, 1),
	}
}

// Run implements [LifecycleManager]. It subscribes to the reachability and
// account streams, drives the idle-interval timer, and tears the connection
// down on shutdown. Triggers are funnelled through CheckAndConnect so every
// path passes the same gating predicate.
func (m *lifecycleManager) Run(ctx context.Context) {
	m.mu.Lock()
	m.runCtx = ctx
	m.mu.Unlock()

	if account, err := m.accounts.Current(ctx); err == nil {
		m.mu.Lock()
		m.account = account
		m.mu.Unlock()
	}

	reachCh := m.reachability.Subscribe()
	accountCh := m.accounts.Subscribe()

	ticker := time.NewTicker(m.currentIdleInterval())
	defer ticker.Stop()

	// a freshly started agent evaluates once instead of waiting a tick
	_ = m.CheckAndConnect(ctx)

	for {
		select {
		case <-ctx.Done():
			m.cancelGraceTimer()
			m.transport.Disconnect()
			m.setConnState(models.ConnectionState{Phase: models.ConnectionDisconnected})
			return

		case available := <-reachCh:
			if available && m.isForeground() {
				_ = m.CheckAndConnect(ctx)
			}

		case account := <-accountCh:
			m.handleAccountSwitch(ctx, account)

		case <-ticker.C:
			if m.isForeground() || m.cfg.ConnectInBackground {
				_ = m.CheckAndConnect(ctx)
			}

		case interval := <-m.intervalCh:
			ticker.Reset(interval)
		}
	}
}

// AppForeground implements [LifecycleManager].
func (m *lifecycleManager) AppForeground() {
	m.cancelGraceTimer()

	m.mu.Lock()
	m.foreground = true
	ctx := m.runCtx
	m.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	go func() { _ = m.CheckAndConnect(ctx) }()
}

// AppBackground implements [LifecycleManager]. The connection is not torn
// down immediately: quick app switches would otherwise thrash the socket.
func (m *lifecycleManager) AppBackground() {
	m.mu.Lock()
	m.foreground = false
	if m.graceTimer != nil {
		m.graceTimer.Stop()
	}
	m.graceTimer = time.AfterFunc(m.cfg.GracePeriod, m.onGraceExpired)
	m.mu.Unlock()
}

// onGraceExpired fires when the app stayed backgrounded for the whole grace
// period. A last-second upload must not be interrupted, so the connection is
// released only when there is still nothing pending.
func (m *lifecycleManager) onGraceExpired() {
	m.mu.Lock()
	if m.foreground {
		m.mu.Unlock()
		return
	}
	m.graceTimer = nil
	m.mu.Unlock()

	pending, err := m.pending.HasPendingData(context.Background())
	if err != nil {
		// cannot tell; keep the connection rather than risk cutting off
		// an in-flight delivery
		m.logger.Err(err).
			Str("func", "lifecycleManager.onGraceExpired").
			Msg("pending check failed, keeping connection")
		return
	}
	if pending {
		m.logger.Debug().
			Str("func", "lifecycleManager.onGraceExpired").
			Msg("pending data present, keeping connection")
		return
	}

	m.logger.Info().
		Str("func", "lifecycleManager.onGraceExpired").
		Msg("grace period expired, releasing connection")
	m.transport.Disconnect()
	m.setConnState(models.ConnectionState{Phase: models.ConnectionDisconnected})
}

func (m *lifecycleManager) cancelGraceTimer() {
	m.mu.Lock()
	if m.graceTimer != nil {
		m.graceTimer.Stop()
		m.graceTimer = nil
	}
	m.mu.Unlock()
}

// handleAccountSwitch tears down the previous account's connection, lets the
// transport settle, then re-evaluates for the new account. The last-sync
// time is reset: it belongs to the previous account.
func (m *lifecycleManager) handleAccountSwitch(ctx context.Context, account models.Account) {
	m.logger.Info().
		Str("func", "lifecycleManager.handleAccountSwitch").
		Int64("account_id", account.ID).
		Msg("account switched, recycling connection")

	m.transport.Disconnect()
	m.setConnState(models.ConnectionState{Phase: models.ConnectionDisconnected})

	m.mu.Lock()
	m.account = account
	m.lastSync = time.Time{}
	m.mu.Unlock()

	if m.cfg.SettleDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.cfg.SettleDelay):
		}
	}

	_ = m.CheckAndConnect(ctx)
}

// CheckAndConnect implements [LifecycleManager]. All five trigger sources
// end up here; the predicate decides, the transport connects, and a
// differential round is started on success. An already-connected session
// with pending data skips the connect and runs the round directly.
// Transport failures are logged and absorbed: the next trigger retries.
func (m *lifecycleManager) CheckAndConnect(ctx context.Context) error {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	account, ok := m.resolveAccount(ctx)
	if !ok {
		return nil
	}

	summary, err := m.pending.Summary(ctx)
	if err != nil {
		m.logger.Err(err).
			Str("func", "lifecycleManager.CheckAndConnect").
			Msg("pending summary failed")
		summary = models.PendingSummary{}
	}
	m.publishSummary(summary)

	connected := m.transport.IsConnected()

	if !m.shouldConnect(account, summary.HasPendingData(), connected) {
		// a held session gates out reconnects, not delivery: documents
		// finalized while connected still flush on the next trigger
		if connected && account.LiveSync && summary.HasPendingData() {
			m.startSync(ctx)
		}
		return nil
	}

	states, err := m.transport.Connect(ctx, account)
	if states != nil {
		go m.watchSession(states)
	}
	if err != nil {
		// transport owns retry/backoff; stay disconnected until the next
		// trigger
		m.logger.Warn().
			Str("func", "lifecycleManager.CheckAndConnect").
			Err(err).
			Msg("connection attempt failed")
		return nil
	}

	m.startSync(ctx)

	return nil
}

// resolveAccount returns the account the engine operates for, falling back
// to storage when Run has not populated it yet.
func (m *lifecycleManager) resolveAccount(ctx context.Context) (models.Account, bool) {
	m.mu.Lock()
	account := m.account
	m.mu.Unlock()

	if account.ID != 0 {
		return account, true
	}

	account, err := m.accounts.Current(ctx)
	if err != nil {
		return models.Account{}, false
	}

	m.mu.Lock()
	m.account = account
	m.mu.Unlock()

	return account, true
}

// shouldConnect is the single gating predicate. Pending data deliberately
// overrides the idle timer so a user action syncs promptly instead of
// waiting out the idle window.
func (m *lifecycleManager) shouldConnect(account models.Account, hasPending, connected bool) bool {
	if account.ID == 0 || !account.LiveSync {
		return false
	}
	if !m.reachability.IsAvailable() {
		return false
	}
	if connected {
		return false
	}
	if hasPending {
		return true
	}
	return m.idleElapsed()
}

func (m *lifecycleManager) idleElapsed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastSync.IsZero() {
		return true
	}
	return time.Since(m.lastSync) >= m.idleInterval
}

// startSync launches a differential round and consumes its events. Idle
// triggers run a round too: downloading server deltas is the whole point of
// connecting with nothing pending.
func (m *lifecycleManager) startSync(ctx context.Context) {
	events := m.driver.RunDifferential(ctx)

	go func() {
		for event := range events {
			if event.Kind == models.SyncSuccess {
				m.noteSyncSuccess()
			}
		}
		if summary, err := m.pending.Summary(context.Background()); err == nil {
			m.publishSummary(summary)
		}
	}()
}

// TriggerDataSync implements [LifecycleManager]. The stream is teed so the
// manager observes the terminal event (for the last-sync clock) while the
// caller gets every event.
func (m *lifecycleManager) TriggerDataSync(ctx context.Context) <-chan models.SyncResult {
	source := m.driver.RunDifferential(ctx)
	out := make(chan models.SyncResult, 8)

	go func() {
		defer close(out)
		for event := range source {
			if event.Kind == models.SyncSuccess {
				m.noteSyncSuccess()
			}
			out <- event
		}
	}()

	return out
}

func (m *lifecycleManager) noteSyncSuccess() {
	m.mu.Lock()
	m.lastSync = time.Now()
	m.mu.Unlock()
}

// SetIdleInterval implements [LifecycleManager]. The new value takes effect
// immediately: the running loop resets its timer instead of finishing the
// old period first.
func (m *lifecycleManager) SetIdleInterval(interval time.Duration) {
	clamped := config.ClampIdleInterval(interval)

	m.mu.Lock()
	m.idleInterval = clamped
	m.mu.Unlock()

	select {
	case m.intervalCh <- clamped:
	default:
		select {
		case <-m.intervalCh:
		default:
		}
		select {
		case m.intervalCh <- clamped:
		default:
		}
	}

	m.logger.Info().
		Str("func", "lifecycleManager.SetIdleInterval").
		Dur("interval", clamped).
		Msg("idle interval changed")
}

func (m *lifecycleManager) currentIdleInterval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idleInterval
}

func (m *lifecycleManager) isForeground() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.foreground
}

// watchSession forwards one transport session's state observations to the
// subscribers until the session stream closes.
func (m *lifecycleManager) watchSession(states <-chan models.ConnectionState) {
	for state := range states {
		m.setConnState(state)
	}
}

func (m *lifecycleManager) setConnState(state models.ConnectionState) {
	m.mu.Lock()
	m.connState = state
	subs := m.connSubs
	m.mu.Unlock()

	for _, ch := range subs {
		publishLatest(ch, state)
	}
}

func (m *lifecycleManager) publishSummary(summary models.PendingSummary) {
	m.mu.Lock()
	subs := m.summarySubs
	m.mu.Unlock()

	for _, ch := range subs {
		publishLatest(ch, summary)
	}
}

// ConnectionStates implements [LifecycleManager].
func (m *lifecycleManager) ConnectionStates() <-chan models.ConnectionState {
	ch := make(chan models.ConnectionState, 1)

	m.mu.Lock()
	ch <- m.connState
	m.connSubs = append(m.connSubs, ch)
	m.mu.Unlock()

	return ch
}

// PendingSummaries implements [LifecycleManager].
func (m *lifecycleManager) PendingSummaries() <-chan models.PendingSummary {
	ch := make(chan models.PendingSummary, 1)

	m.mu.Lock()
	m.summarySubs = append(m.summarySubs, ch)
	m.mu.Unlock()

	return ch
}

// Status implements [LifecycleManager].
func (m *lifecycleManager) Status() EngineStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	return EngineStatus{
		Connection: m.connState,
		LastSyncAt: m.lastSync,
		Refreshing: m.driver.IsRefreshing(),
		Foreground: m.foreground,
	}
}

// publishLatest delivers value with latest-value semantics: an unread stale
// value is replaced rather than queued behind.
func publishLatest[T any](ch chan T, value T) {
	select {
	case ch <- value:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- value:
		default:
		}
	}
}
