package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/models"
)

type httpTransport struct {
	client            *resty.Client
	heartbeatInterval time.Duration
	logger            *logger.Logger

	mu        sync.Mutex
	token     string
	connected bool
	states    chan models.ConnectionState
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewHTTPTransport constructs an HTTP/REST implementation of [Transport].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying resty client with the resolved base URL, request
// timeout, and a small retry budget for transient failures.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as
// a valid URL.
func NewHTTPTransport(adapterCfg config.AgentAdapter, logger *logger.Logger) (Transport, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &httpTransport{
		client:            client,
		heartbeatInterval: adapterCfg.HeartbeatInterval,
		logger:            logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

type sessionRequest struct {
	RemoteID string `json:"remote_id"`
}

type sessionResponse struct {
	Token string `json:"token"`
}

type uploadRequest struct {
	Documents []models.Document `json:"documents"`
	Length    int               `json:"length"`
}

type changesResponse struct {
	Batches []models.CatalogBatch `json:"batches"`
}

// Connect implements [Transport]. It tears down any previous session, opens
// a new one for account, and returns a latest-value stream of connection
// state observations. The heartbeat goroutine keeps the session alive and
// downgrades the state on ping failures; re-established pings upgrade it
// back without engine involvement.
func (t *httpTransport) Connect(ctx context.Context, account models.Account) (<-chan models.ConnectionState, error) {
	t.Disconnect()

	t.mu.Lock()
	t.states = make(chan models.ConnectionState, 1)
	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t.cancel = cancel
	states := t.states
	t.mu.Unlock()

	t.publish(models.ConnectionState{Phase: models.ConnectionConnecting})

	if err := t.openSession(ctx, account); err != nil {
		t.logger.Err(err).
			Str("func", "httpTransport.Connect").
			Str("remote_id", account.RemoteID).
			Msg("failed to open session")
		t.publish(models.ConnectionState{Phase: models.ConnectionFailed, Reason: err.Error()})
		return states, err
	}

	t.mu.Lock()
	t.connected = true
	t.mu.Unlock()
	t.publish(models.ConnectionState{Phase: models.ConnectionConnected})

	t.wg.Add(1)
	go t.heartbeat(sessionCtx)

	return states, nil
}

// openSession reuses the account's stored token while it is still valid and
// requests a fresh one otherwise.
func (t *httpTransport) openSession(ctx context.Context, account models.Account) error {
	if tokenUsable(account.Token) {
		t.mu.Lock()
		t.token = account.Token
		t.mu.Unlock()
		return nil
	}

	var session sessionResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sessionRequest{RemoteID: account.RemoteID}).
		SetResult(&session).
		Post("/api/session")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	if session.Token == "" {
		// a 2xx without a token is not an open session; every later
		// request would go out unauthenticated
		return fmt.Errorf("open session: empty token in response")
	}

	t.mu.Lock()
	t.token = session.Token
	t.mu.Unlock()

	return nil
}

// tokenUsable reports whether token parses as a JWT whose expiry is at least
// a minute away. Signature verification is the server's job; the check only
// avoids sending a token we already know is dead.
func tokenUsable(token string) bool {
	if token == "" {
		return false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return time.Until(exp.Time) > time.Minute
}

func (t *httpTransport) heartbeat(ctx context.Context) {
	defer t.wg.Done()

	interval := t.heartbeatInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resp, err := t.client.R().
				SetContext(ctx).
				SetAuthToken(t.currentToken()).
				Get("/api/ping")

			if err == nil {
				err = mapHTTPError(resp)
			}

			t.mu.Lock()
			wasConnected := t.connected
			t.connected = err == nil
			t.mu.Unlock()

			switch {
			case err != nil && wasConnected:
				t.logger.Warn().
					Str("func", "httpTransport.heartbeat").
					Err(err).
					Msg("session heartbeat failed")
				t.publish(models.ConnectionState{Phase: models.ConnectionFailed, Reason: err.Error()})
			case err == nil && !wasConnected:
				t.publish(models.ConnectionState{Phase: models.ConnectionConnected})
			}
		}
	}
}

// Disconnect implements [Transport].
func (t *httpTransport) Disconnect() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.wg.Wait()

	t.mu.Lock()
	wasOpen := t.states != nil
	if wasOpen {
		t.connected = false
		t.token = ""
	}
	states := t.states
	t.states = nil
	t.mu.Unlock()

	if wasOpen {
		drainAndClose(states, models.ConnectionState{Phase: models.ConnectionDisconnected})
	}
}

// IsConnected implements [Transport].
func (t *httpTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// UploadDocuments implements [Transport].
func (t *httpTransport) UploadDocuments(ctx context.Context, category models.DocumentCategory, docs []models.Document) error {
	if !t.IsConnected() {
		return ErrNotConnected
	}
	if len(docs) == 0 {
		return nil
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(t.currentToken()).
		SetBody(uploadRequest{Documents: docs, Length: len(docs)}).
		Post("/api/outbox/" + string(category))
	if err != nil {
		return fmt.Errorf("upload %s request: %w: %w", category, ErrServerUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return fmt.Errorf("upload %s: %w", category, err)
	}

	return nil
}

// DownloadChanges implements [Transport].
func (t *httpTransport) DownloadChanges(ctx context.Context, cursor string) ([]models.CatalogBatch, error) {
	if !t.IsConnected() {
		return nil, ErrNotConnected
	}

	var changes changesResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetAuthToken(t.currentToken()).
		SetQueryParam("cursor", cursor).
		SetResult(&changes).
		Get("/api/changes")
	if err != nil {
		return nil, fmt.Errorf("download changes request: %w: %w", ErrServerUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, fmt.Errorf("download changes: %w", err)
	}

	return changes.Batches, nil
}

func (t *httpTransport) currentToken() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

// publish delivers st with latest-value semantics: an unread older
// observation is dropped rather than buffered.
func (t *httpTransport) publish(st models.ConnectionState) {
	t.mu.Lock()
	states := t.states
	t.mu.Unlock()

	if states == nil {
		return
	}

	for {
		select {
		case states <- st:
			return
		default:
			select {
			case <-states:
			default:
			}
		}
	}
}

func drainAndClose(states chan models.ConnectionState, final models.ConnectionState) {
	select {
	case <-states:
	default:
	}
	states <- final
	close(states)
}
