package service

import "errors"

var (
	// ErrSyncInFlight is wrapped into log messages when a round is refused
	// because another one is running. Never delivered as a stream event:
	// the refused stream simply closes without emitting.
	ErrSyncInFlight = errors.New("sync round already in flight")

	// ErrNoAccountConfigured marks operations that need a current account
	// when none is set. Most callers treat it as "nothing to do".
	ErrNoAccountConfigured = errors.New("no account configured")
)
