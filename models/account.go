package models

import "time"

// Account identifies the remote endpoint and credentials the device is
// currently provisioned for. Exactly one account is marked current at a time;
// switching the current account invalidates all in-flight connection state.
type Account struct {
	// ID is the local identifier of the account row.
	ID int64 `json:"id"`

	// RemoteID is the identifier the server knows this installation by.
	RemoteID string `json:"remote_id"`

	// Name is the human-readable label shown in the device UI.
	Name string `json:"name"`

	// ServerURL is the base URL of the remote sync endpoint.
	ServerURL string `json:"server_url"`

	// Token is the last session token issued for this account, possibly
	// expired. The transport revalidates it before reuse.
	Token string `json:"-"`

	// LiveSync reports whether this account is configured to hold a live
	// connection. When false the engine never connects on behalf of the
	// account and the periodic job is the only delivery path.
	LiveSync bool `json:"live_sync"`

	// Current marks the account the engine is operating for.
	Current bool `json:"current"`

	CreatedAt time.Time `json:"created_at"`
}
