// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport layer between the device agent and
// the remote sync server.
//
// The primary abstraction is [Transport], which decouples the sync engine
// from the wire protocol. The package ships an HTTP/REST implementation
// ([NewHTTPTransport]) that holds a session with the server and reports its
// health as a stream of [models.ConnectionState] observations.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-field-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/transport_mock.go -package=mock

// Transport defines protocol-agnostic communication with the sync server.
// Implementations own the connection state completely: reconnection, backoff
// and request timeouts happen here, never in the engine. The engine only
// observes the state stream and decides when a connection is warranted at
// all.
type Transport interface {
	// Connect opens a live session for account and returns a latest-value
	// stream of connection state observations. The stream emits the
	// current state immediately, then on every change, and closes after
	// Disconnect. Calling Connect while a session is open tears the old
	// session down first.
	Connect(ctx context.Context, account models.Account) (<-chan models.ConnectionState, error)

	// Disconnect closes the live session, releases the socket and closes
	// the state stream. Safe to call when not connected.
	Disconnect()

	// IsConnected reports whether the session is currently established.
	IsConnected() bool

	// UploadDocuments delivers one category's pending documents. The
	// server upserts by document ID, so retrying a round that failed
	// mid-upload cannot duplicate anything. All-or-nothing per call:
	// an error means the engine must treat the whole category as not
	// delivered.
	UploadDocuments(ctx context.Context, category models.DocumentCategory, docs []models.Document) error

	// DownloadChanges fetches reference-data batches changed since cursor.
	// An empty cursor fetches the complete catalog (full sync).
	DownloadChanges(ctx context.Context, cursor string) ([]models.CatalogBatch, error)
}
