// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-field-sync/models"
)

// All builders use the default question-mark placeholder format, which is
// what go-sqlite3 expects.

func buildCountPendingQuery(category models.DocumentCategory, accountID int64) (string, []any, error) {
	return sq.Select("COUNT(*)").
		From("documents").
		Where(sq.Eq{
			"account_id": accountID,
			"category":   string(category),
			"state":      string(models.StatePending),
		}).
		ToSql()
}

func buildListPendingQuery(category models.DocumentCategory, accountID int64) (string, []any, error) {
	return sq.Select("id", "account_id", "category", "state", "payload", "created_at", "updated_at").
		From("documents").
		Where(sq.Eq{
			"account_id": accountID,
			"category":   string(category),
			"state":      string(models.StatePending),
		}).
		OrderBy("created_at ASC").
		ToSql()
}

// buildMarkDeliveredQuery targets a single document. The state guard keeps a
// document that was re-opened for editing mid-round from being stamped
// delivered.
func buildMarkDeliveredQuery(category models.DocumentCategory, id string, now time.Time) (string, []any, error) {
	return sq.Update("documents").
		Set("state", string(models.StateDelivered)).
		Set("updated_at", now).
		Where(sq.Eq{
			"id":       id,
			"category": string(category),
			"state":    string(models.StatePending),
		}).
		ToSql()
}

func buildSaveDocumentQuery(doc models.Document) (string, []any, error) {
	return sq.Insert("documents").
		Options("OR REPLACE").
		Columns("id", "account_id", "category", "state", "payload", "created_at", "updated_at").
		Values(doc.ID, doc.AccountID, string(doc.Category), string(doc.State), doc.Payload, doc.CreatedAt, doc.UpdatedAt).
		ToSql()
}

func buildDeleteDocumentQuery(id string) (string, []any, error) {
	return sq.Delete("documents").
		Where(sq.Eq{"id": id}).
		ToSql()
}

const (
	getCurrentAccount = `
		SELECT id, remote_id, name, server_url, token, live_sync, current, created_at
		FROM accounts
		WHERE current = 1
		LIMIT 1;`

	clearCurrentAccount = `UPDATE accounts SET current = 0 WHERE current = 1;`

	setCurrentAccount = `UPDATE accounts SET current = 1 WHERE id = ?;`

	upsertAccount = `
		INSERT INTO accounts (remote_id, name, server_url, token, live_sync, current, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (remote_id) DO UPDATE SET
			name       = excluded.name,
			server_url = excluded.server_url,
			live_sync  = excluded.live_sync;`

	getAccountByRemoteID = `
		SELECT id, remote_id, name, server_url, token, live_sync, current, created_at
		FROM accounts
		WHERE remote_id = ?;`

	updateAccountToken = `UPDATE accounts SET token = ? WHERE id = ?;`

	getCheckpoint = `
		SELECT account_id, cursor, synced_at
		FROM checkpoints
		WHERE account_id = ?;`

	putCheckpoint = `
		INSERT INTO checkpoints (account_id, cursor, synced_at)
		VALUES (?, ?, ?)
		ON CONFLICT (account_id) DO UPDATE SET
			cursor    = excluded.cursor,
			synced_at = excluded.synced_at;`

	clearCheckpoint = `DELETE FROM checkpoints WHERE account_id = ?;`
)
