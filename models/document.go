package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentCategory names one of the outbox-eligible document kinds the device
// produces while offline.
type DocumentCategory string

const (
	CategoryOrders    DocumentCategory = "orders"
	CategoryCash      DocumentCategory = "cash"
	CategoryImages    DocumentCategory = "images"
	CategoryLocations DocumentCategory = "locations"
)

// Categories lists every outbox category in upload order. Within one sync
// round uploads proceed category-by-category in exactly this order.
func Categories() []DocumentCategory {
	return []DocumentCategory{CategoryOrders, CategoryCash, CategoryImages, CategoryLocations}
}

// DeliveryState is the per-document sync lifecycle. It replaces the legacy
// processed/sent/local/modified flag combinations with a closed set so that
// illegal combinations cannot be stored.
type DeliveryState string

const (
	// StateEditing means the user has not finalized the document yet.
	// Documents in this state must never appear in an upload batch.
	StateEditing DeliveryState = "editing"

	// StatePending means the document is finalized and awaits server
	// acknowledgement.
	StatePending DeliveryState = "pending"

	// StateDelivered means the server has acknowledged the document.
	StateDelivered DeliveryState = "delivered"
)

// Document is the slice of an outbox-eligible record the sync engine is
// allowed to see: identity, ownership and delivery state. Business content
// travels as an opaque payload and is never interpreted here.
type Document struct {
	// ID is the client-side identifier (UUID) assigned at creation. The
	// server upserts by this ID, which is what makes retries idempotent.
	ID string `json:"id"`

	// AccountID scopes the document to its owning account. Documents never
	// cross accounts.
	AccountID int64 `json:"account_id"`

	// Category tells which outbox the document belongs to.
	Category DocumentCategory `json:"category"`

	// State is the delivery lifecycle position.
	State DeliveryState `json:"state"`

	// Payload is the serialized business content, opaque to the engine.
	Payload []byte `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDocument mints a document in the editing state with a fresh client-side
// ID. Time-ordered v7 IDs keep the outbox roughly insertion-ordered on the
// server side; the random fallback only matters on a broken clock.
func NewDocument(accountID int64, category DocumentCategory, payload []byte) Document {
	id, err := uuid.NewV7()
	idStr := id.String()
	if err != nil {
		idStr = uuid.NewString()
	}

	now := time.Now()
	return Document{
		ID:        idStr,
		AccountID: accountID,
		Category:  category,
		State:     StateEditing,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Pending reports whether the document is a sync candidate.
func (d Document) Pending() bool {
	return d.State == StatePending
}
