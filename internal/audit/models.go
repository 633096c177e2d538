// Package audit records what administrators did to the entitlement matrix:
// toggles, rollbacks, and batch saves. The trail is advisory; a failure to
// record never affects matrix state.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action labels what happened to the matrix.
type Action string

const (
	ActionToggle       Action = "cell_toggled"
	ActionRollback     Action = "toggle_rolled_back"
	ActionBatchSaved   Action = "batch_saved"
	ActionBatchFailed  Action = "batch_failed"
	ActionProductSwap  Action = "product_switched"
	ActionSnapshotLoad Action = "snapshot_loaded"
)

// Event is one audit trail entry.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	ProductID string    `json:"product_id"`
	ItemID    string    `json:"item_id,omitempty"`
	PackageID string    `json:"package_id,omitempty"`
	Enabled   *bool     `json:"enabled,omitempty"`
	CellCount int       `json:"cell_count,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByProduct(ctx context.Context, productID string) ([]Event, error)
}
