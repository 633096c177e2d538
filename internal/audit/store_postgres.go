package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists the audit trail in the matrix_audit table. The lib/pq
// driver is registered by main.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	var enabled sql.NullBool
	if event.Enabled != nil {
		enabled = sql.NullBool{Bool: *event.Enabled, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matrix_audit
			(id, occurred_at, action, product_id, item_id, package_id, enabled, cell_count, detail, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, event.Timestamp, string(event.Action), event.ProductID,
		event.ItemID, event.PackageID, enabled, event.CellCount, event.Detail, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByProduct(ctx context.Context, productID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, occurred_at, action, product_id, item_id, package_id, enabled, cell_count, detail, request_id
		FROM matrix_audit
		WHERE product_id = $1
		ORDER BY occurred_at`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			event    Event
			id       uuid.UUID
			occurred time.Time
			action   string
			enabled  sql.NullBool
		)
		if err := rows.Scan(&id, &occurred, &action, &event.ProductID, &event.ItemID,
			&event.PackageID, &enabled, &event.CellCount, &event.Detail, &event.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.ID = id
		event.Timestamp = occurred
		event.Action = Action(action)
		if enabled.Valid {
			v := enabled.Bool
			event.Enabled = &v
		}
		out = append(out, event)
	}
	return out, rows.Err()
}
