package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dan9191/market-planner/internal/models"
)

// ErrDraftNotFound is returned when the owner has no stored draft
var ErrDraftNotFound = errors.New("draft not found")

const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS planner;

CREATE TABLE IF NOT EXISTS planner.drafts (
	owner      TEXT PRIMARY KEY,
	draft_id   UUID NOT NULL,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS planner.draft_paid_items (
	owner    TEXT NOT NULL REFERENCES planner.drafts(owner) ON DELETE CASCADE,
	item_key TEXT NOT NULL,
	paid_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (owner, item_key)
);`

// Repository stores draft schedules and their paid-item overlay
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the planner schema if it does not exist
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveDraft replaces the owner's draft and clears its paid-item overlay
func (r *Repository) SaveDraft(ctx context.Context, draft *models.Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM planner.draft_paid_items WHERE owner = $1`, draft.Owner); err != nil {
		return fmt.Errorf("failed to clear paid items: %w", err)
	}
	query := `
		INSERT INTO planner.drafts (owner, draft_id, payload, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (owner) DO UPDATE
		SET draft_id = EXCLUDED.draft_id, payload = EXCLUDED.payload, updated_at = CURRENT_TIMESTAMP`
	if _, err := tx.ExecContext(ctx, query, draft.Owner, draft.ID, payload); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit draft: %w", err)
	}
	return nil
}

// FindDraft retrieves the owner's draft
func (r *Repository) FindDraft(ctx context.Context, owner string) (*models.Draft, error) {
	var payload []byte
	query := `
		SELECT payload
		FROM planner.drafts
		WHERE owner = $1`
	err := r.db.QueryRowContext(ctx, query, owner).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find draft: %w", err)
	}

	draft := &models.Draft{}
	if err := json.Unmarshal(payload, draft); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return draft, nil
}

// DeleteDraft removes the owner's draft and its paid items
func (r *Repository) DeleteDraft(ctx context.Context, owner string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM planner.draft_paid_items WHERE owner = $1`, owner); err != nil {
		return fmt.Errorf("failed to delete paid items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM planner.drafts WHERE owner = $1`, owner); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// MarkItemPaid flags a draft item as paid. Flagging twice is a no-op.
func (r *Repository) MarkItemPaid(ctx context.Context, owner, itemKey string) error {
	query := `
		INSERT INTO planner.draft_paid_items (owner, item_key, paid_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (owner, item_key) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, owner, itemKey); err != nil {
		return fmt.Errorf("failed to mark item paid: %w", err)
	}
	return nil
}

// PaidItems returns the set of paid item keys for the owner
func (r *Repository) PaidItems(ctx context.Context, owner string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT item_key
		FROM planner.draft_paid_items
		WHERE owner = $1`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query paid items: %w", err)
	}
	defer rows.Close()

	paid := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan paid item: %w", err)
		}
		paid[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read paid items: %w", err)
	}
	return paid, nil
}
