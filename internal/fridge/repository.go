package fridge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository persists per-user inventory snapshots and shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new fridge repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// SaveSnapshot replaces the stored inventory for a user with the given items.
func (r *Repository) SaveSnapshot(ctx context.Context, userID string, items []Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fridge_items WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear fridge items: %w", err)
	}

	for _, item := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO fridge_items (user_id, name, quantity, days_remaining, original_freshness_days, added_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			userID, item.Name, item.Quantity, item.DaysRemaining, item.OriginalFreshnessDays, item.AddedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert fridge item %s: %w", item.Name, err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the stored inventory for a user.
func (r *Repository) LoadSnapshot(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, quantity, days_remaining, original_freshness_days, added_at
		 FROM fridge_items WHERE user_id = ? ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query fridge items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.Name, &item.Quantity, &item.DaysRemaining, &item.OriginalFreshnessDays, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fridge item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveShoppingList stores an aggregated shopping list for a plan.
func (r *Repository) SaveShoppingList(ctx context.Context, userID, planID string, list []ShoppingItem) error {
	itemsJSON, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (user_id, plan_id, items, created_at) VALUES (?, ?, ?, ?)`,
		userID, planID, string(itemsJSON), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert shopping list: %w", err)
	}
	return nil
}

// GetShoppingList retrieves the most recent shopping list for a plan.
// Returns (nil, nil) when none exists.
func (r *Repository) GetShoppingList(ctx context.Context, planID string) ([]ShoppingItem, error) {
	var itemsJSON string
	err := r.db.QueryRowContext(ctx,
		`SELECT items FROM shopping_lists WHERE plan_id = ? ORDER BY created_at DESC LIMIT 1`,
		planID,
	).Scan(&itemsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}

	var items []ShoppingItem
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	return items, nil
}
