package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// StoredPlan pairs a plan with its persistence metadata.
type StoredPlan struct {
	Plan      *Plan
	CreatedAt time.Time
}

// PlanRepository is a database-backed repository for meal plans.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save inserts a new version of a meal plan.
func (r *PlanRepository) Save(ctx context.Context, plan *Plan) error {
	planData, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO meal_plans (plan_id, user_id, plan_data, created_at) VALUES (?, ?, ?, ?)`,
		plan.ID, plan.UserID, planData, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert meal plan: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recently saved plan for a user.
func (r *PlanRepository) GetLatest(ctx context.Context, userID string) (*Plan, error) {
	var planData []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT plan_data FROM meal_plans WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID,
	).Scan(&planData)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get latest plan for user %s: %w", userID, err)
	}

	var plan Plan
	if err := json.Unmarshal(planData, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &plan, nil
}

// ListRecent retrieves the N most recent plans for a user, newest first.
func (r *PlanRepository) ListRecent(ctx context.Context, userID string, limit int) ([]StoredPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT plan_data, created_at FROM meal_plans WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	var plans []StoredPlan
	for rows.Next() {
		var planData []byte
		var createdAt time.Time
		if err := rows.Scan(&planData, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}

		var plan Plan
		if err := json.Unmarshal(planData, &plan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
		}
		plans = append(plans, StoredPlan{Plan: &plan, CreatedAt: createdAt})
	}
	return plans, rows.Err()
}
