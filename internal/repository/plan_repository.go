package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

const currentPlanSlot = "current"

// PostgresPlanRepository keeps the latest seating plan in one row of
// seating_plans as a JSONB payload.
type PostgresPlanRepository struct {
	db *sqlx.DB
}

// NewPostgresPlanRepository constructs the repository.
func NewPostgresPlanRepository(db *sqlx.DB) *PostgresPlanRepository {
	return &PostgresPlanRepository{db: db}
}

// EnsureSchema creates the backing table when absent.
func (r *PostgresPlanRepository) EnsureSchema(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS seating_plans (
    slot TEXT PRIMARY KEY,
    plan_id TEXT NOT NULL,
    payload JSONB NOT NULL,
    generated_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure seating_plans schema: %w", err)
	}
	return nil
}

// Save replaces the current plan.
func (r *PostgresPlanRepository) Save(ctx context.Context, plan *models.SeatingPlan) error {
	if plan == nil {
		return fmt.Errorf("save seating plan: plan is nil")
	}
	const query = `INSERT INTO seating_plans (slot, plan_id, payload, generated_at, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (slot)
DO UPDATE SET plan_id = EXCLUDED.plan_id, payload = EXCLUDED.payload,
              generated_at = EXCLUDED.generated_at, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, currentPlanSlot, plan.ID, plan, plan.GeneratedAt); err != nil {
		return fmt.Errorf("save seating plan: %w", err)
	}
	return nil
}

// Load returns the current plan or ErrPlanNotFound.
func (r *PostgresPlanRepository) Load(ctx context.Context) (*models.SeatingPlan, error) {
	const query = `SELECT payload FROM seating_plans WHERE slot = $1`
	var plan models.SeatingPlan
	if err := r.db.QueryRowxContext(ctx, query, currentPlanSlot).Scan(&plan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("load seating plan: %w", err)
	}
	return &plan, nil
}

// Clear removes the current plan. Clearing an empty store succeeds.
func (r *PostgresPlanRepository) Clear(ctx context.Context) error {
	const query = `DELETE FROM seating_plans WHERE slot = $1`
	if _, err := r.db.ExecContext(ctx, query, currentPlanSlot); err != nil {
		return fmt.Errorf("clear seating plan: %w", err)
	}
	return nil
}
