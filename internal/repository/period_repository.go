package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/logistik-admin-api/internal/models"
)

const periodColumns = "id, type, start_date, end_date, week_number, month, year, is_active, is_closed, closed_by, closed_at, created_at, updated_at"

// PeriodRepository provides database access for payroll periods.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository creates a new instance of PeriodRepository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

func (r *PeriodRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindWeeklyByStartDate returns the weekly period starting on the given date.
// It returns sql.ErrNoRows when none exists.
func (r *PeriodRepository) FindWeeklyByStartDate(ctx context.Context, exec sqlx.ExtContext, start time.Time) (*models.Period, error) {
	query := fmt.Sprintf("SELECT %s FROM periods WHERE type = $1 AND start_date = $2 LIMIT 1", periodColumns)
	var period models.Period
	if err := sqlx.GetContext(ctx, r.exec(exec), &period, query, models.PeriodTypeWeekly, start); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find weekly period: %w", err)
	}
	return &period, nil
}

// Create inserts a period, returning the stored row. A concurrent insert for
// the same weekly start resolves to the existing row.
func (r *PeriodRepository) Create(ctx context.Context, exec sqlx.ExtContext, period *models.Period) (*models.Period, error) {
	now := time.Now().UTC()
	period.CreatedAt = now
	period.UpdatedAt = now
	query := fmt.Sprintf(`INSERT INTO periods (type, start_date, end_date, week_number, month, year, is_active, is_closed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (type, start_date) DO UPDATE SET updated_at = periods.updated_at
RETURNING %s`, periodColumns)
	var stored models.Period
	if err := sqlx.GetContext(ctx, r.exec(exec), &stored, query,
		period.Type, period.StartDate, period.EndDate, period.WeekNumber, period.Month, period.Year,
		period.IsActive, period.IsClosed, period.CreatedAt, period.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create period: %w", err)
	}
	return &stored, nil
}

// Close marks the period closed by the given user.
func (r *PeriodRepository) Close(ctx context.Context, id int, closedBy string, closedAt time.Time) error {
	const query = `UPDATE periods SET is_closed = TRUE, closed_by = $2, closed_at = $3, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, closedBy, closedAt); err != nil {
		return fmt.Errorf("close period: %w", err)
	}
	return nil
}
