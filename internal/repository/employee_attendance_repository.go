package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/logistik-admin-api/internal/models"
)

// EmployeeAttendanceRepository handles persistence for employee attendance records.
type EmployeeAttendanceRepository struct {
	db *sqlx.DB
}

// NewEmployeeAttendanceRepository constructs the repository.
func NewEmployeeAttendanceRepository(db *sqlx.DB) *EmployeeAttendanceRepository {
	return &EmployeeAttendanceRepository{db: db}
}

func (r *EmployeeAttendanceRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByRange returns every employee who joined on or before end, each row
// carrying one attendance record within [start, end]. Employees without
// records appear once with nil date and status.
func (r *EmployeeAttendanceRepository) ListByRange(ctx context.Context, start, end time.Time) ([]models.AttendanceRow, error) {
	const query = `SELECT e.id AS employee_id, e.name AS employee_name, ea.date, ea.status
FROM employees e
LEFT JOIN employee_attendances ea ON ea.employee_id = e.id AND ea.deleted_at IS NULL AND ea.date BETWEEN $1 AND $2
WHERE e.deleted_at IS NULL AND e.join_date <= $2
ORDER BY e.name ASC, e.id ASC, ea.date ASC`
	var rows []models.AttendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, start, end); err != nil {
		return nil, fmt.Errorf("list attendance by range: %w", err)
	}
	return rows, nil
}

// BatchUpsert writes records in a single statement. Conflicting rows on
// (date, employee_id) are updated and restored when soft-deleted.
func (r *EmployeeAttendanceRepository) BatchUpsert(ctx context.Context, exec sqlx.ExtContext, records []models.EmployeeAttendance) error {
	if len(records) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	placeholders := make([]string, 0, len(records))
	args := make([]interface{}, 0, len(records)*6)
	for i := range records {
		rec := &records[i]
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		base := len(args)
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, rec.Date, rec.Status, rec.EmployeeID, rec.PeriodID, rec.CreatedAt, rec.UpdatedAt)
	}

	query := `INSERT INTO employee_attendances (date, status, employee_id, period_id, created_at, updated_at)
VALUES ` + strings.Join(placeholders, ", ") + `
ON CONFLICT (date, employee_id)
DO UPDATE SET status = EXCLUDED.status, period_id = EXCLUDED.period_id, updated_at = EXCLUDED.updated_at, deleted_at = NULL`
	if _, err := target.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("batch upsert attendance: %w", err)
	}
	return nil
}

// SoftDeleteByDates marks every record on the given dates as deleted.
func (r *EmployeeAttendanceRepository) SoftDeleteByDates(ctx context.Context, exec sqlx.ExtContext, dates []time.Time) (int64, error) {
	if len(dates) == 0 {
		return 0, nil
	}
	target := r.exec(exec)
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, d.Format("2006-01-02"))
	}
	const query = `UPDATE employee_attendances SET deleted_at = $1, updated_at = $1 WHERE date = ANY($2::date[]) AND deleted_at IS NULL`
	res, err := target.ExecContext(ctx, query, time.Now().UTC(), pq.Array(keys))
	if err != nil {
		return 0, fmt.Errorf("soft delete attendance by dates: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("soft delete attendance rows affected: %w", err)
	}
	return affected, nil
}
