package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/logistik-admin-api/internal/models"
)

func TestListByRange(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeAttendanceRepository(db)

	start := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"employee_id", "employee_name", "date", "status"}).
		AddRow(1, "A", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), "PRESENT").
		AddRow(2, "B", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN employee_attendances ea ON ea.employee_id = e.id AND ea.deleted_at IS NULL AND ea.date BETWEEN $1 AND $2")).
		WithArgs(start, end).
		WillReturnRows(rows)

	result, err := repo.ListByRange(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.NotNil(t, result[0].Status)
	assert.Equal(t, models.AttendanceStatusPresent, *result[0].Status)
	assert.Nil(t, result[1].Date)
	assert.Nil(t, result[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchUpsertRestoresDeletedRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeAttendanceRepository(db)

	date := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("VALUES ($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12)\nON CONFLICT (date, employee_id)\nDO UPDATE SET status = EXCLUDED.status, period_id = EXCLUDED.period_id, updated_at = EXCLUDED.updated_at, deleted_at = NULL")).
		WithArgs(date, models.AttendanceStatusPresent, 1, 9, sqlmock.AnyArg(), sqlmock.AnyArg(),
			date, models.AttendanceStatusSick, 2, 9, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.BatchUpsert(context.Background(), nil, []models.EmployeeAttendance{
		{Date: date, Status: models.AttendanceStatusPresent, EmployeeID: 1, PeriodID: 9},
		{Date: date, Status: models.AttendanceStatusSick, EmployeeID: 2, PeriodID: 9},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchUpsertEmptyIsNoop(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeAttendanceRepository(db)

	require.NoError(t, repo.BatchUpsert(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteByDatesInTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE employee_attendances SET deleted_at = $1, updated_at = $1 WHERE date = ANY($2::date[]) AND deleted_at IS NULL")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	affected, err := repo.SoftDeleteByDates(context.Background(), tx, []time.Time{time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteByDatesError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEmployeeAttendanceRepository(db)

	mock.ExpectExec("UPDATE employee_attendances").WillReturnError(errors.New("boom"))

	_, err := repo.SoftDeleteByDates(context.Background(), nil, []time.Time{time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soft delete attendance by dates")
}
