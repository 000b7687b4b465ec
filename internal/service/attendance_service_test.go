package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/logistik-admin-api/internal/dto"
	"github.com/noah-isme/logistik-admin-api/internal/models"
	appErrors "github.com/noah-isme/logistik-admin-api/pkg/errors"
)

type attendanceRepoStub struct {
	rows        []models.AttendanceRow
	listErr     error
	listCalls   int
	upserted    []models.EmployeeAttendance
	deleted     []time.Time
	upsertErr   error
	upsertExecs []sqlx.ExtContext
}

func (s *attendanceRepoStub) ListByRange(ctx context.Context, start, end time.Time) ([]models.AttendanceRow, error) {
	s.listCalls++
	return s.rows, s.listErr
}

func (s *attendanceRepoStub) BatchUpsert(ctx context.Context, exec sqlx.ExtContext, records []models.EmployeeAttendance) error {
	s.upsertExecs = append(s.upsertExecs, exec)
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, records...)
	return nil
}

func (s *attendanceRepoStub) SoftDeleteByDates(ctx context.Context, exec sqlx.ExtContext, dates []time.Time) (int64, error) {
	s.deleted = append(s.deleted, dates...)
	return int64(len(dates) * 2), nil
}

type periodResolverStub struct {
	periods map[string]*models.Period
	created int
}

func (p *periodResolverStub) FindWeekly(ctx context.Context, exec sqlx.ExtContext, date time.Time) (*models.Period, error) {
	info := CalculateWeekInfo(date)
	return p.periods[info.StartDate.Format("2006-01-02")], nil
}

func (p *periodResolverStub) GetOrCreateWeekly(ctx context.Context, exec sqlx.ExtContext, date time.Time) (*models.Period, error) {
	if period, _ := p.FindWeekly(ctx, exec, date); period != nil {
		return period, nil
	}
	if p.periods == nil {
		p.periods = map[string]*models.Period{}
	}
	p.created++
	info := CalculateWeekInfo(date)
	period := &models.Period{ID: 100 + p.created, StartDate: info.StartDate}
	p.periods[info.StartDate.Format("2006-01-02")] = period
	return period, nil
}

func newAttendanceServiceForTest(t *testing.T, repo *attendanceRepoStub, periods *periodResolverStub) (*AttendanceService, sqlmock.Sqlmock, *memoryCacheRepo) {
	t.Helper()
	tx, mock := newTxProviderMock(t)
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewAttendanceService(repo, periods, tx, cache, NewMetricsService(), nil, zap.NewNop(), AttendanceConfig{Location: time.UTC})
	return svc, mock, cacheRepo
}

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

func statusPtr(s models.AttendanceStatus) *models.AttendanceStatus { return &s }

func datePtr(t *testing.T, key string) *time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", key)
	require.NoError(t, err)
	return &d
}

func TestAttendanceServiceWeeklyGroupsAndCaches(t *testing.T) {
	repo := &attendanceRepoStub{rows: []models.AttendanceRow{
		{EmployeeID: 1, EmployeeName: "Andi", Date: datePtr(t, "2025-01-06"), Status: statusPtr(models.AttendanceStatusPresent)},
		{EmployeeID: 1, EmployeeName: "Andi", Date: datePtr(t, "2025-01-07"), Status: statusPtr(models.AttendanceStatusSick)},
		{EmployeeID: 2, EmployeeName: "Budi"},
	}}
	svc, _, _ := newAttendanceServiceForTest(t, repo, &periodResolverStub{})
	req := dto.WeeklyAttendanceRequest{StartDate: "2025-01-05", EndDate: "2025-01-11"}

	result, hit, err := svc.Weekly(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, result, 2)
	assert.Equal(t, []dto.AttendanceRecord{{Date: "2025-01-06", Status: "PRESENT"}, {Date: "2025-01-07", Status: "SICK"}}, result[0].AttendanceRecords)
	assert.NotNil(t, result[1].AttendanceRecords)
	assert.Empty(t, result[1].AttendanceRecords)

	cached, hit, err := svc.Weekly(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, result, cached)
	assert.Equal(t, 1, repo.listCalls)
}

func TestAttendanceServiceWeeklyValidation(t *testing.T) {
	svc, _, _ := newAttendanceServiceForTest(t, &attendanceRepoStub{}, &periodResolverStub{})
	cases := []dto.WeeklyAttendanceRequest{
		{StartDate: "2025-01-05"},
		{StartDate: "05-01-2025", EndDate: "2025-01-11"},
		{StartDate: "2025-01-11", EndDate: "2025-01-05"},
		{StartDate: "2025-01-01", EndDate: "2025-02-01"},
	}
	for _, req := range cases {
		_, _, err := svc.Weekly(context.Background(), req)
		require.Error(t, err, "%+v", req)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}

	_, _, err := svc.Weekly(context.Background(), dto.WeeklyAttendanceRequest{StartDate: "2025-01-01", EndDate: "2025-01-31"})
	assert.NoError(t, err)
}

func TestAttendanceServiceWeeklyRepositoryError(t *testing.T) {
	svc, _, _ := newAttendanceServiceForTest(t, &attendanceRepoStub{listErr: errors.New("db down")}, &periodResolverStub{})

	_, _, err := svc.Weekly(context.Background(), dto.WeeklyAttendanceRequest{StartDate: "2025-01-05", EndDate: "2025-01-11"})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceBatchAppliesAndInvalidates(t *testing.T) {
	repo := &attendanceRepoStub{}
	periods := &periodResolverStub{}
	svc, mock, cacheRepo := newAttendanceServiceForTest(t, repo, periods)
	require.NoError(t, cacheRepo.Set(context.Background(), "attendance:weekly:2025-01-05:2025-01-11", []string{}, time.Minute))

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Batch(context.Background(), dto.BatchAttendanceRequest{Attendances: []dto.BatchAttendanceOperation{
		{Date: "2025-01-06", Action: "update", Employees: []dto.BatchAttendanceEmployee{{ID: 1, Status: "PRESENT"}, {ID: 2, Status: "LEAVE"}}},
		{Date: "2025-01-07", Action: "delete", Employees: []dto.BatchAttendanceEmployee{}},
		{Date: "2025-01-13", Action: "update", Employees: []dto.BatchAttendanceEmployee{{ID: 1, Status: "ABSENT"}}},
	}})
	require.NoError(t, err)
	assert.Equal(t, &dto.BatchAttendanceResult{Message: "Absensi berhasil disimpan", Updated: 2, Deleted: 1}, result)

	require.Len(t, repo.upserted, 3)
	assert.Equal(t, 101, repo.upserted[0].PeriodID)
	assert.Equal(t, models.AttendanceStatusLeave, repo.upserted[1].Status)
	assert.Equal(t, 102, repo.upserted[2].PeriodID)
	require.Len(t, repo.deleted, 1)
	assert.Equal(t, "2025-01-07", repo.deleted[0].Format("2006-01-02"))
	assert.Equal(t, 2, periods.created)
	assert.Equal(t, 0, cacheRepo.len())
	require.Len(t, repo.upsertExecs, 1)
	assert.NotNil(t, repo.upsertExecs[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceServiceBatchRejectsClosedPeriod(t *testing.T) {
	repo := &attendanceRepoStub{}
	periods := &periodResolverStub{periods: map[string]*models.Period{
		"2025-01-05": {ID: 7, IsClosed: true},
	}}
	svc, mock, _ := newAttendanceServiceForTest(t, repo, periods)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Batch(context.Background(), dto.BatchAttendanceRequest{Attendances: []dto.BatchAttendanceOperation{
		{Date: "2025-01-08", Action: "delete", Employees: []dto.BatchAttendanceEmployee{}},
	}})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPeriodClosed.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
	assert.Contains(t, appErr.Message, "2025-01-08")
	assert.Empty(t, repo.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceServiceBatchRollsBackOnWriteFailure(t *testing.T) {
	repo := &attendanceRepoStub{upsertErr: errors.New("constraint")}
	svc, mock, cacheRepo := newAttendanceServiceForTest(t, repo, &periodResolverStub{})
	require.NoError(t, cacheRepo.Set(context.Background(), "attendance:weekly:a:b", 1, time.Minute))

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Batch(context.Background(), dto.BatchAttendanceRequest{Attendances: []dto.BatchAttendanceOperation{
		{Date: "2025-01-06", Action: "update", Employees: []dto.BatchAttendanceEmployee{{ID: 1, Status: "PRESENT"}}},
	}})
	require.Error(t, err)
	assert.Equal(t, 1, cacheRepo.len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceServiceBatchValidation(t *testing.T) {
	svc, _, _ := newAttendanceServiceForTest(t, &attendanceRepoStub{}, &periodResolverStub{})
	update := func(date string, employees ...dto.BatchAttendanceEmployee) dto.BatchAttendanceOperation {
		return dto.BatchAttendanceOperation{Date: date, Action: "update", Employees: employees}
	}
	present := dto.BatchAttendanceEmployee{ID: 1, Status: "PRESENT"}

	cases := map[string]dto.BatchAttendanceRequest{
		"empty":            {},
		"bad action":       {Attendances: []dto.BatchAttendanceOperation{{Date: "2025-01-06", Action: "upsert"}}},
		"bad status":       {Attendances: []dto.BatchAttendanceOperation{update("2025-01-06", dto.BatchAttendanceEmployee{ID: 1, Status: "LATE"})}},
		"bad date":         {Attendances: []dto.BatchAttendanceOperation{update("06/01/2025", present)}},
		"update no rows":   {Attendances: []dto.BatchAttendanceOperation{update("2025-01-06")}},
		"delete with rows": {Attendances: []dto.BatchAttendanceOperation{{Date: "2025-01-06", Action: "delete", Employees: []dto.BatchAttendanceEmployee{present}}}},
		"duplicate date":   {Attendances: []dto.BatchAttendanceOperation{update("2025-01-06", present), update("2025-01-06", present)}},
		"duplicate id":     {Attendances: []dto.BatchAttendanceOperation{update("2025-01-06", present, present)}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Batch(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}
