package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/logistik-admin-api/internal/attendance"
	"github.com/noah-isme/logistik-admin-api/internal/dto"
	"github.com/noah-isme/logistik-admin-api/internal/models"
	appErrors "github.com/noah-isme/logistik-admin-api/pkg/errors"
)

const (
	weeklyCachePrefix  = "attendance:weekly:"
	weeklyCachePattern = weeklyCachePrefix + "*"
	batchSavedMessage  = attendance.DefaultSuccessMessage
)

type employeeAttendanceRepository interface {
	ListByRange(ctx context.Context, start, end time.Time) ([]models.AttendanceRow, error)
	BatchUpsert(ctx context.Context, exec sqlx.ExtContext, records []models.EmployeeAttendance) error
	SoftDeleteByDates(ctx context.Context, exec sqlx.ExtContext, dates []time.Time) (int64, error)
}

type weeklyPeriodResolver interface {
	FindWeekly(ctx context.Context, exec sqlx.ExtContext, date time.Time) (*models.Period, error)
	GetOrCreateWeekly(ctx context.Context, exec sqlx.ExtContext, date time.Time) (*models.Period, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// AttendanceConfig tunes the attendance service.
type AttendanceConfig struct {
	CacheTTL     time.Duration
	MaxRangeDays int
	Location     *time.Location
}

// AttendanceService serves weekly baselines and applies attendance batches.
type AttendanceService struct {
	repo      employeeAttendanceRepository
	periods   weeklyPeriodResolver
	tx        txProvider
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AttendanceConfig
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo employeeAttendanceRepository, periods weeklyPeriodResolver, tx txProvider, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg AttendanceConfig) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 31
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &AttendanceService{
		repo:      repo,
		periods:   periods,
		tx:        tx,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Location returns the zone used for civil dates.
func (s *AttendanceService) Location() *time.Location {
	return s.cfg.Location
}

// Weekly returns every employee who joined on or before endDate with their
// records in [startDate, endDate]. The boolean reports a cache hit.
func (s *AttendanceService) Weekly(ctx context.Context, req dto.WeeklyAttendanceRequest) ([]dto.EmployeeAttendanceResponse, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "startDate dan endDate wajib diisi dengan format YYYY-MM-DD")
	}
	start, err := attendance.ParseDateKey(req.StartDate, s.cfg.Location)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "startDate tidak valid")
	}
	end, err := attendance.ParseDateKey(req.EndDate, s.cfg.Location)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "endDate tidak valid")
	}
	if end.Before(start) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "startDate harus sebelum atau sama dengan endDate")
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > s.cfg.MaxRangeDays {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("rentang tanggal maksimal %d hari", s.cfg.MaxRangeDays))
	}

	key := weeklyCachePrefix + req.StartDate + ":" + req.EndDate
	var cached []dto.EmployeeAttendanceResponse
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	queryStart := time.Now()
	rows, err := s.repo.ListByRange(ctx, start, end)
	s.metrics.ObserveDBQuery("attendance_list_range", time.Since(queryStart))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	result := groupAttendanceRows(rows)
	_ = s.cache.Set(ctx, key, result, s.cfg.CacheTTL)
	return result, false, nil
}

// groupAttendanceRows folds joined rows into one entry per employee, keeping
// the repository order.
func groupAttendanceRows(rows []models.AttendanceRow) []dto.EmployeeAttendanceResponse {
	result := make([]dto.EmployeeAttendanceResponse, 0)
	index := make(map[int]int)
	for _, row := range rows {
		pos, ok := index[row.EmployeeID]
		if !ok {
			pos = len(result)
			index[row.EmployeeID] = pos
			result = append(result, dto.EmployeeAttendanceResponse{
				ID:                row.EmployeeID,
				Name:              row.EmployeeName,
				AttendanceRecords: []dto.AttendanceRecord{},
			})
		}
		if row.Date == nil || row.Status == nil {
			continue
		}
		result[pos].AttendanceRecords = append(result[pos].AttendanceRecords, dto.AttendanceRecord{
			Date:   row.Date.Format(attendance.DateLayout),
			Status: string(*row.Status),
		})
	}
	return result
}

type parsedOperation struct {
	date   time.Time
	action attendance.Action
	op     dto.BatchAttendanceOperation
}

// Batch applies a set of per-date operations in one transaction. Updates
// upsert every listed employee. Deletes soft-delete every record of the date.
// Dates inside closed periods are rejected.
func (s *AttendanceService) Batch(ctx context.Context, req dto.BatchAttendanceRequest) (*dto.BatchAttendanceResult, error) {
	ops, err := s.validateBatch(req)
	if err != nil {
		s.metrics.RecordAttendanceBatch(BatchResultInvalid, 0, 0)
		return nil, err
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		records     []models.EmployeeAttendance
		deleteDates []time.Time
		updated     int
	)
	for _, op := range ops {
		switch op.action {
		case attendance.ActionUpdate:
			period, err := s.periods.GetOrCreateWeekly(ctx, tx, op.date)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve period")
			}
			if period.IsClosed {
				s.metrics.RecordAttendanceBatch(BatchResultRejected, 0, 0)
				return nil, closedPeriodError(op.op.Date)
			}
			for _, emp := range op.op.Employees {
				records = append(records, models.EmployeeAttendance{
					Date:       op.date,
					Status:     models.AttendanceStatus(emp.Status),
					EmployeeID: emp.ID,
					PeriodID:   period.ID,
				})
			}
			updated++
		case attendance.ActionDelete:
			period, err := s.periods.FindWeekly(ctx, tx, op.date)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve period")
			}
			if period != nil && period.IsClosed {
				s.metrics.RecordAttendanceBatch(BatchResultRejected, 0, 0)
				return nil, closedPeriodError(op.op.Date)
			}
			deleteDates = append(deleteDates, op.date)
		}
	}

	if err := s.repo.BatchUpsert(ctx, tx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	removed, err := s.repo.SoftDeleteByDates(ctx, tx, deleteDates)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit attendance")
	}
	committed = true

	if err := s.cache.Invalidate(ctx, weeklyCachePattern); err != nil {
		s.logger.Warn("weekly attendance cache not invalidated", zap.Error(err))
	}
	s.metrics.RecordAttendanceBatch(BatchResultSuccess, updated, len(deleteDates))
	s.logger.Info("attendance batch applied",
		zap.Int("updated_dates", updated),
		zap.Int("deleted_dates", len(deleteDates)),
		zap.Int("records_written", len(records)),
		zap.Int64("records_removed", removed),
	)

	return &dto.BatchAttendanceResult{Message: batchSavedMessage, Updated: updated, Deleted: len(deleteDates)}, nil
}

func (s *AttendanceService) validateBatch(req dto.BatchAttendanceRequest) ([]parsedOperation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "data absensi tidak valid")
	}
	seen := make(map[string]struct{}, len(req.Attendances))
	ops := make([]parsedOperation, 0, len(req.Attendances))
	for _, op := range req.Attendances {
		if _, dup := seen[op.Date]; dup {
			return nil, batchError(op.Date, "tanggal muncul lebih dari sekali")
		}
		seen[op.Date] = struct{}{}

		date, err := attendance.ParseDateKey(op.Date, s.cfg.Location)
		if err != nil {
			return nil, batchError(op.Date, "format tanggal tidak valid")
		}
		action := attendance.Action(op.Action)
		switch action {
		case attendance.ActionUpdate:
			if len(op.Employees) == 0 {
				return nil, batchError(op.Date, "semua karyawan harus memiliki status")
			}
			ids := make(map[int]struct{}, len(op.Employees))
			for _, emp := range op.Employees {
				if _, dup := ids[emp.ID]; dup {
					return nil, batchError(op.Date, fmt.Sprintf("karyawan %d muncul lebih dari sekali", emp.ID))
				}
				ids[emp.ID] = struct{}{}
			}
		case attendance.ActionDelete:
			if len(op.Employees) > 0 {
				return nil, batchError(op.Date, "operasi hapus tidak boleh berisi karyawan")
			}
		}
		ops = append(ops, parsedOperation{date: date, action: action, op: op})
	}
	return ops, nil
}

func batchError(date, message string) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Tanggal %s: %s", date, message))
}

func closedPeriodError(date string) error {
	return appErrors.Clone(appErrors.ErrPeriodClosed, fmt.Sprintf("Tanggal %s: periode sudah ditutup", date))
}
