package service

import (
	"context"
	"database/sql"
	"errors"
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

type periodRepository interface {
	FindWeeklyByStartDate(ctx context.Context, exec sqlx.ExtContext, start time.Time) (*models.Period, error)
	Create(ctx context.Context, exec sqlx.ExtContext, period *models.Period) (*models.Period, error)
	Close(ctx context.Context, id int, closedBy string, closedAt time.Time) error
}

// PeriodService manages weekly payroll periods.
type PeriodService struct {
	repo      periodRepository
	validator *validator.Validate
	logger    *zap.Logger
	location  *time.Location
	now       func() time.Time
}

// NewPeriodService constructs a PeriodService.
func NewPeriodService(repo periodRepository, validate *validator.Validate, logger *zap.Logger, location *time.Location) *PeriodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if location == nil {
		location = time.Local
	}
	return &PeriodService{repo: repo, validator: validate, logger: logger, location: location, now: time.Now}
}

// CalculateWeekInfo places the Sunday-to-Saturday week containing date in its
// month. Week one starts on the first Sunday of the month of the week start.
func CalculateWeekInfo(date time.Time) models.WeekInfo {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 6)

	firstOfMonth := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	firstSunday := firstOfMonth.AddDate(0, 0, (7-int(firstOfMonth.Weekday()))%7)
	week := int(start.Sub(firstSunday).Hours()/24)/7 + 1

	return models.WeekInfo{
		StartDate:  start,
		EndDate:    end,
		WeekNumber: week,
		Month:      int(start.Month()),
		Year:       start.Year(),
	}
}

// FindWeekly returns the weekly period containing date, or nil when none has
// been created yet.
func (s *PeriodService) FindWeekly(ctx context.Context, exec sqlx.ExtContext, date time.Time) (*models.Period, error) {
	info := CalculateWeekInfo(date)
	period, err := s.repo.FindWeeklyByStartDate(ctx, exec, info.StartDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return period, nil
}

// GetOrCreateWeekly returns the weekly period containing date, creating it when missing.
func (s *PeriodService) GetOrCreateWeekly(ctx context.Context, exec sqlx.ExtContext, date time.Time) (*models.Period, error) {
	period, err := s.FindWeekly(ctx, exec, date)
	if err != nil {
		return nil, err
	}
	if period != nil {
		return period, nil
	}

	info := CalculateWeekInfo(date)
	created, err := s.repo.Create(ctx, exec, &models.Period{
		Type:       models.PeriodTypeWeekly,
		StartDate:  info.StartDate,
		EndDate:    info.EndDate,
		WeekNumber: info.WeekNumber,
		Month:      info.Month,
		Year:       info.Year,
		IsActive:   true,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("weekly period created",
		zap.Int("period_id", created.ID),
		zap.String("start_date", attendance.DateKey(info.StartDate)),
		zap.Int("week_number", info.WeekNumber),
		zap.Int("month", info.Month),
	)
	return created, nil
}

// Get returns the weekly period containing the given date key.
func (s *PeriodService) Get(ctx context.Context, date string) (*models.Period, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}
	period, err := s.FindWeekly(ctx, nil, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	if period == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "periode belum dibuat")
	}
	return period, nil
}

// Close closes the weekly period containing the requested date. Closed periods
// reject further attendance changes.
func (s *PeriodService) Close(ctx context.Context, req dto.ClosePeriodRequest, closedBy string) (*models.Period, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "tanggal wajib diisi dengan format YYYY-MM-DD")
	}
	day, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	period, err := s.GetOrCreateWeekly(ctx, nil, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve period")
	}
	if period.IsClosed {
		return nil, appErrors.Clone(appErrors.ErrPeriodClosed, "")
	}

	closedAt := s.now().UTC()
	if err := s.repo.Close(ctx, period.ID, closedBy, closedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close period")
	}
	period.IsClosed = true
	period.ClosedBy = &closedBy
	period.ClosedAt = &closedAt
	s.logger.Info("period closed", zap.Int("period_id", period.ID), zap.String("closed_by", closedBy))
	return period, nil
}

func (s *PeriodService) parseDate(value string) (time.Time, error) {
	day, err := attendance.ParseDateKey(value, s.location)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("tanggal %q tidak valid", value))
	}
	return day, nil
}
