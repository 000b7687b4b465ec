package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/logistik-admin-api/internal/attendance"
	"github.com/noah-isme/logistik-admin-api/internal/dto"
	"github.com/noah-isme/logistik-admin-api/internal/models"
	appErrors "github.com/noah-isme/logistik-admin-api/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	FindByID(ctx context.Context, id int) (*models.Employee, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	SoftDelete(ctx context.Context, id int) error
	CountSubordinates(ctx context.Context, supervisorID int) (int, error)
}

// EmployeeService implements employee management. Roster changes invalidate
// cached weekly attendance.
type EmployeeService struct {
	repo      employeeRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	location  *time.Location
	now       func() time.Time
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(repo employeeRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, location *time.Location) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if location == nil {
		location = time.Local
	}
	return &EmployeeService{repo: repo, cache: cache, validator: validate, logger: logger, location: location, now: time.Now}
}

// List returns employees with pagination metadata.
func (s *EmployeeService) List(ctx context.Context, query dto.EmployeeListQuery) ([]models.Employee, *models.Pagination, error) {
	filter := models.EmployeeFilter{
		Search:    strings.TrimSpace(query.Search),
		Page:      query.Page,
		PageSize:  query.PerPage,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	for _, raw := range query.Roles {
		role := models.EmployeeRole(strings.ToUpper(strings.TrimSpace(raw)))
		if !role.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "role tidak dikenal: "+raw)
		}
		filter.Roles = append(filter.Roles, role)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	return employees, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns an employee by ID.
func (s *EmployeeService) Get(ctx context.Context, id int) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "karyawan tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// Create registers a new employee.
func (s *EmployeeService) Create(ctx context.Context, req dto.EmployeeRequest) (*models.Employee, error) {
	employee := &models.Employee{}
	if err := s.apply(ctx, employee, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	s.invalidateRoster(ctx)
	s.logger.Info("employee created", zap.Int("employee_id", employee.ID), zap.String("role", string(employee.Role)))
	return employee, nil
}

// Update modifies an employee. A sales employee with subordinates keeps the role.
func (s *EmployeeService) Update(ctx context.Context, id int, req dto.EmployeeRequest) (*models.Employee, error) {
	employee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldRole := employee.Role
	if err := s.apply(ctx, employee, req); err != nil {
		return nil, err
	}
	if employee.SupervisorID != nil && *employee.SupervisorID == id {
		return nil, appErrors.Clone(appErrors.ErrValidation, "karyawan tidak dapat menjadi atasan dirinya sendiri")
	}
	if oldRole == models.EmployeeRoleSales && employee.Role != models.EmployeeRoleSales {
		if err := s.ensureNoSubordinates(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	s.invalidateRoster(ctx)
	return employee, nil
}

// Delete soft-deletes an employee without subordinates.
func (s *EmployeeService) Delete(ctx context.Context, id int) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.ensureNoSubordinates(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employee")
	}
	s.invalidateRoster(ctx)
	s.logger.Info("employee deleted", zap.Int("employee_id", id))
	return nil
}

func (s *EmployeeService) apply(ctx context.Context, employee *models.Employee, req dto.EmployeeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "data karyawan tidak valid")
	}
	role := models.EmployeeRole(req.Role)

	joinDate := employee.JoinDate
	if req.JoinDate != "" {
		parsed, err := attendance.ParseDateKey(req.JoinDate, s.location)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "joinDate tidak valid")
		}
		joinDate = parsed
	}
	if joinDate.IsZero() {
		now := s.now().In(s.location)
		joinDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	}

	var supervisorID *int
	if role.RequiresSupervisor() {
		if req.SupervisorID == nil {
			return appErrors.Clone(appErrors.ErrValidation, "supervisorId wajib diisi untuk DRIVER dan HELPER")
		}
		supervisor, err := s.repo.FindByID(ctx, *req.SupervisorID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, "atasan tidak ditemukan")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load supervisor")
		}
		if supervisor.Role != models.EmployeeRoleSales {
			return appErrors.Clone(appErrors.ErrValidation, "atasan harus karyawan dengan role SALES")
		}
		id := supervisor.ID
		supervisorID = &id
	}

	employee.Name = strings.TrimSpace(req.Name)
	employee.Salary = req.Salary
	employee.Role = role
	employee.JoinDate = joinDate
	employee.SupervisorID = supervisorID
	return nil
}

func (s *EmployeeService) ensureNoSubordinates(ctx context.Context, id int) error {
	count, err := s.repo.CountSubordinates(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count subordinates")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrValidation, "Sales masih memiliki bawahan")
	}
	return nil
}

func (s *EmployeeService) invalidateRoster(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, weeklyCachePattern); err != nil {
		s.logger.Warn("weekly attendance cache not invalidated", zap.Error(err))
	}
}
