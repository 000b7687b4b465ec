package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/logistik-admin-api/internal/dto"
	"github.com/noah-isme/logistik-admin-api/internal/models"
	appErrors "github.com/noah-isme/logistik-admin-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	CountByUsername(ctx context.Context, username, excludeID string) (int, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SoftDelete(ctx context.Context, id string) error
}

// UserService manages the accounts that sign in to the admin API.
// SUPER_ADMIN accounts can only be granted or changed by a SUPER_ADMIN.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns users with pagination metadata.
func (s *UserService) List(ctx context.Context, query dto.UserListQuery) ([]models.User, *models.Pagination, error) {
	filter := models.UserFilter{
		Search:    strings.TrimSpace(query.Search),
		Page:      query.Page,
		PageSize:  query.PerPage,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	for _, raw := range query.Roles {
		role := models.UserRole(strings.ToUpper(strings.TrimSpace(raw)))
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

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}
	return users, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pengguna tidak ditemukan")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create registers a new user on behalf of actor.
func (s *UserService) Create(ctx context.Context, req dto.CreateUserRequest, actor models.UserInfo) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "data pengguna tidak valid")
	}
	role := models.UserRole(req.Role)
	if err := guardSuperAdmin(actor, role); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)
	if err := s.ensureUsernameFree(ctx, username, ""); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Username:     username,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(role)), zap.String("actor_id", actor.ID))
	return user, nil
}

// Update changes the non-empty fields of req on user id.
func (s *UserService) Update(ctx context.Context, id string, req dto.UpdateUserRequest, actor models.UserInfo) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "data pengguna tidak valid")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guardSuperAdmin(actor, user.Role); err != nil {
		return nil, err
	}

	if req.Role != "" && models.UserRole(req.Role) != user.Role {
		role := models.UserRole(req.Role)
		if actor.ID == user.ID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "tidak dapat mengubah role akun sendiri")
		}
		if err := guardSuperAdmin(actor, role); err != nil {
			return nil, err
		}
		user.Role = role
	}
	if username := strings.TrimSpace(req.Username); username != "" && username != user.Username {
		if err := s.ensureUsernameFree(ctx, username, user.ID); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	s.logger.Info("user updated", zap.String("user_id", user.ID), zap.String("actor_id", actor.ID))
	return user, nil
}

// Delete soft-deletes user id. Users cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, id string, actor models.UserInfo) error {
	if id == actor.ID {
		return appErrors.Clone(appErrors.ErrValidation, "tidak dapat menghapus akun sendiri")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := guardSuperAdmin(actor, user.Role); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("actor_id", actor.ID))
	return nil
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username, excludeID string) error {
	count, err := s.repo.CountByUsername(ctx, username, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Username %s sudah digunakan", username))
	}
	return nil
}

func guardSuperAdmin(actor models.UserInfo, role models.UserRole) error {
	if role == models.RoleSuperAdmin && actor.Role != models.RoleSuperAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "hanya SUPER_ADMIN yang dapat mengelola akun SUPER_ADMIN")
	}
	return nil
}
