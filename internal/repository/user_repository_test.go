package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/logistik-admin-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestFindByUsername(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "username", "phone", "password", "role", "created_at", "updated_at", "deleted_at"}).
		AddRow("u-1", "Budi", "budi", "0812", "hash", string(models.RoleWarehouseHead), now, now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, username, phone, password, role, created_at, updated_at, deleted_at FROM users WHERE username = $1 AND deleted_at IS NULL LIMIT 1")).
		WithArgs("budi").
		WillReturnRows(rows)

	user, err := repo.FindByUsername(context.Background(), "budi")
	require.NoError(t, err)
	assert.Equal(t, "budi", user.Username)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.Equal(t, models.RoleWarehouseHead, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUsernameNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("FROM users WHERE username").WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePassword(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("u-1", "new-hash", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), "u-1", "new-hash", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "username", "phone", "password", "role", "created_at", "updated_at", "deleted_at"}).
		AddRow("u-2", "Sari", "sari", "0813", "hash", string(models.RoleOwner), now, now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, username, phone, password, role, created_at, updated_at, deleted_at FROM users WHERE deleted_at IS NULL AND (LOWER(name) LIKE $1 OR LOWER(username) LIKE $1) AND role::text = ANY($2) ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("%sa%", sqlmock.AnyArg()).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND (LOWER(name) LIKE $1 OR LOWER(username) LIKE $1) AND role::text = ANY($2)")).
		WithArgs("%sa%", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := repo.List(context.Background(), models.UserFilter{
		Search:    "Sa",
		Roles:     []models.UserRole{models.RoleOwner},
		SortBy:    "created_at",
		SortOrder: "desc",
	})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "sari", users[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCountByUsername(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE LOWER(username) = LOWER($1)")).
		WithArgs("budi").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE LOWER(username) = LOWER($1) AND id <> $2")).
		WithArgs("budi", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := repo.CountByUsername(context.Background(), "budi", "")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = repo.CountByUsername(context.Background(), "budi", "u-1")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateUpdateDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Sari", "sari", "0813", "hash", models.RoleTreasurer, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-9"))
	mock.ExpectExec("UPDATE users SET name = .+ WHERE id = .+ AND deleted_at IS NULL").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs("u-9", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{Name: "Sari", Username: "sari", Phone: "0813", PasswordHash: "hash", Role: models.RoleTreasurer}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, "u-9", user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	user.Name = "Sari Dewi"
	require.NoError(t, repo.Update(context.Background(), user))
	require.NoError(t, repo.SoftDelete(context.Background(), "u-9"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
