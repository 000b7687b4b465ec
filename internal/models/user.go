package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin    UserRole = "SUPER_ADMIN"
	RoleOwner         UserRole = "OWNER"
	RoleWarehouseHead UserRole = "WAREHOUSE_HEAD"
	RoleTreasurer     UserRole = "TREASURER"
)

// Valid returns true when the role is a supported value.
func (r UserRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleOwner, RoleWarehouseHead, RoleTreasurer:
		return true
	default:
		return false
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Username     string     `db:"username" json:"username"`
	Phone        string     `db:"phone" json:"phone"`
	PasswordHash string     `db:"password" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`
}

// UserFilter captures list filters for system users.
type UserFilter struct {
	Search    string
	Roles     []UserRole
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
