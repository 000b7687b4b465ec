package dto

// CreateUserRequest is the payload for registering a system user.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"required,numeric,max=15"`
	Role     string `json:"role" validate:"required,oneof=SUPER_ADMIN OWNER WAREHOUSE_HEAD TREASURER"`
}

// UpdateUserRequest changes a system user. Empty fields keep their value.
type UpdateUserRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Phone    string `json:"phone" validate:"omitempty,numeric,max=15"`
	Role     string `json:"role" validate:"omitempty,oneof=SUPER_ADMIN OWNER WAREHOUSE_HEAD TREASURER"`
}

// UserListQuery captures list filters for GET /users.
type UserListQuery struct {
	Search    string   `form:"search"`
	Roles     []string `form:"roles[]"`
	Page      int      `form:"page"`
	PerPage   int      `form:"perPage"`
	SortBy    string   `form:"sortBy"`
	SortOrder string   `form:"sortOrder"`
}
