package dto

// EmployeeRequest is the payload for creating or updating an employee.
type EmployeeRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Salary       float64 `json:"salary" validate:"gte=0"`
	Role         string  `json:"role" validate:"required,oneof=WAREHOUSE_HEAD SALES DRIVER HELPER TREASURER STAFF"`
	JoinDate     string  `json:"joinDate" validate:"omitempty,datetime=2006-01-02"`
	SupervisorID *int    `json:"supervisorId" validate:"omitempty,gt=0"`
}

// EmployeeListQuery captures list filters for GET /employees.
type EmployeeListQuery struct {
	Search    string   `form:"search"`
	Roles     []string `form:"roles[]"`
	Page      int      `form:"page"`
	PerPage   int      `form:"perPage"`
	SortBy    string   `form:"sortBy"`
	SortOrder string   `form:"sortOrder"`
}
