package models

import "time"

// EmployeeRole is the job function of an employee.
type EmployeeRole string

const (
	EmployeeRoleWarehouseHead EmployeeRole = "WAREHOUSE_HEAD"
	EmployeeRoleSales         EmployeeRole = "SALES"
	EmployeeRoleDriver        EmployeeRole = "DRIVER"
	EmployeeRoleHelper        EmployeeRole = "HELPER"
	EmployeeRoleTreasurer     EmployeeRole = "TREASURER"
	EmployeeRoleStaff         EmployeeRole = "STAFF"
)

// Valid returns true when the role is a supported value.
func (r EmployeeRole) Valid() bool {
	switch r {
	case EmployeeRoleWarehouseHead, EmployeeRoleSales, EmployeeRoleDriver, EmployeeRoleHelper, EmployeeRoleTreasurer, EmployeeRoleStaff:
		return true
	default:
		return false
	}
}

// RequiresSupervisor reports roles that report to a sales employee.
func (r EmployeeRole) RequiresSupervisor() bool {
	return r == EmployeeRoleDriver || r == EmployeeRoleHelper
}

// Employee represents a row of the employees table.
type Employee struct {
	ID           int          `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	Salary       float64      `db:"salary" json:"salary"`
	Role         EmployeeRole `db:"role" json:"role"`
	JoinDate     time.Time    `db:"join_date" json:"joinDate"`
	SupervisorID *int         `db:"supervisor_id" json:"supervisorId,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
	DeletedAt    *time.Time   `db:"deleted_at" json:"-"`
}

// EmployeeFilter captures list filters.
type EmployeeFilter struct {
	Search    string
	Roles     []EmployeeRole
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
