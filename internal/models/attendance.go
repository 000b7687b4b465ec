package models

import "time"

// AttendanceStatus mirrors the absen_status enum in the database.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusLeave   AttendanceStatus = "LEAVE"
	AttendanceStatusSick    AttendanceStatus = "SICK"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLeave, AttendanceStatusSick, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// EmployeeAttendance represents one row of employee_attendances. The pair
// (date, employee_id) is unique, soft-deleted rows included.
type EmployeeAttendance struct {
	ID         int              `db:"id" json:"id"`
	Date       time.Time        `db:"date" json:"date"`
	Status     AttendanceStatus `db:"status" json:"status"`
	EmployeeID int              `db:"employee_id" json:"employeeId"`
	PeriodID   int              `db:"period_id" json:"periodId"`
	CreatedAt  time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updatedAt"`
	DeletedAt  *time.Time       `db:"deleted_at" json:"-"`
}

// AttendanceRow is an employee joined with one of their attendance records
// in a date range. Date and Status are nil for employees without records.
type AttendanceRow struct {
	EmployeeID   int               `db:"employee_id"`
	EmployeeName string            `db:"employee_name"`
	Date         *time.Time        `db:"date"`
	Status       *AttendanceStatus `db:"status"`
}
