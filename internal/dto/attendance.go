package dto

// WeeklyAttendanceRequest captures query parameters for GET /attendance.
type WeeklyAttendanceRequest struct {
	StartDate string `form:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `form:"endDate" validate:"required,datetime=2006-01-02"`
}

// AttendanceRecord is one stored status of an employee.
type AttendanceRecord struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// EmployeeAttendanceResponse groups the records of one employee in a range.
type EmployeeAttendanceResponse struct {
	ID                int                `json:"id"`
	Name              string             `json:"name"`
	AttendanceRecords []AttendanceRecord `json:"attendanceRecords"`
}

// BatchAttendanceEmployee is one employee entry of an update operation.
type BatchAttendanceEmployee struct {
	ID     int    `json:"id" validate:"required,gt=0"`
	Status string `json:"status" validate:"required,oneof=PRESENT LEAVE SICK ABSENT"`
}

// BatchAttendanceOperation updates or deletes the attendance of one date.
type BatchAttendanceOperation struct {
	Date      string                    `json:"date" validate:"required,datetime=2006-01-02"`
	Action    string                    `json:"action" validate:"required,oneof=update delete"`
	Employees []BatchAttendanceEmployee `json:"employees" validate:"dive"`
}

// BatchAttendanceRequest is the body of POST /attendance/batch.
type BatchAttendanceRequest struct {
	Attendances []BatchAttendanceOperation `json:"attendances" validate:"required,min=1,dive"`
}

// BatchAttendanceResult summarises an applied batch.
type BatchAttendanceResult struct {
	Message string `json:"message"`
	Updated int    `json:"updated"`
	Deleted int    `json:"deleted"`
}

// ExportAttendanceRequest captures query parameters for GET /attendance/export.
type ExportAttendanceRequest struct {
	Date   string `form:"date" validate:"required,datetime=2006-01-02"`
	Format string `form:"format" validate:"omitempty,oneof=csv pdf xlsx"`
}

// ClosePeriodRequest closes the weekly period containing Date.
type ClosePeriodRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}
