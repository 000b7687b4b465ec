package dto

import "github.com/noah-isme/logistik-admin-api/internal/attendance"

// BaselineFromWeekly converts the weekly response into an editor baseline.
// Unknown statuses are skipped.
func BaselineFromWeekly(rows []EmployeeAttendanceResponse) *attendance.Baseline {
	roster := make([]attendance.Employee, 0, len(rows))
	for _, row := range rows {
		roster = append(roster, attendance.Employee{ID: row.ID, Name: row.Name})
	}
	baseline := attendance.NewBaseline(roster)
	for _, row := range rows {
		for _, record := range row.AttendanceRecords {
			status := attendance.Status(record.Status)
			if !status.Valid() {
				continue
			}
			baseline.Set(record.Date, row.ID, status)
		}
	}
	return baseline
}
