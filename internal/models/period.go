package models

import "time"

// PeriodType distinguishes payroll periods.
type PeriodType string

const (
	PeriodTypeWeekly  PeriodType = "WEEKLY"
	PeriodTypeMonthly PeriodType = "MONTHLY"
)

// Period groups attendance by week. Closed periods are read-only.
type Period struct {
	ID         int        `db:"id" json:"id"`
	Type       PeriodType `db:"type" json:"type"`
	StartDate  time.Time  `db:"start_date" json:"startDate"`
	EndDate    time.Time  `db:"end_date" json:"endDate"`
	WeekNumber int        `db:"week_number" json:"weekNumber"`
	Month      int        `db:"month" json:"month"`
	Year       int        `db:"year" json:"year"`
	IsActive   bool       `db:"is_active" json:"isActive"`
	IsClosed   bool       `db:"is_closed" json:"isClosed"`
	ClosedBy   *string    `db:"closed_by" json:"closedBy,omitempty"`
	ClosedAt   *time.Time `db:"closed_at" json:"closedAt,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}

// WeekInfo is the computed placement of a week inside a month.
type WeekInfo struct {
	StartDate  time.Time
	EndDate    time.Time
	WeekNumber int
	Month      int
	Year       int
}
