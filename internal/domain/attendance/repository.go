package attendance

import (
	"context"
	"time"
)

// RangeData is everything the payroll engine reads from the attendance
// subsystem for one pay period.
type RangeData struct {
	Logs      []Log
	Schedules []EmployeeSchedule
	Statuses  DayStatuses
}

// AttendanceRepository defines read access to attendance data.
type AttendanceRepository interface {
	// GetRange returns logs, schedules and per-date statuses for
	// [start, end] inclusive.
	GetRange(ctx context.Context, start, end time.Time) (RangeData, error)
}
