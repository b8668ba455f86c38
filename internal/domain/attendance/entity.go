package attendance

import (
	"time"
)

// DateLayout is the key format of DayStatuses.
const DateLayout = "2006-01-02"

// Status - Per employee per calendar date, produced by the attendance
// subsystem. Read-only input to the payroll engine.
type Status struct {
	EmployeeID       string
	Date             time.Time
	UndertimeMinutes int
}

// DayStatuses maps "YYYY-MM-DD" -> employee id -> status.
// Dates with no recorded entry are simply absent; they are never back-filled.
type DayStatuses map[string]map[string]Status

// Log - Raw clock-in/out record for a date. Part of the stage-1 payload;
// the statuses above are the aggregation input, logs ride along for payslip
// display.
type Log struct {
	ID         string
	EmployeeID string
	Date       time.Time
	ClockIn    *time.Time
	ClockOut   *time.Time
}

// EmployeeSchedule - The shift assignment in force for an employee.
type EmployeeSchedule struct {
	ID            string
	EmployeeID    string
	ShiftHours    float64
	EffectiveDate time.Time
	EndDate       *time.Time
}

// ScheduleFor returns the schedule covering asOf for the employee, or nil
// when none is assigned. A nil result is a data-quality signal the caller
// must log, not an error.
func ScheduleFor(schedules []EmployeeSchedule, employeeID string, asOf time.Time) *EmployeeSchedule {
	for i := range schedules {
		s := &schedules[i]
		if s.EmployeeID != employeeID {
			continue
		}
		if s.EffectiveDate.After(asOf) {
			continue
		}
		if s.EndDate != nil && s.EndDate.Before(asOf) {
			continue
		}
		return s
	}
	return nil
}
