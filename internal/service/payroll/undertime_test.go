package payroll

import (
	"testing"
	"time"

	"github.com/openpayroll/payroll-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUndertimeMinutes(t *testing.T) {
	logger := discardLogger()
	start := day(2026, 1, 1)
	end := day(2026, 1, 5)
	sched := &attendance.EmployeeSchedule{ID: "sch-1", EmployeeID: "emp-1", ShiftHours: 8, EffectiveDate: day(2025, 1, 1)}

	statuses := attendance.DayStatuses{
		"2026-01-01": {
			"emp-1": {EmployeeID: "emp-1", UndertimeMinutes: 15},
			"emp-2": {EmployeeID: "emp-2", UndertimeMinutes: 90},
		},
		// 01-02 and 01-03 have no record at all.
		"2026-01-04": {
			"emp-1": {EmployeeID: "emp-1", UndertimeMinutes: 30},
		},
		"2026-01-05": {
			"emp-2": {EmployeeID: "emp-2", UndertimeMinutes: 45},
		},
		// outside the range, must not count.
		"2026-01-06": {
			"emp-1": {EmployeeID: "emp-1", UndertimeMinutes: 600},
		},
	}

	t.Run("sums only the employee's minutes inside the range", func(t *testing.T) {
		assert.Equal(t, 45, UndertimeMinutes(logger, statuses, "emp-1", sched, start, end))
	})

	t.Run("range end is inclusive", func(t *testing.T) {
		sched2 := &attendance.EmployeeSchedule{ID: "sch-2", EmployeeID: "emp-2", EffectiveDate: day(2025, 1, 1)}
		assert.Equal(t, 135, UndertimeMinutes(logger, statuses, "emp-2", sched2, start, end))
	})

	t.Run("no schedule yields zero", func(t *testing.T) {
		assert.Zero(t, UndertimeMinutes(logger, statuses, "emp-1", nil, start, end))
	})

	t.Run("no statuses at all yields zero", func(t *testing.T) {
		assert.Zero(t, UndertimeMinutes(logger, attendance.DayStatuses{}, "emp-1", sched, start, end))
	})
}

func TestScheduleFor(t *testing.T) {
	ended := day(2025, 12, 31)
	schedules := []attendance.EmployeeSchedule{
		{ID: "old", EmployeeID: "emp-1", EffectiveDate: day(2025, 1, 1), EndDate: &ended},
		{ID: "current", EmployeeID: "emp-1", EffectiveDate: day(2026, 1, 1)},
		{ID: "other", EmployeeID: "emp-2", EffectiveDate: day(2025, 1, 1)},
	}

	got := attendance.ScheduleFor(schedules, "emp-1", day(2026, 1, 15))
	if assert.NotNil(t, got) {
		assert.Equal(t, "current", got.ID)
	}

	assert.Nil(t, attendance.ScheduleFor(schedules, "emp-3", day(2026, 1, 15)))
	assert.Nil(t, attendance.ScheduleFor(schedules, "emp-2", day(2024, 6, 1)))
}
