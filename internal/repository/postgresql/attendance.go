package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/openpayroll/payroll-backend-go/internal/domain/attendance"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) GetRange(ctx context.Context, start, end time.Time) (attendance.RangeData, error) {
	var data attendance.RangeData
	var err error

	if data.Logs, err = r.getLogs(ctx, start, end); err != nil {
		return attendance.RangeData{}, err
	}
	if data.Schedules, err = r.getSchedules(ctx); err != nil {
		return attendance.RangeData{}, err
	}
	if data.Statuses, err = r.getStatuses(ctx, start, end); err != nil {
		return attendance.RangeData{}, err
	}

	return data, nil
}

func (r *attendanceRepository) getLogs(ctx context.Context, start, end time.Time) ([]attendance.Log, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, clock_in, clock_out
		FROM attendance_logs
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, employee_id
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance logs: %w", err)
	}
	defer rows.Close()

	var logs []attendance.Log
	for rows.Next() {
		var l attendance.Log
		if err := rows.Scan(&l.ID, &l.EmployeeID, &l.Date, &l.ClockIn, &l.ClockOut); err != nil {
			return nil, fmt.Errorf("failed to scan attendance log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, nil
}

func (r *attendanceRepository) getSchedules(ctx context.Context) ([]attendance.EmployeeSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, shift_hours, effective_date, end_date
		FROM employee_schedules
		ORDER BY effective_date DESC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee schedules: %w", err)
	}
	defer rows.Close()

	var schedules []attendance.EmployeeSchedule
	for rows.Next() {
		var s attendance.EmployeeSchedule
		if err := rows.Scan(&s.ID, &s.EmployeeID, &s.ShiftHours, &s.EffectiveDate, &s.EndDate); err != nil {
			return nil, fmt.Errorf("failed to scan employee schedule: %w", err)
		}
		schedules = append(schedules, s)
	}

	return schedules, nil
}

func (r *attendanceRepository) getStatuses(ctx context.Context, start, end time.Time) (attendance.DayStatuses, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, date, COALESCE(undertime_minutes, 0)
		FROM attendance_statuses
		WHERE date BETWEEN $1 AND $2
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance statuses: %w", err)
	}
	defer rows.Close()

	statuses := make(attendance.DayStatuses)
	for rows.Next() {
		var st attendance.Status
		if err := rows.Scan(&st.EmployeeID, &st.Date, &st.UndertimeMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan attendance status: %w", err)
		}
		key := st.Date.Format(attendance.DateLayout)
		if statuses[key] == nil {
			statuses[key] = make(map[string]attendance.Status)
		}
		statuses[key][st.EmployeeID] = st
	}

	return statuses, nil
}
