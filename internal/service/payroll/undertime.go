package payroll

import (
	"log/slog"
	"time"

	"github.com/openpayroll/payroll-backend-go/internal/domain/attendance"
)

// UndertimeMinutes reduces the per-date status map to one employee's total
// undertime minutes over [start, end] inclusive. Dates absent from the map
// contribute 0; they are never inferred or back-filled. An employee with no
// schedule assignment gets 0, logged as a data-quality signal rather than
// treated as an error.
func UndertimeMinutes(
	logger *slog.Logger,
	statuses attendance.DayStatuses,
	employeeID string,
	sched *attendance.EmployeeSchedule,
	start, end time.Time,
) int {
	if sched == nil {
		logger.Info("no shift schedule found for employee",
			slog.String("employee_id", employeeID),
		)
		return 0
	}

	total := 0
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		day, ok := statuses[cur.Format(attendance.DateLayout)]
		if !ok {
			continue
		}
		if st, ok := day[employeeID]; ok {
			total += st.UndertimeMinutes
		}
	}
	return total
}
