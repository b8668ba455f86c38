package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/openpayroll/payroll-backend-go/internal/domain/employee"
	"github.com/openpayroll/payroll-backend-go/internal/domain/payhead"
	"github.com/openpayroll/payroll-backend-go/internal/domain/payroll"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func (r *payrollRepository) GetPayPeriod(ctx context.Context, id string) (payroll.PayPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, start_date, end_date
		FROM pay_periods
		WHERE id = $1
	`

	var p payroll.PayPeriod
	err := q.QueryRow(ctx, query, id).Scan(&p.ID, &p.StartDate, &p.EndDate)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayPeriod{}, payroll.ErrPayPeriodNotFound
		}
		return payroll.PayPeriod{}, fmt.Errorf("failed to get pay period: %w", err)
	}

	return p, nil
}

// GetUnprocessed assembles the stage-1 snapshot. Each input set comes from
// its own query; the snapshot is read-only afterwards, so a strict shared
// transaction is not needed.
func (r *payrollRepository) GetUnprocessed(ctx context.Context, periodID string) (payroll.Snapshot, error) {
	var snap payroll.Snapshot
	var err error

	if snap.Payrolls, err = r.getPayrolls(ctx, periodID); err != nil {
		return payroll.Snapshot{}, err
	}
	if snap.Employees, err = r.getEmployees(ctx, periodID); err != nil {
		return payroll.Snapshot{}, err
	}
	if snap.Payheads, err = r.getActivePayheads(ctx); err != nil {
		return payroll.Snapshot{}, err
	}
	if snap.SpecificAmounts, err = r.getSpecificAmounts(ctx); err != nil {
		return payroll.Snapshot{}, err
	}
	if snap.CashToDisburse, err = r.getPendingAdvances(ctx); err != nil {
		return payroll.Snapshot{}, err
	}
	if snap.CashToRepay, err = r.getOutstandingRepayments(ctx); err != nil {
		return payroll.Snapshot{}, err
	}
	if snap.Enrollments, err = r.getEnrollments(ctx); err != nil {
		return payroll.Snapshot{}, err
	}

	return snap, nil
}

func (r *payrollRepository) getPayrolls(ctx context.Context, periodID string) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, pay_period_id, employee_id, created_at, updated_at
		FROM payrolls
		WHERE pay_period_id = $1
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer rows.Close()

	var payrolls []payroll.Payroll
	for rows.Next() {
		var p payroll.Payroll
		if err := rows.Scan(&p.ID, &p.PayPeriodID, &p.EmployeeID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payroll: %w", err)
		}
		payrolls = append(payrolls, p)
	}

	return payrolls, nil
}

func (r *payrollRepository) getEmployees(ctx context.Context, periodID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.full_name, e.department_id, e.job_class_id, e.branch_id,
			   e.employment_status, COALESCE(g.base_salary, 0), COALESCE(jc.rate_per_hour, 0),
			   e.hire_date
		FROM employees e
		JOIN payrolls p ON p.employee_id = e.id
		LEFT JOIN salary_grades g ON e.salary_grade_id = g.id
		LEFT JOIN job_classes jc ON e.job_class_id = jc.id
		WHERE p.pay_period_id = $1 AND e.deleted_at IS NULL
		ORDER BY e.full_name
	`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var e employee.Employee
		if err := rows.Scan(
			&e.ID, &e.FullName, &e.DepartmentID, &e.JobClassID, &e.BranchID,
			&e.EmploymentStatus, &e.BaseSalary, &e.RatePerHour, &e.HireDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}

	return employees, nil
}

func (r *payrollRepository) getActivePayheads(ctx context.Context) ([]payhead.Payhead, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, type, COALESCE(variable, ''), COALESCE(calculation, ''),
			   COALESCE(affected_departments, '{}'), COALESCE(affected_job_classes, '{}'),
			   mandatory_regular, mandatory_probationary, system_only,
			   position, is_active, created_at, updated_at
		FROM payheads
		WHERE is_active = true
		ORDER BY position
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payheads: %w", err)
	}
	defer rows.Close()

	var payheads []payhead.Payhead
	for rows.Next() {
		var ph payhead.Payhead
		if err := rows.Scan(
			&ph.ID, &ph.Name, &ph.Type, &ph.Variable, &ph.Calculation,
			&ph.Affected.Departments, &ph.Affected.JobClasses,
			&ph.Affected.MandatoryRegular, &ph.Affected.MandatoryProbationary, &ph.Affected.SystemOnly,
			&ph.Position, &ph.IsActive, &ph.CreatedAt, &ph.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payhead: %w", err)
		}
		payheads = append(payheads, ph)
	}

	return payheads, nil
}

func (r *payrollRepository) getSpecificAmounts(ctx context.Context) ([]payhead.SpecificAmount, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT sa.id, sa.payhead_id, sa.employee_id, sa.amount
		FROM payhead_specific_amounts sa
		JOIN payheads ph ON sa.payhead_id = ph.id
		WHERE ph.is_active = true
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list specific amounts: %w", err)
	}
	defer rows.Close()

	var amounts []payhead.SpecificAmount
	for rows.Next() {
		var sa payhead.SpecificAmount
		if err := rows.Scan(&sa.ID, &sa.PayheadID, &sa.EmployeeID, &sa.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan specific amount: %w", err)
		}
		amounts = append(amounts, sa)
	}

	return amounts, nil
}

func (r *payrollRepository) getPendingAdvances(ctx context.Context) ([]payroll.CashAdvance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, amount_requested
		FROM cash_advances
		WHERE status = 'pending'
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending cash advances: %w", err)
	}
	defer rows.Close()

	var advances []payroll.CashAdvance
	for rows.Next() {
		var ca payroll.CashAdvance
		if err := rows.Scan(&ca.ID, &ca.EmployeeID, &ca.AmountRequested); err != nil {
			return nil, fmt.Errorf("failed to scan cash advance: %w", err)
		}
		advances = append(advances, ca)
	}

	return advances, nil
}

func (r *payrollRepository) getOutstandingRepayments(ctx context.Context) ([]payroll.CashRepayment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, principal
		FROM cash_repayments
		WHERE status = 'ongoing'
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash repayments: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]int)
	var repayments []payroll.CashRepayment
	for rows.Next() {
		var cr payroll.CashRepayment
		if err := rows.Scan(&cr.ID, &cr.EmployeeID, &cr.Principal); err != nil {
			return nil, fmt.Errorf("failed to scan cash repayment: %w", err)
		}
		byID[cr.ID] = len(repayments)
		repayments = append(repayments, cr)
	}
	rows.Close()
	if len(repayments) == 0 {
		return nil, nil
	}

	entryQuery := `
		SELECT re.cash_repayment_id, re.amount
		FROM cash_repayment_entries re
		JOIN cash_repayments cr ON re.cash_repayment_id = cr.id
		WHERE cr.status = 'ongoing'
	`

	entries, err := q.Query(ctx, entryQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list repayment entries: %w", err)
	}
	defer entries.Close()

	for entries.Next() {
		var repaymentID string
		var amount decimal.Decimal
		if err := entries.Scan(&repaymentID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan repayment entry: %w", err)
		}
		if idx, ok := byID[repaymentID]; ok {
			repayments[idx].Repaid = append(repayments[idx].Repaid, amount)
		}
	}

	return repayments, nil
}

func (r *payrollRepository) getEnrollments(ctx context.Context) ([]payroll.Enrollment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT en.id, en.employee_id,
			   cs.id, cs.name, cs.deduction_payhead_id,
			   COALESCE(cs.employee_rate, 0), COALESCE(cs.employer_rate, 0)
		FROM benefit_enrollments en
		JOIN contribution_settings cs ON en.contribution_setting_id = cs.id
		WHERE en.is_active = true
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list benefit enrollments: %w", err)
	}
	defer rows.Close()

	settingIdx := make(map[string][]int)
	var enrollments []payroll.Enrollment
	for rows.Next() {
		var en payroll.Enrollment
		if err := rows.Scan(
			&en.ID, &en.EmployeeID,
			&en.Setting.ID, &en.Setting.Name, &en.Setting.DeductionPayheadID,
			&en.Setting.EmployeeRate, &en.Setting.EmployerRate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan benefit enrollment: %w", err)
		}
		settingIdx[en.Setting.ID] = append(settingIdx[en.Setting.ID], len(enrollments))
		enrollments = append(enrollments, en)
	}
	rows.Close()
	if len(enrollments) == 0 {
		return nil, nil
	}

	bracketQuery := `
		SELECT contribution_setting_id,
			   COALESCE(employee_rate, 0), COALESCE(employer_rate, 0),
			   COALESCE(min_salary, 0), COALESCE(max_salary, 0),
			   COALESCE(min_msc, 0), COALESCE(max_msc, 0), COALESCE(msc_step, 0),
			   COALESCE(ec_threshold, 0), COALESCE(ec_low_rate, 0), COALESCE(ec_high_rate, 0),
			   COALESCE(wisp_threshold, 0)
		FROM contribution_brackets
		ORDER BY contribution_setting_id, min_salary
	`

	brackets, err := q.Query(ctx, bracketQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list contribution brackets: %w", err)
	}
	defer brackets.Close()

	for brackets.Next() {
		var settingID string
		var b payroll.ContributionBracket
		if err := brackets.Scan(
			&settingID,
			&b.EmployeeRate, &b.EmployerRate,
			&b.MinSalary, &b.MaxSalary,
			&b.MinMSC, &b.MaxMSC, &b.MSCStep,
			&b.ECThreshold, &b.ECLowRate, &b.ECHighRate,
			&b.WISPThreshold,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contribution bracket: %w", err)
		}
		for _, idx := range settingIdx[settingID] {
			enrollments[idx].Setting.Brackets = append(enrollments[idx].Setting.Brackets, b)
		}
	}

	return enrollments, nil
}

const upsertBreakdownQuery = `
	INSERT INTO payroll_breakdowns (payroll_id, payhead_id, amount)
	VALUES ($1, $2, $3)
	ON CONFLICT (payroll_id, payhead_id) DO UPDATE SET
		amount = EXCLUDED.amount,
		updated_at = NOW()
	RETURNING id, payroll_id, payhead_id, amount, created_at, updated_at
`

// UpsertBreakdowns commits one run's rows in a single transaction, so a
// commit failure leaves the previous run's rows fully intact.
func (r *payrollRepository) UpsertBreakdowns(ctx context.Context, breakdowns []payroll.Breakdown) ([]payroll.Breakdown, error) {
	saved := make([]payroll.Breakdown, 0, len(breakdowns))

	err := WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)
		for _, bd := range breakdowns {
			var row payroll.Breakdown
			err := q.QueryRow(txCtx, upsertBreakdownQuery, bd.PayrollID, bd.PayheadID, bd.Amount).Scan(
				&row.ID, &row.PayrollID, &row.PayheadID, &row.Amount, &row.CreatedAt, &row.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert breakdown: %w", err)
			}
			saved = append(saved, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func (r *payrollRepository) UpsertBreakdown(ctx context.Context, bd payroll.Breakdown) (payroll.Breakdown, error) {
	q := GetQuerier(ctx, r.db)

	var row payroll.Breakdown
	err := q.QueryRow(ctx, upsertBreakdownQuery, bd.PayrollID, bd.PayheadID, bd.Amount).Scan(
		&row.ID, &row.PayrollID, &row.PayheadID, &row.Amount, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		return payroll.Breakdown{}, fmt.Errorf("failed to upsert breakdown: %w", err)
	}

	return row, nil
}

func (r *payrollRepository) GetBreakdownsByPeriod(ctx context.Context, periodID string) ([]payroll.Breakdown, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT bd.id, bd.payroll_id, bd.payhead_id, bd.amount, bd.created_at, bd.updated_at
		FROM payroll_breakdowns bd
		JOIN payrolls p ON bd.payroll_id = p.id
		WHERE p.pay_period_id = $1
		ORDER BY bd.payroll_id, bd.payhead_id
	`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list breakdowns: %w", err)
	}
	defer rows.Close()

	var breakdowns []payroll.Breakdown
	for rows.Next() {
		var bd payroll.Breakdown
		if err := rows.Scan(&bd.ID, &bd.PayrollID, &bd.PayheadID, &bd.Amount, &bd.CreatedAt, &bd.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan breakdown: %w", err)
		}
		breakdowns = append(breakdowns, bd)
	}

	return breakdowns, nil
}
