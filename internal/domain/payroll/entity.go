package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayPeriod - The date range one pay run covers. Created by an external
// scheduler; immutable once a run starts.
type PayPeriod struct {
	ID        string
	StartDate time.Time
	EndDate   time.Time
}

// Days returns the pay-period day count exposed to formulas as payroll_days.
func (p PayPeriod) Days() int {
	return int(p.EndDate.Sub(p.StartDate).Hours() / 24)
}

// Payroll - One employee's slot in a pay period. Breakdown rows hang off it.
type Payroll struct {
	ID          string
	PayPeriodID string
	EmployeeID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Breakdown - The persisted calculation result: one row per applicable
// payhead per payroll, unique on (payroll_id, payhead_id). Re-running a
// period upserts, never duplicates.
type Breakdown struct {
	ID        string
	PayrollID string
	PayheadID string
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VariableAmount - A computed amount tagged with its originating payhead and,
// when the amount was driven by a linked record (cash advance, benefit
// enrollment), the id of that record so one source row is never applied twice.
// A zero PayheadID marks an intermediate value that is not persisted.
type VariableAmount struct {
	LinkID    string
	PayheadID string
	Variable  string
	Amount    float64
}

// VariableFormula - A payhead still awaiting evaluation for one employee.
type VariableFormula struct {
	LinkID    string
	PayheadID string
	Variable  string
	Formula   string
}

// ContributionBracket - One row of a benefit plan's bracket table.
// All rates are percentages (4.5 means 4.5%).
type ContributionBracket struct {
	EmployeeRate  float64
	EmployerRate  float64
	MinSalary     float64
	MaxSalary     float64
	MinMSC        float64
	MaxMSC        float64
	MSCStep       float64
	ECThreshold   float64
	ECLowRate     float64
	ECHighRate    float64
	WISPThreshold float64
}

// ContributionSetting - A benefit plan's linkage into payroll: the deduction
// payhead it posts to, plus either flat employee/employer rates or a bracket
// table. A plan with no brackets falls back to the flat rates.
type ContributionSetting struct {
	ID                 string
	Name               string
	DeductionPayheadID string
	EmployeeRate       float64 // percent; flat mode
	EmployerRate       float64 // percent; flat mode
	Brackets           []ContributionBracket
}

// Enrollment - An employee's membership in a benefit plan.
type Enrollment struct {
	ID         string
	EmployeeID string
	Setting    ContributionSetting
}

// CashAdvance - A pending disbursement. Append-only, created outside this engine.
type CashAdvance struct {
	ID              string
	EmployeeID      string
	AmountRequested decimal.Decimal
}

// CashRepayment - An outstanding repayment schedule against a disbursed
// advance. Remaining balance = principal - sum(repaid).
type CashRepayment struct {
	ID         string
	EmployeeID string
	Principal  decimal.Decimal
	Repaid     []decimal.Decimal
}

// Outstanding returns the remaining balance to be deducted.
func (r CashRepayment) Outstanding() decimal.Decimal {
	balance := r.Principal
	for _, amt := range r.Repaid {
		balance = balance.Sub(amt)
	}
	return balance
}
