package payroll

import (
	"github.com/openpayroll/payroll-backend-go/internal/domain/employee"
	"github.com/openpayroll/payroll-backend-go/internal/domain/payhead"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Snapshot is the stage-1 persistence payload: every unprocessed input the
// compute stage needs, fetched once and treated as immutable afterwards.
type Snapshot struct {
	Period          PayPeriod
	Payrolls        []Payroll
	Employees       []employee.Employee
	Payheads        []payhead.Payhead
	SpecificAmounts []payhead.SpecificAmount
	CashToDisburse  []CashAdvance
	CashToRepay     []CashRepayment
	Enrollments     []Enrollment
}

// PayslipData is the stage-3 output: everything payslip generation needs.
type PayslipData struct {
	Payrolls   []Payroll                   `json:"payrolls"`
	Breakdowns []Breakdown                 `json:"breakdowns"`
	Employees  []employee.Employee         `json:"employees"`
	Earnings   []payhead.Payhead           `json:"earnings"`
	Deductions []payhead.Payhead           `json:"deductions"`
	Amounts    map[string][]VariableAmount `json:"calculated_amounts"` // employee id -> computed amounts
}

// ========== REQUEST DTOs ==========

type ProcessRequest struct {
	PayPeriodID string `json:"pay_period_id"`
	RunID       string `json:"run_id,omitempty"` // optional progress-stream correlation id
}

func (r *ProcessRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PayPeriodID) {
		errs = append(errs, validator.ValidationError{Field: "pay_period_id", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RepriceBreakdownRequest upserts a single breakdown row outside a full run.
type RepriceBreakdownRequest struct {
	PayrollID string          `json:"payroll_id"`
	PayheadID string          `json:"payhead_id"`
	Amount    decimal.Decimal `json:"amount"`
}

func (r *RepriceBreakdownRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PayrollID) {
		errs = append(errs, validator.ValidationError{Field: "payroll_id", Message: "is required"})
	}
	if validator.IsEmpty(r.PayheadID) {
		errs = append(errs, validator.ValidationError{Field: "payhead_id", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
