package payroll

import (
	"log/slog"

	"github.com/openpayroll/payroll-backend-go/internal/domain/payhead"
	"github.com/openpayroll/payroll-backend-go/internal/domain/payroll"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/formula"
)

// BaseVariables is the fixed variable set every formula sees for one
// employee. The static formula identifiers are bound as precomputed scalars,
// so a payhead whose calculation is e.g. "get_disbursement" evaluates to the
// looked-up amount.
type BaseVariables struct {
	RatePerHour     float64
	TotalShiftHours float64
	BasicSalary     float64
	PayrollDays     float64
	Disbursement    float64
	Repayment       float64
	Tardiness       float64 // already monetary: minutes x (rate / 60)
}

// Env returns the ordered environment with the declared variable names bound.
func (b BaseVariables) Env() *formula.Env {
	env := formula.NewEnv()
	env.Set("rate_p_hr", b.RatePerHour)
	env.Set("total_shft_hr", b.TotalShiftHours)
	env.Set("basic_salary", b.BasicSalary)
	env.Set("payroll_days", b.PayrollDays)
	env.Set(payhead.CalcDisbursement, b.Disbursement)
	env.Set(payhead.CalcRepayment, b.Repayment)
	env.Set(payhead.CalcTardiness, b.Tardiness)
	return env
}

// CalculateAllPayheads evaluates formulas in catalogue order against an
// accumulating environment: each computed amount is bound under its declared
// variable name and becomes visible to every formula after it. Catalogue
// order is the dependency order; forward references fail evaluation.
//
// Under ModeSuppress a failing formula yields zero and the pass continues.
// Under ModeStrict any failure invalidates the whole batch and nil is
// returned: a partially computed employee must never be committed. Failures
// are logged with the offending payhead id either way; they are not raised.
func CalculateAllPayheads(
	logger *slog.Logger,
	base BaseVariables,
	formulas []payroll.VariableFormula,
	mode formula.Mode,
) []payroll.VariableAmount {
	env := base.Env()
	results := make([]payroll.VariableAmount, 0, len(formulas))
	failed := false

	for _, f := range formulas {
		amount, err := formula.Evaluate(f.Formula, env)
		if err != nil {
			failed = true
			amount = 0
			logger.Error("payhead evaluation failed",
				slog.String("payhead_id", f.PayheadID),
				slog.String("variable", f.Variable),
				slog.Any("error", err),
			)
		}

		results = append(results, payroll.VariableAmount{
			LinkID:    f.LinkID,
			PayheadID: f.PayheadID,
			Variable:  f.Variable,
			Amount:    amount,
		})
		if f.Variable != "" {
			env.Set(f.Variable, amount)
		}
	}

	if failed && mode == formula.ModeStrict {
		return nil
	}
	return results
}
