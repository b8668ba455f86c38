package payroll

import (
	"github.com/openpayroll/payroll-backend-go/internal/domain/employee"
	"github.com/openpayroll/payroll-backend-go/internal/domain/payhead"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/validator"
)

// Presence carries the linked-record lookups the eligibility filter depends
// on: whether the employee has a specific-amount override for the payhead, a
// pending cash-advance disbursement, and an outstanding repayment balance.
type Presence struct {
	HasOverride     bool
	HasDisbursement bool
	HasRepayment    bool
}

// Applicable decides whether a payhead applies to an employee.
//
// Contribution-only payheads never pass: their amounts always come from the
// benefit calculator. A payhead with an empty calculation field applies only
// when the employee has an override amount recorded. The cash-advance static
// formulas require the matching record to actually exist; an employee with no
// pending disbursement is skipped entirely, not given zero.
func Applicable(emp employee.Employee, ph payhead.Payhead, pres Presence) bool {
	if ph.IsContributionOnly() {
		return false
	}
	if ph.Calculation == "" && !pres.HasOverride {
		return false
	}
	if ph.Calculation == payhead.CalcDisbursement && !pres.HasDisbursement {
		return false
	}
	if ph.Calculation == payhead.CalcRepayment && !pres.HasRepayment {
		return false
	}

	// Mandatory flags apply by employment status regardless of list membership.
	if emp.IsRegular() && ph.Affected.MandatoryRegular {
		return true
	}
	if emp.IsProbationary() && ph.Affected.MandatoryProbationary {
		return true
	}

	// System-only payheads are catalogue-wide rules, not scoped to
	// departments or job classes.
	if ph.Affected.SystemOnly {
		return true
	}

	deptOK := len(ph.Affected.Departments) == 0 || validator.IsInSlice(emp.DepartmentID, ph.Affected.Departments)
	jobOK := len(ph.Affected.JobClasses) == 0 || validator.IsInSlice(emp.JobClassID, ph.Affected.JobClasses)
	return deptOK && jobOK
}
