package payhead

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type enum
type Type string

const (
	TypeEarning   Type = "earning"
	TypeDeduction Type = "deduction"
)

// Static formula identifiers. These are the contract between payhead
// configuration and the calculation engine: a payhead whose calculation field
// equals one of these is computed by a dedicated calculator, not by generic
// expression evaluation.
const (
	CalcDisbursement = "get_disbursement"
	CalcRepayment    = "get_repayment"
	CalcTardiness    = "get_tardiness"
	CalcContribution = "get_contribution"
)

// Affected describes which employees a payhead applies to.
// Empty id sets mean "all".
type Affected struct {
	Departments           []string
	JobClasses            []string
	MandatoryRegular      bool
	MandatoryProbationary bool
	SystemOnly            bool
}

// Payhead - Configured earning or deduction definition
type Payhead struct {
	ID       string
	Name     string
	Type     Type
	Variable string // name under which the computed amount is visible to later formulas
	// Calculation is a static formula identifier, an arithmetic expression
	// over variables, or empty (use the per-employee specific amount).
	Calculation string
	Affected    Affected
	Position    int // catalogue order; also the evaluation order
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsContributionOnly reports whether the payhead's amount is always derived
// through the benefit contribution calculator. For these rows the calculation
// field is a marker, never an expression.
func (p Payhead) IsContributionOnly() bool {
	return p.Calculation == CalcContribution
}

// SpecificAmount - Per-employee override for a payhead with an empty
// calculation field (or taking precedence over its formula).
type SpecificAmount struct {
	ID         string
	PayheadID  string
	EmployeeID string
	Amount     decimal.Decimal
}
