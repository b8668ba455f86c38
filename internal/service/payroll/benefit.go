package payroll

import (
	"log/slog"
	"math"

	"github.com/openpayroll/payroll-backend-go/internal/domain/payroll"
)

// BenefitCalculator derives benefit contribution shares from a salary and a
// plan's contribution setting. It never returns an error: a malformed setting
// yields a zero contribution, which is safe to pay out and loud in the logs
// so an operator can correct the plan.
type BenefitCalculator struct {
	logger *slog.Logger
}

func NewBenefitCalculator(logger *slog.Logger) *BenefitCalculator {
	return &BenefitCalculator{logger: logger}
}

// ContributionShares breaks a bracket-mode result into its components.
type ContributionShares struct {
	Employee     float64
	Employer     float64
	WISPEmployee float64
	WISPEmployer float64
}

// Contribution returns the employee share (including any WISP excess
// component) for salary under setting.
func (c *BenefitCalculator) Contribution(salary float64, setting payroll.ContributionSetting) float64 {
	if len(setting.Brackets) == 0 {
		if setting.EmployeeRate == 0 && setting.EmployerRate == 0 {
			c.logger.Warn("contribution setting has neither a bracket table nor flat rates",
				slog.String("plan_id", setting.ID),
				slog.String("plan_name", setting.Name),
				slog.Bool("misconfigured_plan", true),
			)
			return 0
		}
		return salary * setting.EmployeeRate / 100
	}

	// The first bracket row carries the plan's rate schedule.
	b := setting.Brackets[0]
	if b.MinMSC == 0 {
		// No salary-credit table on the row: flat fallback on its rates.
		return salary * b.EmployeeRate / 100
	}

	shares := c.bracketShares(setting, b, salary)
	return shares.Employee + shares.WISPEmployee
}

// bracketShares maps salary to a monthly salary credit bucket and splits the
// contribution into employee/employer shares plus the WISP excess component.
func (c *BenefitCalculator) bracketShares(setting payroll.ContributionSetting, b payroll.ContributionBracket, salary float64) ContributionShares {
	if b.MSCStep <= 0 || b.MaxMSC < b.MinMSC {
		c.logger.Warn("contribution bracket table is malformed",
			slog.String("plan_id", setting.ID),
			slog.String("plan_name", setting.Name),
			slog.Float64("msc_step", b.MSCStep),
			slog.Bool("misconfigured_plan", true),
		)
		return ContributionShares{}
	}

	// Salaries outside the table clamp to its edge buckets.
	clamped := clampFloat(salary, b.MinSalary, b.MaxSalary)
	msc := math.Round(clamped/b.MSCStep) * b.MSCStep
	msc = clampFloat(msc, b.MinMSC, b.MaxMSC)

	regular := msc
	wisp := 0.0
	if b.WISPThreshold > 0 && msc > b.WISPThreshold {
		regular = b.WISPThreshold
		wisp = msc - b.WISPThreshold
	}

	ecRate := b.ECLowRate
	if b.ECThreshold > 0 && msc > b.ECThreshold {
		ecRate = b.ECHighRate
	}

	return ContributionShares{
		Employee:     regular * b.EmployeeRate / 100,
		Employer:     regular*b.EmployerRate/100 + regular*ecRate/100,
		WISPEmployee: wisp * b.EmployeeRate / 100,
		WISPEmployer: wisp * b.EmployerRate / 100,
	}
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
