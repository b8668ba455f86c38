package payroll

import (
	"io"
	"log/slog"
	"testing"

	"github.com/openpayroll/payroll-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bracket table in the shape of a social-security schedule: 500-peso salary
// credit buckets, a WISP split above 20k, and a stepped EC rate.
func testBracket() payroll.ContributionBracket {
	return payroll.ContributionBracket{
		EmployeeRate:  4.5,
		EmployerRate:  9.5,
		MinSalary:     4250,
		MaxSalary:     29750,
		MinMSC:        4000,
		MaxMSC:        30000,
		MSCStep:       500,
		ECThreshold:   14500,
		ECLowRate:     0.1,
		ECHighRate:    0.2,
		WISPThreshold: 20000,
	}
}

func TestContribution_FlatRate(t *testing.T) {
	calc := NewBenefitCalculator(discardLogger())

	setting := payroll.ContributionSetting{
		ID:           "plan-1",
		Name:         "philhealth",
		EmployeeRate: 3,
		EmployerRate: 3,
	}

	assert.InDelta(t, 600, calc.Contribution(20000, setting), 1e-9)
	assert.InDelta(t, 0, calc.Contribution(0, setting), 1e-9)
}

func TestContribution_MisconfiguredPlanYieldsZero(t *testing.T) {
	calc := NewBenefitCalculator(discardLogger())

	setting := payroll.ContributionSetting{ID: "plan-1", Name: "empty"}
	assert.Zero(t, calc.Contribution(20000, setting))
}

func TestContribution_BracketWithoutTableFallsBackToFlat(t *testing.T) {
	calc := NewBenefitCalculator(discardLogger())

	setting := payroll.ContributionSetting{
		ID:   "plan-1",
		Name: "pagibig",
		Brackets: []payroll.ContributionBracket{
			{EmployeeRate: 2, EmployerRate: 2},
		},
	}

	assert.InDelta(t, 400, calc.Contribution(20000, setting), 1e-9)
}

func TestContribution_BracketTable(t *testing.T) {
	calc := NewBenefitCalculator(discardLogger())
	setting := payroll.ContributionSetting{
		ID:       "plan-sss",
		Name:     "sss",
		Brackets: []payroll.ContributionBracket{testBracket()},
	}

	tests := []struct {
		name   string
		salary float64
		want   float64
	}{
		// 20000 lands exactly on a bucket at the WISP threshold; no excess.
		{"on the threshold", 20000, 900},
		// below the table clamps up to the lowest bucket: 4250 -> 4500.
		{"below minimum salary", 3000, 202.5},
		// above the table clamps to MaxMSC 30000; 10000 of it is WISP excess,
		// but the employee rate applies to both components.
		{"above maximum salary", 100000, 1350},
		// 15240 -> 15000 bucket, plain 4.5%.
		{"mid table rounds to bucket", 15240, 675},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, calc.Contribution(tt.salary, setting), 1e-9)
		})
	}
}

func TestContribution_ClampingIsIdempotent(t *testing.T) {
	calc := NewBenefitCalculator(discardLogger())
	setting := payroll.ContributionSetting{
		ID:       "plan-sss",
		Name:     "sss",
		Brackets: []payroll.ContributionBracket{testBracket()},
	}

	// Feeding a salary already equal to a clamped credit must not shift the
	// bucket again.
	first := calc.Contribution(29750, setting)
	second := calc.Contribution(29750, setting)
	assert.Equal(t, first, second)
	assert.InDelta(t, 1350, first, 1e-9)
}

func TestBracketShares_SplitsAndECRate(t *testing.T) {
	calc := NewBenefitCalculator(discardLogger())
	b := testBracket()
	setting := payroll.ContributionSetting{ID: "plan-sss", Name: "sss"}

	// msc 30000: above both the EC threshold and the WISP threshold.
	shares := calc.bracketShares(setting, b, 100000)
	assert.InDelta(t, 900, shares.Employee, 1e-9)         // 20000 * 4.5%
	assert.InDelta(t, 450, shares.WISPEmployee, 1e-9)     // 10000 * 4.5%
	assert.InDelta(t, 1900+40, shares.Employer, 1e-9)     // 20000 * 9.5% + EC high 0.2%
	assert.InDelta(t, 950, shares.WISPEmployer, 1e-9)     // 10000 * 9.5%

	// msc 10000: below the EC threshold uses the low rate.
	low := calc.bracketShares(setting, b, 10000)
	assert.InDelta(t, 450, low.Employee, 1e-9)
	assert.InDelta(t, 950+10, low.Employer, 1e-9)
	assert.Zero(t, low.WISPEmployee)
}

func TestBracketShares_MalformedTableYieldsZero(t *testing.T) {
	calc := NewBenefitCalculator(discardLogger())
	setting := payroll.ContributionSetting{ID: "plan-1", Name: "broken"}

	b := testBracket()
	b.MSCStep = 0
	assert.Equal(t, ContributionShares{}, calc.bracketShares(setting, b, 20000))

	b = testBracket()
	b.MaxMSC = b.MinMSC - 1
	assert.Equal(t, ContributionShares{}, calc.bracketShares(setting, b, 20000))
}
