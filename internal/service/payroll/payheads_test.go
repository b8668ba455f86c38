package payroll

import (
	"testing"

	"github.com/openpayroll/payroll-backend-go/internal/domain/payroll"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/formula"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBase() BaseVariables {
	return BaseVariables{
		RatePerHour:     30,
		TotalShiftHours: 80,
		BasicSalary:     20000,
		PayrollDays:     14,
		Disbursement:    5000,
		Repayment:       1250,
		Tardiness:       37.5,
	}
}

func TestCalculateAllPayheads_ChainsInCatalogueOrder(t *testing.T) {
	formulas := []payroll.VariableFormula{
		{PayheadID: "ph-basic", Variable: "basic_salary", Formula: "rate_p_hr * total_shft_hr"},
		{PayheadID: "ph-allow", Variable: "allowance", Formula: "basic_salary * 0.1"},
		{PayheadID: "ph-gross", Variable: "gross", Formula: "basic_salary + allowance"},
	}

	got := CalculateAllPayheads(discardLogger(), testBase(), formulas, formula.ModeStrict)
	require.Len(t, got, 3)

	// ph-basic rebinds basic_salary, so ph-allow sees 2400, not the base 20000.
	assert.InDelta(t, 2400, got[0].Amount, 1e-9)
	assert.InDelta(t, 240, got[1].Amount, 1e-9)
	assert.InDelta(t, 2640, got[2].Amount, 1e-9)
}

func TestCalculateAllPayheads_StaticIdentifiers(t *testing.T) {
	formulas := []payroll.VariableFormula{
		{PayheadID: "ph-ca", Variable: "cash_advance", Formula: "get_disbursement"},
		{PayheadID: "ph-rp", Variable: "repayment", Formula: "get_repayment"},
		{PayheadID: "ph-ut", Variable: "undertime", Formula: "get_tardiness"},
	}

	got := CalculateAllPayheads(discardLogger(), testBase(), formulas, formula.ModeStrict)
	require.Len(t, got, 3)
	assert.InDelta(t, 5000, got[0].Amount, 1e-9)
	assert.InDelta(t, 1250, got[1].Amount, 1e-9)
	assert.InDelta(t, 37.5, got[2].Amount, 1e-9)
}

func TestCalculateAllPayheads_ForwardReferenceFails(t *testing.T) {
	formulas := []payroll.VariableFormula{
		{PayheadID: "ph-gross", Variable: "gross", Formula: "basic_salary + allowance"},
		{PayheadID: "ph-allow", Variable: "allowance", Formula: "basic_salary * 0.1"},
	}

	assert.Nil(t, CalculateAllPayheads(discardLogger(), testBase(), formulas, formula.ModeStrict))
}

func TestCalculateAllPayheads_StrictDiscardsWholeBatch(t *testing.T) {
	formulas := []payroll.VariableFormula{
		{PayheadID: "ph-ok", Variable: "ok", Formula: "basic_salary * 0.1"},
		{PayheadID: "ph-bad", Variable: "bad", Formula: "basic_salary /"},
	}

	assert.Nil(t, CalculateAllPayheads(discardLogger(), testBase(), formulas, formula.ModeStrict))
}

func TestCalculateAllPayheads_SuppressKeepsGoingWithZero(t *testing.T) {
	formulas := []payroll.VariableFormula{
		{PayheadID: "ph-bad", Variable: "bad", Formula: "basic_salary /"},
		{PayheadID: "ph-after", Variable: "after", Formula: "bad + 100"},
	}

	got := CalculateAllPayheads(discardLogger(), testBase(), formulas, formula.ModeSuppress)
	require.Len(t, got, 2)
	assert.Zero(t, got[0].Amount)
	// the failed amount is still bound, as zero, for later formulas.
	assert.InDelta(t, 100, got[1].Amount, 1e-9)
}

func TestCalculateAllPayheads_UnnamedResultIsNotBound(t *testing.T) {
	formulas := []payroll.VariableFormula{
		{PayheadID: "ph-anon", Variable: "", Formula: "rate_p_hr * 2"},
		{PayheadID: "ph-ref", Variable: "ref", Formula: "rate_p_hr"},
	}

	got := CalculateAllPayheads(discardLogger(), testBase(), formulas, formula.ModeStrict)
	require.Len(t, got, 2)
	assert.InDelta(t, 60, got[0].Amount, 1e-9)
	assert.InDelta(t, 30, got[1].Amount, 1e-9)
}

func TestCalculateAllPayheads_EmptyBatch(t *testing.T) {
	got := CalculateAllPayheads(discardLogger(), testBase(), nil, formula.ModeStrict)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestBaseVariablesEnv_BindsDeclaredNames(t *testing.T) {
	env := testBase().Env()

	for name, want := range map[string]float64{
		"rate_p_hr":        30,
		"total_shft_hr":    80,
		"basic_salary":     20000,
		"payroll_days":     14,
		"get_disbursement": 5000,
		"get_repayment":    1250,
		"get_tardiness":    37.5,
	} {
		got, err := formula.Evaluate(name, env)
		require.NoError(t, err, name)
		assert.InDelta(t, want, got, 1e-9, name)
	}
}
