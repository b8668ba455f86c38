package payroll

import (
	"testing"

	"github.com/openpayroll/payroll-backend-go/internal/domain/employee"
	"github.com/openpayroll/payroll-backend-go/internal/domain/payhead"
	"github.com/stretchr/testify/assert"
)

func TestApplicable(t *testing.T) {
	regular := employee.Employee{
		ID:               "emp-1",
		DepartmentID:     "dept-eng",
		JobClassID:       "jc-senior",
		EmploymentStatus: employee.EmploymentStatusRegular,
	}
	probationary := employee.Employee{
		ID:               "emp-2",
		DepartmentID:     "dept-sales",
		JobClassID:       "jc-junior",
		EmploymentStatus: employee.EmploymentStatusProbationary,
	}

	tests := []struct {
		name string
		emp  employee.Employee
		ph   payhead.Payhead
		pres Presence
		want bool
	}{
		{
			name: "empty lists apply to everyone",
			emp:  regular,
			ph:   payhead.Payhead{Calculation: "basic_salary * 0.1"},
			want: true,
		},
		{
			name: "department list excludes",
			emp:  regular,
			ph: payhead.Payhead{
				Calculation: "basic_salary * 0.1",
				Affected:    payhead.Affected{Departments: []string{"dept-sales"}},
			},
			want: false,
		},
		{
			name: "both lists must match",
			emp:  regular,
			ph: payhead.Payhead{
				Calculation: "basic_salary * 0.1",
				Affected: payhead.Affected{
					Departments: []string{"dept-eng"},
					JobClasses:  []string{"jc-junior"},
				},
			},
			want: false,
		},
		{
			name: "mandatory regular overrides list exclusion",
			emp:  regular,
			ph: payhead.Payhead{
				Calculation: "basic_salary * 0.1",
				Affected: payhead.Affected{
					Departments:      []string{"dept-sales"},
					MandatoryRegular: true,
				},
			},
			want: true,
		},
		{
			name: "mandatory regular does not cover probationary",
			emp:  probationary,
			ph: payhead.Payhead{
				Calculation: "basic_salary * 0.1",
				Affected: payhead.Affected{
					Departments:      []string{"dept-eng"},
					MandatoryRegular: true,
				},
			},
			want: false,
		},
		{
			name: "mandatory probationary covers probationary",
			emp:  probationary,
			ph: payhead.Payhead{
				Calculation: "basic_salary * 0.1",
				Affected:    payhead.Affected{MandatoryProbationary: true},
			},
			want: true,
		},
		{
			name: "system-only bypasses lists",
			emp:  probationary,
			ph: payhead.Payhead{
				Calculation: payhead.CalcTardiness,
				Affected: payhead.Affected{
					Departments: []string{"dept-eng"},
					SystemOnly:  true,
				},
			},
			want: true,
		},
		{
			name: "contribution-only never passes",
			emp:  regular,
			ph:   payhead.Payhead{Calculation: payhead.CalcContribution, Affected: payhead.Affected{SystemOnly: true}},
			want: false,
		},
		{
			name: "empty calculation requires an override",
			emp:  regular,
			ph:   payhead.Payhead{Calculation: ""},
			want: false,
		},
		{
			name: "empty calculation with override passes",
			emp:  regular,
			ph:   payhead.Payhead{Calculation: ""},
			pres: Presence{HasOverride: true},
			want: true,
		},
		{
			name: "disbursement requires a pending advance",
			emp:  regular,
			ph:   payhead.Payhead{Calculation: payhead.CalcDisbursement},
			want: false,
		},
		{
			name: "disbursement with a pending advance passes",
			emp:  regular,
			ph:   payhead.Payhead{Calculation: payhead.CalcDisbursement},
			pres: Presence{HasDisbursement: true},
			want: true,
		},
		{
			name: "repayment requires an outstanding balance",
			emp:  regular,
			ph:   payhead.Payhead{Calculation: payhead.CalcRepayment},
			want: false,
		},
		{
			name: "repayment with a balance passes",
			emp:  regular,
			ph:   payhead.Payhead{Calculation: payhead.CalcRepayment},
			pres: Presence{HasRepayment: true},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Applicable(tt.emp, tt.ph, tt.pres))
		})
	}
}
