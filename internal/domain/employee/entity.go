package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the read-only snapshot the payroll engine works from.
// Employee CRUD lives in an external system; this engine never mutates it.
type Employee struct {
	ID               string
	FullName         string
	DepartmentID     string
	JobClassID       string
	BranchID         string
	EmploymentStatus EmploymentStatus
	BaseSalary       decimal.Decimal // from the salary grade
	RatePerHour      decimal.Decimal // from the job class; zero means "use configured default"
	HireDate         time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusRegular      EmploymentStatus = "regular"
	EmploymentStatusProbationary EmploymentStatus = "probationary"
)

func (e Employee) IsRegular() bool {
	return e.EmploymentStatus == EmploymentStatusRegular
}

func (e Employee) IsProbationary() bool {
	return e.EmploymentStatus == EmploymentStatusProbationary
}
