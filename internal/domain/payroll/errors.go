package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrPayPeriodNotFound = errors.New("pay period not found")
	ErrPayrollNotFound   = errors.New("payroll not found")
	ErrNothingToProcess  = errors.New("no unprocessed payrolls for this period")
)

// Stage identifies a pipeline stage for error reporting.
type Stage int

const (
	StageFetch Stage = iota + 1
	StageCompute
	StageCommit
)

func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "fetch"
	case StageCompute:
		return "compute"
	case StageCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// StageError marks a failure that is fatal to the whole pipeline run.
// Per-employee degradations never surface as a StageError; only stage-1
// retrieval and stage-3 commit failures do.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("payroll stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
