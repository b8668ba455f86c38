package payroll

import (
	"context"

	"github.com/openpayroll/payroll-backend-go/internal/domain/payhead"
)

// PayrollService is the staging engine's surface. Process runs the full
// three-stage pipeline; the rest are read/re-price operations over its output.
type PayrollService interface {
	// Process runs fetch -> compute -> commit for one pay period. progress
	// receives human-readable stage messages; it is advisory only and may
	// be nil.
	Process(ctx context.Context, req ProcessRequest, progress func(string)) (PayslipData, error)

	// Payslip assembles the persisted payslip data set without recomputing.
	Payslip(ctx context.Context, periodID string) (PayslipData, error)

	// Reprice upserts a single breakdown row outside a full run.
	Reprice(ctx context.Context, req RepriceBreakdownRequest) (Breakdown, error)

	// Payheads returns the active catalogue in evaluation order.
	Payheads(ctx context.Context) ([]payhead.Payhead, error)
}
