package payroll

import "context"

// PayrollRepository defines data access for pay runs. The breakdowns table is
// the only resource the engine mutates, and only through upserts keyed by
// (payroll_id, payhead_id), which keeps repeated runs for a period safe.
type PayrollRepository interface {
	GetPayPeriod(ctx context.Context, id string) (PayPeriod, error)

	// GetUnprocessed returns the full stage-1 snapshot for a period:
	// payrolls, employees, the payhead catalogue with overrides, pending
	// cash advances and outstanding repayments, and benefit enrollments.
	GetUnprocessed(ctx context.Context, periodID string) (Snapshot, error)

	// UpsertBreakdowns commits one run's computed amounts in a single
	// transaction. Later writes replace earlier ones for the same
	// (payroll_id, payhead_id) pair.
	UpsertBreakdowns(ctx context.Context, rows []Breakdown) ([]Breakdown, error)

	// UpsertBreakdown re-prices a single row outside a full run.
	UpsertBreakdown(ctx context.Context, row Breakdown) (Breakdown, error)

	// GetBreakdownsByPeriod returns the persisted rows for payslip assembly.
	GetBreakdownsByPeriod(ctx context.Context, periodID string) ([]Breakdown, error)
}
