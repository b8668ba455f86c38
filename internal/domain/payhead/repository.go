package payhead

import "context"

// PayheadRepository defines read access to the payhead catalogue.
// The catalogue is configuration: read-only for the duration of a pay run.
type PayheadRepository interface {
	// ListActive returns active payheads in catalogue order.
	ListActive(ctx context.Context) ([]Payhead, error)
	// ListSpecificAmounts returns every per-employee override row.
	ListSpecificAmounts(ctx context.Context) ([]SpecificAmount, error)
}
