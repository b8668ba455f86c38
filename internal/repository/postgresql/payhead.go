package postgresql

import (
	"context"
	"fmt"

	"github.com/openpayroll/payroll-backend-go/internal/domain/payhead"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/database"
)

type payheadRepository struct {
	db *database.DB
}

func NewPayheadRepository(db *database.DB) payhead.PayheadRepository {
	return &payheadRepository{db: db}
}

func (r *payheadRepository) ListActive(ctx context.Context) ([]payhead.Payhead, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, type, COALESCE(variable, ''), COALESCE(calculation, ''),
			   COALESCE(affected_departments, '{}'), COALESCE(affected_job_classes, '{}'),
			   mandatory_regular, mandatory_probationary, system_only,
			   position, is_active, created_at, updated_at
		FROM payheads
		WHERE is_active = true
		ORDER BY position
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payheads: %w", err)
	}
	defer rows.Close()

	var payheads []payhead.Payhead
	for rows.Next() {
		var ph payhead.Payhead
		if err := rows.Scan(
			&ph.ID, &ph.Name, &ph.Type, &ph.Variable, &ph.Calculation,
			&ph.Affected.Departments, &ph.Affected.JobClasses,
			&ph.Affected.MandatoryRegular, &ph.Affected.MandatoryProbationary, &ph.Affected.SystemOnly,
			&ph.Position, &ph.IsActive, &ph.CreatedAt, &ph.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payhead: %w", err)
		}
		payheads = append(payheads, ph)
	}

	return payheads, nil
}

func (r *payheadRepository) ListSpecificAmounts(ctx context.Context) ([]payhead.SpecificAmount, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payhead_id, employee_id, amount
		FROM payhead_specific_amounts
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list specific amounts: %w", err)
	}
	defer rows.Close()

	var amounts []payhead.SpecificAmount
	for rows.Next() {
		var sa payhead.SpecificAmount
		if err := rows.Scan(&sa.ID, &sa.PayheadID, &sa.EmployeeID, &sa.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan specific amount: %w", err)
		}
		amounts = append(amounts, sa)
	}

	return amounts, nil
}
