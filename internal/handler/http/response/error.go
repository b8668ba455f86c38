package response

import (
	"errors"
	"net/http"

	"github.com/openpayroll/payroll-backend-go/internal/domain/payhead"
	"github.com/openpayroll/payroll-backend-go/internal/domain/payroll"
	"github.com/openpayroll/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayPeriodNotFound):
		NotFound(w, "Pay period not found")
	case errors.Is(err, payroll.ErrPayrollNotFound):
		NotFound(w, "Payroll not found")
	case errors.Is(err, payroll.ErrNothingToProcess):
		UnprocessableEntity(w, "No unprocessed payrolls in this period")

	// Payhead domain errors
	case errors.Is(err, payhead.ErrPayheadNotFound):
		NotFound(w, "Payhead not found")

	// Default
	default:
		var stageErr *payroll.StageError
		if errors.As(err, &stageErr) {
			InternalServerError(w, "Pay run failed during the "+stageErr.Stage.String()+" stage")
			return
		}
		InternalServerError(w, "An unexpected error occurred")
	}
}
