package handlers

import (
	"errors"
	"time"

	"github.com/formgate/formgate-api/internal/services"
	"github.com/formgate/formgate-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

// respondFieldErrors writes a 400 with the field error map when err is a
// services.FieldErrors; reports whether it handled the error.
func respondFieldErrors(c *drift.Context, err error) bool {
	var fieldErrs services.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return false
	}
	_ = c.JSON(400, dto.ValidationErrorResponse{
		Detail: "Validation failed",
		Errors: fieldErrs,
	})
	return true
}
