package appointments

import (
	"errors"
	"net/http"

	"github.com/hsalameh/dental-clinic-platform/internal/http/respond"
)

var validationErrors = []error{
	ErrMissingPatientName,
	ErrInvalidPhone,
	ErrMissingDoctor,
	ErrInvalidDate,
	ErrMissingSlot,
	ErrMissingProcedure,
	ErrOtherNeedsNotes,
	ErrInvalidStatus,
	ErrUnknownDoctor,
	ErrUnknownProcedure,
}

// IsValidation reports whether err belongs to the pre-I/O validation
// class of the error taxonomy.
func IsValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// WriteError maps an appointment-domain error onto the HTTP surface.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrSlotTaken):
		respond.Error(w, http.StatusConflict, "slot_conflict", err)
	case errors.Is(err, ErrDayClosed):
		respond.Error(w, http.StatusConflict, "day_closed", err)
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(w, http.StatusConflict, "invalid_transition", err)
	case IsValidation(err):
		respond.Error(w, http.StatusBadRequest, "validation_error", err)
	default:
		respond.Error(w, http.StatusInternalServerError, "internal_error", err)
	}
}
