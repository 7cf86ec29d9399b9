package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Sentinel errors for the matching engine. Services wrap these with
// fmt.Errorf("...: %w", Err...) and the transport layer dispatches on them
// with errors.Is.
var (
	// ErrValidation marks bad caller input: unknown action values,
	// missing target IDs, absent auth context.
	ErrValidation = errors.New("validation error")

	// ErrDuplicateAction marks a decide call on a pair the actor has
	// already decided on. Distinct from validation so the UI can show
	// "already responded".
	ErrDuplicateAction = errors.New("duplicate action")

	// ErrNotFound marks a missing requester or target profile.
	ErrNotFound = errors.New("not found")

	// ErrStoreConflict marks a transaction conflict during mutual-match
	// promotion after internal retries are exhausted.
	ErrStoreConflict = errors.New("store conflict")

	// ErrDependencyUnavailable marks an unreachable store or repository.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Map converts store/infra errors into the engine's taxonomy. Keeps the
// service layer clean by centralizing the translation.
func Map(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrDuplicateAction),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrStoreConflict),
		errors.Is(err, ErrDependencyUnavailable):
		return err

	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%v: %w", err, ErrNotFound)

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%v: %w", err, ErrDuplicateAction)

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fmt.Errorf("%v: %w", err, ErrDependencyUnavailable)

	default:
		return fmt.Errorf("%v: %w", err, ErrDependencyUnavailable)
	}
}

// HTTPStatus maps a taxonomy error to the status code the transport
// surfaces.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateAction):
		return http.StatusConflict
	case errors.Is(err, ErrStoreConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable error code for JSON error bodies.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrDuplicateAction):
		return "DUPLICATE_ACTION"
	case errors.Is(err, ErrStoreConflict):
		return "STORE_CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}
