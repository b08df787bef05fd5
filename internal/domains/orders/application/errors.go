package application

import (
	"errors"
	"fmt"

	"github.com/broasteria/broasteria/internal/domains/orders/domain"
	"github.com/broasteria/broasteria/internal/domains/orders/ports"
)

var (
	// ErrValidation signals the request violated a domain invariant.
	ErrValidation = errors.New("invalid order input")
	// ErrNotFound signals the order does not exist for the tenant.
	ErrNotFound = errors.New("order not found")
	// ErrStateConflict signals a status precondition was violated or a
	// concurrent writer won the race.
	ErrStateConflict = errors.New("order state conflict")
)

// StateConflictError carries the order's current status for diagnostics.
type StateConflictError struct {
	Current domain.Status
	Reason  string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s (current status: %s)", e.Reason, e.Current)
}

func (e *StateConflictError) Unwrap() error { return ErrStateConflict }

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, ports.ErrVersionConflict):
		return fmt.Errorf("%w: concurrent update detected", ErrStateConflict)
	case errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrNoItems),
		errors.Is(err, domain.ErrInvalidItem):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, domain.ErrTerminalStatus),
		errors.Is(err, domain.ErrNotAdjacent),
		errors.Is(err, domain.ErrNotCancellable):
		return fmt.Errorf("%w: %w", ErrStateConflict, err)
	}
	return err
}
