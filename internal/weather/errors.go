package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when geocoding yields no match.
	ErrNotFound = errors.New("not found")
	// ErrTransport matches every TransportError.
	ErrTransport = errors.New("transport error")
	// ErrValidation matches every ValidationError.
	ErrValidation = errors.New("validation error")
	// ErrUnknownFilter is returned by ParseFilter for unrecognized keys.
	ErrUnknownFilter = errors.New("unknown trend filter")
)

// ValidationError reports bad city-name input. It never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports a city the geocoder could not match.
type NotFoundError struct {
	City string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("City %q not found", e.City)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TransportError wraps network, timeout and upstream status failures.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// NewTransportError wraps err unless it already is a TransportError.
func NewTransportError(op string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}
