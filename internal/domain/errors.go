package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateIdentifier is returned when an id is already used by an entity of the same kind.
	ErrDuplicateIdentifier = errors.New("domain: duplicate identifier")
	// ErrOutOfBounds is returned when an offset lies outside [0, length] or a range is inverted.
	ErrOutOfBounds = errors.New("domain: offset out of bounds")
	// ErrEndpointConsumed is returned when an endpoint is bound to more than one link or switch port.
	ErrEndpointConsumed = errors.New("domain: endpoint already consumed")
	// ErrArityMismatch is returned when a switch port set does not match its switch type.
	ErrArityMismatch = errors.New("domain: switch arity mismatch")
	// ErrUnknownVariant is returned for unsupported signaling systems, switch types or enum values.
	ErrUnknownVariant = errors.New("domain: unknown variant")
	// ErrSelfLink is returned when a link joins two endpoints of the same track section.
	ErrSelfLink = errors.New("domain: link joins a track section to itself")
	// ErrUnknownTrack is returned when an object references a track section that does not exist.
	ErrUnknownTrack = errors.New("domain: unknown track section")
	// ErrBuilt is returned when mutating an infrastructure that has already been built.
	ErrBuilt = errors.New("domain: infrastructure already built")
)

// ValidationError pinpoints the entity and field responsible for a failure.
type ValidationError struct {
	Entity EntityKind
	ID     string
	Field  string
	Detail string
	Err    error
}

// Invalid creates a ValidationError. Detail is formatted with args.
func Invalid(entity EntityKind, id, field string, err error, detail string, args ...any) *ValidationError {
	return &ValidationError{
		Entity: entity,
		ID:     id,
		Field:  field,
		Detail: fmt.Sprintf(detail, args...),
		Err:    err,
	}
}

func (e *ValidationError) Error() string {
	msg := string(e.Entity)
	if e.ID != "" {
		msg += " " + e.ID
	}
	if e.Field != "" {
		msg += ": " + e.Field
	}
	msg += ": " + e.Err.Error()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
