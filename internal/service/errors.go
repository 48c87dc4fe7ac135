package service

import (
	"errors"

	"domsync/internal/contentmodel"
	"domsync/internal/identifier"
	"domsync/internal/model"
	"domsync/internal/repository"
)

// Error kinds. Every failure returned by EntityService matches exactly one of
// ErrCommunication, ErrUnauthorized, ErrNotFound, ErrParsing, ErrAlreadyExists,
// ErrAmbiguousIdentifier, ErrInvalidEntity or ErrIDRequired via errors.Is.
var (
	ErrCommunication       = errors.New("repository communication failed")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrParsing             = errors.New("parsing failed")
	ErrAlreadyExists       = errors.New("entity already exists")
	ErrAmbiguousIdentifier = errors.New("identifier matches more than one object")
	ErrInvalidEntity       = errors.New("invalid entity")
	ErrIDRequired          = errors.New("id is required")
)

// OpError is the single typed failure of an operation. It unwraps to both its Kind
// and the underlying cause, so errors.Is(err, repository.ErrNotFound) keeps working.
type OpError struct {
	Op   string
	PID  string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	msg := e.Op
	if e.PID != "" {
		msg += " " + e.PID
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// fail maps err once; errors that already carry a kind pass through unchanged.
func fail(op, pid string, kind, err error) error {
	var oe *OpError
	if errors.As(err, &oe) {
		return err
	}
	return &OpError{Op: op, PID: pid, Kind: kind, Err: err}
}

func isParsing(err error) bool {
	return errors.Is(err, contentmodel.ErrInvalidDocument) ||
		errors.Is(err, model.ErrInvalidMetadata) ||
		errors.Is(err, identifier.ErrNotFound) ||
		errors.Is(err, identifier.ErrMalformedRecord)
}

// classify picks the kind of a lower-level error. notFound is the kind used when the
// repository reports a missing resource: ErrNotFound on reads, ErrCommunication on writes.
func classify(err, notFound error) error {
	switch {
	case errors.Is(err, repository.ErrUnauthorized):
		return ErrUnauthorized
	case errors.Is(err, ErrInvalidEntity):
		return ErrInvalidEntity
	case isParsing(err):
		return ErrParsing
	case errors.Is(err, contentmodel.ErrFetch):
		return ErrCommunication
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	default:
		return ErrCommunication
	}
}
