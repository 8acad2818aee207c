// Package apperr classifies domain failures so transports can map them without knowing every
// concrete error type.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
	// KindConsistency marks a broken internal invariant. It is never retried automatically.
	KindConsistency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindConsistency:
		return "consistency"
	default:
		return "internal"
	}
}

type kinded interface {
	Kind() Kind
}

// KindOf walks the wrap chain and returns the first classified kind, KindInternal otherwise.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// Error is the generic classified error for cases that do not deserve their own type.
type Error struct {
	kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }
func (e *Error) Kind() Kind    { return e.kind }

func Validation(format string, args ...any) error {
	return &Error{kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &Error{kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Entity, e.ID) }
func (e *NotFoundError) Kind() Kind    { return KindNotFound }

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// VersionConflictError is returned by sync appliers when the server copy is newer than the one
// the client based its change on. Current holds the server record for the client to adopt.
type VersionConflictError struct {
	Entity        string
	ID            string
	ServerVersion int64
	ClientVersion int64
	Current       any
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s %s: server version %d is ahead of client version %d",
		e.Entity, e.ID, e.ServerVersion, e.ClientVersion)
}

func (e *VersionConflictError) Kind() Kind { return KindConflict }
