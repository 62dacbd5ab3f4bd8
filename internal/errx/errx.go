// Package errx provides the application error kinds shared by the store,
// the service and the outer surfaces (HTTP, CLI).
package errx

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	Unknown     Kind = iota
	NotFound         // no record for the code or tuple
	Conflict         // code uniqueness violated
	Invalid          // input cannot be canonicalized
	Unavailable      // store unreachable or failing
	Exhausted        // no free code within the attempt budget
	Internal
)

var kindInfo = [...]struct {
	name string
	code string
}{
	Unknown:     {"Unknown", "internal_error"},
	NotFound:    {"NotFound", "not_found"},
	Conflict:    {"Conflict", "conflict"},
	Invalid:     {"Invalid", "invalid_url"},
	Unavailable: {"Unavailable", "unavailable"},
	Exhausted:   {"Exhausted", "code_space_exhausted"},
	Internal:    {"Internal", "internal_error"},
}

func (k Kind) String() string {
	if int(k) < len(kindInfo) {
		return kindInfo[k].name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Code is the stable snake_case identifier reported to clients.
func (k Kind) Code() string {
	if int(k) < len(kindInfo) {
		return kindInfo[k].code
	}
	return "internal_error"
}

// Error carries the operation that failed and the kind of failure.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// E wraps err with op and kind. A nil err yields nil.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap adds op to err and keeps whatever kind err already carries.
func Wrap(op string, err error) error {
	return E(op, KindOf(err), err)
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Op
	case e.Op == "":
		return e.Err.Error()
	default:
		return e.Op + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the outermost kind attached to err, or Unknown.
func KindOf(err error) Kind {
	if e, ok := asError(err); ok {
		return e.Kind
	}
	return Unknown
}

// OpOf reports the outermost operation attached to err.
func OpOf(err error) string {
	if e, ok := asError(err); ok {
		return e.Op
	}
	return ""
}

// Is reports whether the outermost kind of err is kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
