// Package errs is the error taxonomy shared by every layer of the credit
// service. Presentation adapters translate a Kind into a transport status.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the caller should react to it.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindPermission
	KindNotFound
	KindConflict
	KindIllegalTransition
	KindExternalDependency
)

var kindNames = map[Kind]string{
	KindUnknown:            "UNKNOWN",
	KindValidation:         "VALIDATION_ERROR",
	KindPermission:         "PERMISSION_DENIED",
	KindNotFound:           "NOT_FOUND",
	KindConflict:           "CONFLICT",
	KindIllegalTransition:  "ILLEGAL_TRANSITION",
	KindExternalDependency: "EXTERNAL_DEPENDENCY",
}

// String returns the machine-readable code for the kind.
func (k Kind) String() string { return kindNames[k] }

// Sentinels for errors.Is checks against a kind.
var (
	ErrValidation         = errors.New("validation error")
	ErrPermission         = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("concurrent modification")
	ErrIllegalTransition  = errors.New("illegal transition")
	ErrExternalDependency = errors.New("external dependency unavailable")
)

var sentinels = map[Kind]error{
	KindValidation:         ErrValidation,
	KindPermission:         ErrPermission,
	KindNotFound:           ErrNotFound,
	KindConflict:           ErrConflict,
	KindIllegalTransition:  ErrIllegalTransition,
	KindExternalDependency: ErrExternalDependency,
}

// Error carries a Kind, the operation that failed and a human-readable reason.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = sentinels[e.Kind].Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Reason returns the human-readable message of the first *Error in err's
// chain, falling back to err.Error().
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

func newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Validation(op, format string, args ...any) error {
	return newf(KindValidation, op, format, args...)
}

func Permission(op, format string, args ...any) error {
	return newf(KindPermission, op, format, args...)
}

func NotFound(op, format string, args ...any) error {
	return newf(KindNotFound, op, format, args...)
}

func Conflict(op, format string, args ...any) error {
	return newf(KindConflict, op, format, args...)
}

// IllegalTransition names the current status and the rejected action.
func IllegalTransition(op, status, action string) error {
	return newf(KindIllegalTransition, op, "action %s is not allowed from status %s", action, status)
}

// External wraps a failure of storage or an oracle.
func External(op string, err error) error {
	return &Error{Kind: KindExternalDependency, Op: op, Message: "dependency unavailable", Err: err}
}
