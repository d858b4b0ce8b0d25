package exam

import (
	"errors"
	"fmt"
	"strings"
)

// The failure kinds callers need to tell apart. Every fallible path
// returns one of these (possibly wrapped) rather than a bare false or a
// generic error, so the API layer can map them to distinct responses.

// FormatError reports an unparsable date or time string. Recoverable by
// the caller re-prompting.
type FormatError struct {
	Field string
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: cannot parse %q (want YYYY-MM-DD dates, HH:MM times)", e.Field, e.Value)
}

// NotFoundError reports an absent exam, question, submission, or user.
type NotFoundError struct {
	Kind string // "exam", "question", "submission", "user"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ValidationError aggregates every violation found in one pass; it is
// never returned partially filled.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// LockViolation reports a write attempted after the grading deadline or
// after finalization. The data may be well-formed; the action is no
// longer permitted.
type LockViolation struct {
	Reason string
}

func (e *LockViolation) Error() string {
	return "grading locked: " + e.Reason
}

// StateConflict reports an at-most-once operation attempted twice:
// double submission, double finalize, double publish.
type StateConflict struct {
	Reason string
}

func (e *StateConflict) Error() string {
	return "state conflict: " + e.Reason
}

func IsFormat(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsLockViolation(err error) bool {
	var lv *LockViolation
	return errors.As(err, &lv)
}

func IsStateConflict(err error) bool {
	var sc *StateConflict
	return errors.As(err, &sc)
}
