package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrValueIsRequired   = errors.New("value is required")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrConflict          = errors.New("conflict")
)

// sanitize keeps user-provided values on a single line in error messages.
func sanitize(v any) string {
	s := fmt.Sprintf("%v", v)
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %v)", msg, cause)
}

// ObjectNotFoundError is returned when a repository lookup finds nothing.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that failed a business rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName), e.Cause)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside of [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string, value, minValue, maxValue any, cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	return withCause(fmt.Sprintf("%s: %s is %s, min value is %s, max value is %s",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max)), e.Cause)
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName), e.Cause)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// InvalidTransitionError is returned when the requested status is not reachable
// from the current one. Callers pick another status; it is never retried.
type InvalidTransitionError struct {
	From   string
	To     string
	Reason string
}

func NewInvalidTransitionError(from, to, reason string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to, Reason: reason}
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// InvalidStateError is returned when an operation's precondition on the
// current state of an entity does not hold.
type InvalidStateError struct {
	Entity    string
	Operation string
	State     string
	Cause     error
}

func NewInvalidStateError(entity, operation, state string) *InvalidStateError {
	return &InvalidStateError{Entity: entity, Operation: operation, State: state}
}

func NewInvalidStateErrorWithCause(entity, operation, state string, cause error) *InvalidStateError {
	return &InvalidStateError{Entity: entity, Operation: operation, State: state, Cause: cause}
}

func (e *InvalidStateError) Error() string {
	return withCause(fmt.Sprintf("%s: cannot %s %s in state %s",
		ErrInvalidState, e.Operation, e.Entity, e.State), e.Cause)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// InvalidDateError reports a missing, unparseable or inconsistent date input.
type InvalidDateError struct {
	ParamName string
	Value     string
	Cause     error
}

func NewInvalidDateError(paramName, value string) *InvalidDateError {
	return &InvalidDateError{ParamName: paramName, Value: value}
}

func NewInvalidDateErrorWithCause(paramName, value string, cause error) *InvalidDateError {
	return &InvalidDateError{ParamName: paramName, Value: value, Cause: cause}
}

func (e *InvalidDateError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrInvalidDate, e.ParamName)
	if e.Value != "" {
		msg += fmt.Sprintf(" is %q", sanitize(e.Value))
	}
	return withCause(msg, e.Cause)
}

func (e *InvalidDateError) Unwrap() error {
	return ErrInvalidDate
}

// InvalidAmountError reports a negative price, quantity or deduction.
type InvalidAmountError struct {
	ParamName string
	Value     any
}

func NewInvalidAmountError(paramName string, value any) *InvalidAmountError {
	return &InvalidAmountError{ParamName: paramName, Value: value}
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s: %s is %s", ErrInvalidAmount, e.ParamName, sanitize(e.Value))
}

func (e *InvalidAmountError) Unwrap() error {
	return ErrInvalidAmount
}

// ConflictError is returned when an optimistic-concurrency check fails.
// The caller must re-read the entity and retry from scratch.
type ConflictError struct {
	Entity          string
	ID              any
	ExpectedVersion int64
}

func NewConflictError(entity string, id any, expectedVersion int64) *ConflictError {
	return &ConflictError{Entity: entity, ID: id, ExpectedVersion: expectedVersion}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s %s was modified concurrently (expected version %d)",
		ErrConflict, e.Entity, sanitize(e.ID), e.ExpectedVersion)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
