// Package guard provides ConstructorGuard, a marker embedded in value objects,
// commands and queries to tell instances built by their constructor apart from
// zero values.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller passes a nil error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether the enclosing object went through its constructor.
// Only NewConstructorGuard produces a guard that validates; the zero value never does.
//
// Example:
//
//	var ErrCollectDepositCommandIsNotConstructed = errors.New(
//	    "CollectDepositCommand must be created via NewCollectDepositCommand constructor")
//
//	type CollectDepositCommand struct {
//	    orderID kernel.UUID
//	    amount  decimal.Decimal
//	    guard   guard.ConstructorGuard
//	}
//
//	func (c CollectDepositCommand) Validate() error {
//	    return c.guard.Validate(ErrCollectDepositCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed. Call it only from constructors.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, and nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
