// Package errs provides standardized error types for the rental application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes the shared validation errors:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ValueIsOutOfRangeError: For when a value falls outside its bounds
//   - ObjectNotFoundError: For when an object cannot be found
//
// and the order engine errors that callers are expected to branch on:
//   - InvalidTransitionError: requested status not reachable from the current one
//   - InvalidStateError: deposit operation attempted outside its precondition
//   - InvalidDateError: missing, unparseable or inconsistent date input
//   - InvalidAmountError: negative price, quantity or deduction
//   - ConflictError: lost optimistic-concurrency race, re-read and retry
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so errors.Is works
package errs
