// Package kernel provides the shared value objects of the rental domain.
//
// The package includes:
//   - UUID: identifier for orders and audit records
//   - Date: a calendar day normalized to UTC midnight, the unit of all rental
//     day arithmetic
//   - money helpers: validation and half-away-from-zero rounding of
//     shopspring/decimal amounts
//
// All types are immutable values and safe for concurrent use.
package kernel
