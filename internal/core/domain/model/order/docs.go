// Package order holds the rental order aggregate and the two state machines
// that govern it.
//
// The package includes:
//   - Order: the aggregate root, handled as immutable snapshots with a version token
//   - Status and Profile: the order status enum and the named transition tables
//     ("full" and "simple") that decide which changes are legal
//   - Item: an order line with an optional per-line day override
//   - Deposit and DepositLedger: the security deposit and the only operations
//     allowed to move it through pending, collected, refunded and forfeited
//
// Key business rules:
//   - completed and cancelled are terminal in every profile
//   - a transition to the current status is always rejected
//   - a deposit is collected only while the order is active and settled only
//     once it is completed
//   - an over-deducted deposit is forfeited with a refund of zero; the raw
//     deduction is kept
package order
