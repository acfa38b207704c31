// Package services provides the domain services that compute the financial
// effect of an order's lifecycle.
//
// The package includes:
//   - UsageCalculator: planned vs. actual dates to day counts and an
//     early / within-grace / late classification
//   - PricingEngine: order totals at creation and the return adjustment
//     (minimum charge for early returns, penalty for late ones)
//   - StatusChangeCoordinator: validates a status change and combines the two
//     above with deposit settlement into one new order snapshot and audit record
//
// All services are value types without shared state and never read the clock;
// dates and timestamps are always inputs.
package services
