package order

import (
	"fmt"

	"rental/internal/pkg/errs"
)

// Status is the lifecycle state of a rental order. The union of both
// profiles' states lives in one enum; which of them an order may visit is
// decided by its Profile.
//
// Full profile:
//
//	pending ─> confirmed ─> out_for_delivery ─> delivered ─┬─> in_use ─┬─> return_scheduled ─┐
//	                                                       │           │                     │
//	                                                       └───────────┴──────> completed <──┘
//	(every non-terminal state may also move to cancelled)
//
// Simple profile:
//
//	pending ─> confirmed ─> in_progress ─> completed
type Status int

const (
	// Unknown is the zero value and never a valid status.
	Unknown Status = iota
	Pending
	Confirmed
	OutForDelivery
	Delivered
	InUse
	ReturnScheduled
	InProgress
	Completed
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "unknown",
		Pending:         "pending",
		Confirmed:       "confirmed",
		OutForDelivery:  "out_for_delivery",
		Delivered:       "delivered",
		InUse:           "in_use",
		ReturnScheduled: "return_scheduled",
		InProgress:      "in_progress",
		Completed:       "completed",
		Cancelled:       "cancelled",
	}
}

// Statuses lists every valid status in declaration order.
func Statuses() []Status {
	return []Status{
		Pending, Confirmed, OutForDelivery, Delivered, InUse,
		ReturnScheduled, InProgress, Completed, Cancelled,
	}
}

// ParseStatus maps the wire/storage name (e.g. "out_for_delivery") to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the snake_case name used on the wire and in storage.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no transition may leave s. Terminal states are
// the same in every profile.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}
