package order

import (
	"fmt"
	"slices"

	"rental/internal/pkg/errs"
)

const (
	ProfileFull   = "full"
	ProfileSimple = "simple"
)

// Profile is a named status graph. Both graphs share the same enum, terminal
// states and validation rules; they differ only in their transition table and
// in which states count as "active" (goods are with the customer).
//
// Profile is immutable and safe for concurrent use.
type Profile struct {
	name        string
	order       []Status
	transitions map[Status][]Status
	active      []Status
}

// TransitionCheck is the non-failing form of ValidateTransition.
type TransitionCheck struct {
	Allowed bool
	Reason  string
}

// FullProfile is the eight-state delivery flow.
func FullProfile() Profile {
	return Profile{
		name:  ProfileFull,
		order: []Status{Pending, Confirmed, OutForDelivery, Delivered, InUse, ReturnScheduled, Completed, Cancelled},
		transitions: map[Status][]Status{
			Pending:         {Confirmed, Cancelled},
			Confirmed:       {OutForDelivery, Cancelled},
			OutForDelivery:  {Delivered, Cancelled},
			Delivered:       {InUse, ReturnScheduled, Completed, Cancelled},
			InUse:           {ReturnScheduled, Completed, Cancelled},
			ReturnScheduled: {Completed, Cancelled},
			Completed:       {},
			Cancelled:       {},
		},
		active: []Status{Delivered, InUse, ReturnScheduled},
	}
}

// SimpleProfile is the reduced five-state flow.
func SimpleProfile() Profile {
	return Profile{
		name:  ProfileSimple,
		order: []Status{Pending, Confirmed, InProgress, Completed, Cancelled},
		transitions: map[Status][]Status{
			Pending:    {Confirmed, Cancelled},
			Confirmed:  {InProgress, Cancelled},
			InProgress: {Completed, Cancelled},
			Completed:  {},
			Cancelled:  {},
		},
		active: []Status{InProgress},
	}
}

// ProfileByName resolves "full" or "simple".
func ProfileByName(name string) (Profile, error) {
	switch name {
	case ProfileFull:
		return FullProfile(), nil
	case ProfileSimple:
		return SimpleProfile(), nil
	default:
		return Profile{}, errs.NewValueIsInvalidErrorWithCause("profile",
			fmt.Errorf("%q is not one of %q, %q", name, ProfileFull, ProfileSimple))
	}
}

func (p Profile) Name() string {
	return p.name
}

// Statuses returns the profile's states in flow order.
func (p Profile) Statuses() []Status {
	return slices.Clone(p.order)
}

// Has reports whether s belongs to the profile.
func (p Profile) Has(s Status) bool {
	_, ok := p.transitions[s]
	return ok
}

// IsActive reports whether s is one of the profile's active states. Deposits
// can only be collected while the order is active.
func (p Profile) IsActive(s Status) bool {
	return slices.Contains(p.active, s)
}

// IsDateBearing reports whether moving from -> to needs an actual date: entering
// the active phase records the pickup day, completion records the return day.
func (p Profile) IsDateBearing(from, to Status) bool {
	if to == Completed {
		return true
	}
	return p.IsActive(to) && !p.IsActive(from)
}

// AllowedTransitions lists the states reachable from current in one step.
// It is empty for terminal states and for states outside the profile.
func (p Profile) AllowedTransitions(current Status) []Status {
	return slices.Clone(p.transitions[current])
}

// ValidateTransition fails with an InvalidTransitionError unless requested is in
// the transition set of current. Self-transitions are always rejected.
func (p Profile) ValidateTransition(current, requested Status) error {
	check := p.CheckTransition(current, requested)
	if !check.Allowed {
		return errs.NewInvalidTransitionError(current.String(), requested.String(), check.Reason)
	}
	return nil
}

// CheckTransition explains why a transition is or is not allowed.
func (p Profile) CheckTransition(current, requested Status) TransitionCheck {
	switch {
	case !p.Has(current):
		return TransitionCheck{Reason: fmt.Sprintf("%s is not a status of the %s profile", current, p.name)}
	case !p.Has(requested):
		return TransitionCheck{Reason: fmt.Sprintf("%s is not a status of the %s profile", requested, p.name)}
	case current.IsTerminal():
		return TransitionCheck{Reason: fmt.Sprintf("%s is a terminal status", current)}
	case current == requested:
		return TransitionCheck{Reason: fmt.Sprintf("order is already %s", current)}
	case !slices.Contains(p.transitions[current], requested):
		return TransitionCheck{Reason: fmt.Sprintf("%s is not reachable from %s", requested, current)}
	default:
		return TransitionCheck{Allowed: true}
	}
}
