package kernel

import (
	"time"

	"rental/internal/pkg/errs"
)

// DateLayout is the wire and storage format of a Date.
const DateLayout = "2006-01-02"

const hoursPerDay = 24

// Date is a calendar day. Every Date is normalized to midnight UTC so day
// differences are whole numbers regardless of time of day or the caller's zone.
// The zero value is invalid; use NewDate or ParseDate.
type Date struct { //nolint:recvcheck //using for validation
	t             time.Time
	isConstructed bool
}

// NewDate keeps the calendar day of t as seen in t's own location and drops the time of day.
func NewDate(t time.Time) Date {
	return Date{
		t:             time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
		isConstructed: true,
	}
}

// NewDateYMD builds a Date from its components. Out-of-range components are
// normalized by time.Date (e.g. January 32 becomes February 1).
func NewDateYMD(year int, month time.Month, day int) Date {
	return NewDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses "YYYY-MM-DD". An empty string or any other layout fails with an InvalidDateError
// naming paramName.
func ParseDate(paramName, value string) (Date, error) {
	if value == "" {
		return Date{}, errs.NewInvalidDateError(paramName, "")
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, errs.NewInvalidDateErrorWithCause(paramName, value, err)
	}
	return NewDate(t), nil
}

// ParseOptionalDate is ParseDate that maps an empty string to a zero Date.
func ParseOptionalDate(paramName, value string) (Date, error) {
	if value == "" {
		return Date{}, nil
	}
	return ParseDate(paramName, value)
}

// Validate returns an InvalidDateError naming paramName when d is the zero value.
func (d Date) Validate(paramName string) error {
	if !d.isConstructed {
		return errs.NewInvalidDateError(paramName, "")
	}
	return nil
}

// IsZero reports whether d was never constructed.
func (d Date) IsZero() bool {
	return !d.isConstructed
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return d.t
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return NewDate(d.t.AddDate(0, 0, n))
}

// DaysSince returns the whole number of days from other to d, negative when d is earlier.
func (d Date) DaysSince(other Date) int {
	return int(d.t.Sub(other.t).Hours() / hoursPerDay)
}

func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// String formats the date as "YYYY-MM-DD", or "" for the zero value.
func (d Date) String() string {
	if !d.isConstructed {
		return ""
	}
	return d.t.Format(DateLayout)
}
