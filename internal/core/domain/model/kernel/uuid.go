package kernel

import (
	"rental/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed is returned for the nil identifier.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError("id")

// UUID identifies orders and status-change records. The zero value is the nil
// identifier and never valid.
type UUID struct {
	id uuid.UUID
}

func NewUUID() UUID {
	return UUID{id: uuid.New()}
}

// UUIDFromString parses an identifier taken from a request path or payload.
// Malformed input is a ValueIsInvalid error so callers can map it to a 400;
// the nil identifier is ErrUUIDIsNotConstructed.
func UUIDFromString(s string) (UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, errs.NewValueIsInvalidErrorWithCause("id", err)
	}
	return restoreUUID(parsed)
}

// UUIDFromBytes restores an identifier read back from a uuid column.
func UUIDFromBytes(b []byte) (UUID, error) {
	parsed, err := uuid.FromBytes(b)
	if err != nil {
		return UUID{}, errs.NewValueIsInvalidErrorWithCause("id", err)
	}
	return restoreUUID(parsed)
}

func restoreUUID(raw uuid.UUID) (UUID, error) {
	u := UUID{id: raw}
	if err := u.Validate(); err != nil {
		return UUID{}, err
	}
	return u, nil
}

func (u UUID) String() string {
	return u.id.String()
}

// Bytes exposes the raw value for the gorm models.
func (u UUID) Bytes() uuid.UUID {
	return u.id
}

func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}
