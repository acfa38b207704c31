package ports

import (
	"context"

	"rental/internal/core/domain/model/audit"
)

// StatusChangeRepository appends audit records. Records are never updated.
type StatusChangeRepository interface {
	Add(ctx context.Context, record audit.StatusChange) error
}
