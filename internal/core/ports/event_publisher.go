package ports

import (
	"context"

	"rental/internal/core/domain/model/audit"
)

// StatusChangePublisher announces committed status changes to other services.
// It is called after commit, so a failure must never undo the change.
type StatusChangePublisher interface {
	Publish(ctx context.Context, record audit.StatusChange) error
}
