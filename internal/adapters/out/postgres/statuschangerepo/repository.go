package statuschangerepo

import (
	"context"

	"rental/internal/core/domain/model/audit"
	"rental/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// GormStatusChangeRepository implements StatusChangeRepository using GORM.
type GormStatusChangeRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

func NewGormStatusChangeRepository(db *gorm.DB, tracker aggregateTracker) *GormStatusChangeRepository {
	return &GormStatusChangeRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add appends one audit record.
func (r *GormStatusChangeRepository) Add(ctx context.Context, record audit.StatusChange) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto := fromDomain(record)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(record.ID, record)
	return nil
}
