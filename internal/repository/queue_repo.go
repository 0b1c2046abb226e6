package repository

import (
	"context"
	"errors"
	"time"

	"github.com/romeolab/agenda-notify/internal/domain"
	"gorm.io/gorm"
)

var effectiveStatuses = []domain.Status{
	domain.StatusPending,
	domain.StatusProcessing,
	domain.StatusSent,
}

type QueueRepository interface {
	Create(ctx context.Context, item *domain.QueueItem) error
	HasEffective(ctx context.Context, channel domain.Channel, bookingID int64) (bool, error)
	FetchDispatchable(ctx context.Context, now time.Time, limit int) ([]domain.QueueItem, error)
	MarkProcessing(ctx context.Context, id int64) error
	MarkSent(ctx context.Context, id int64, processedAt time.Time) error
	MarkFailed(ctx context.Context, id int64, processedAt time.Time, reason string) error
}

type GormQueueRepo struct {
	db *gorm.DB
}

func NewGormQueueRepo(db *gorm.DB) *GormQueueRepo {
	return &GormQueueRepo{db: db}
}

// Create inserts a pending queue row. A concurrent duplicate for the same
// (channel, booking_id) loses against the partial unique index and comes
// back as domain.ErrConflict.
func (r *GormQueueRepo) Create(ctx context.Context, item *domain.QueueItem) error {
	model := queueItemModelFromDomain(item)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return err
	}
	if item != nil {
		*item = *queueItemModelToDomain(model)
	}
	return nil
}

// HasEffective reports whether a pending, processing or sent row already
// exists for the booking on this channel. Failed rows do not count.
func (r *GormQueueRepo) HasEffective(ctx context.Context, channel domain.Channel, bookingID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&QueueItemModel{}).
		Where("channel = ? AND booking_id = ? AND status IN ?", channel, bookingID, effectiveStatuses).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FetchDispatchable returns pending rows whose scheduled time has passed
// (or was never set), highest priority first, oldest first within a
// priority.
func (r *GormQueueRepo) FetchDispatchable(ctx context.Context, now time.Time, limit int) ([]domain.QueueItem, error) {
	var models []QueueItemModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND (scheduled_at IS NULL OR scheduled_at <= ?)", domain.StatusPending, now).
		Order("priority ASC, COALESCE(scheduled_at, created_at) ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	items := make([]domain.QueueItem, 0, len(models))
	for i := range models {
		items = append(items, *queueItemModelToDomain(&models[i]))
	}

	return items, nil
}

// MarkProcessing claims a pending row. Returns domain.ErrConflict when
// another worker got there first.
func (r *GormQueueRepo) MarkProcessing(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&QueueItemModel{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Update("status", domain.StatusProcessing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *GormQueueRepo) MarkSent(ctx context.Context, id int64, processedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&QueueItemModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       domain.StatusSent,
			"processed_at": processedAt,
			"error":        nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormQueueRepo) MarkFailed(ctx context.Context, id int64, processedAt time.Time, reason string) error {
	result := r.db.WithContext(ctx).
		Model(&QueueItemModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       domain.StatusFailed,
			"processed_at": processedAt,
			"error":        reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
