package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/romeolab/agenda-notify/internal/domain"
	"gorm.io/gorm"
)

type OutboxRepository interface {
	Enqueue(ctx context.Context, item *domain.OutboxItem) error
	FetchDispatchable(ctx context.Context, now time.Time, limit int) ([]domain.OutboxItem, error)
	MarkSent(ctx context.Context, id string, providerMessageID string, now time.Time) error
	MarkFailedWithRetry(ctx context.Context, id string, reason domain.FailureReason, detail string, now time.Time) error
	GetConfig(ctx context.Context, businessID int64) (*domain.ChannelConfig, error)
	HasApprovedTemplate(ctx context.Context, businessID int64, name, language string) (bool, error)
	HasValidConsent(ctx context.Context, businessID, customerID int64) (bool, error)
	CountRecentSends(ctx context.Context, businessID int64, since time.Time) (int64, error)
	CountDailySends(ctx context.Context, businessID int64, dayStart time.Time) (int64, error)
	LogMessage(ctx context.Context, log *domain.MessageLog) error
}

type GormOutboxRepo struct {
	db *gorm.DB
}

func NewGormOutboxRepo(db *gorm.DB) *GormOutboxRepo {
	return &GormOutboxRepo{db: db}
}

func (r *GormOutboxRepo) Enqueue(ctx context.Context, item *domain.OutboxItem) error {
	if item == nil {
		return domain.ErrValidation
	}
	if err := item.Validate(); err != nil {
		return err
	}

	model := outboxItemModelFromDomain(item)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	if model.Status == "" {
		model.Status = domain.OutboxQueued
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	*item = *outboxItemModelToDomain(model)
	return nil
}

// FetchDispatchable returns queued rows that are either fresh or whose
// backoff window has elapsed, and that still have attempts left.
func (r *GormOutboxRepo) FetchDispatchable(ctx context.Context, now time.Time, limit int) ([]domain.OutboxItem, error) {
	var models []OutboxItemModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND retry_count < ? AND (next_retry_at IS NULL OR next_retry_at <= ?)",
			domain.OutboxQueued, domain.MaxOutboxAttempts, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	items := make([]domain.OutboxItem, 0, len(models))
	for i := range models {
		items = append(items, *outboxItemModelToDomain(&models[i]))
	}

	return items, nil
}

func (r *GormOutboxRepo) MarkSent(ctx context.Context, id string, providerMessageID string, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&OutboxItemModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":              domain.OutboxSent,
			"provider_message_id": providerMessageID,
			"last_error":          nil,
			"next_retry_at":       nil,
			"updated_at":          now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkFailedWithRetry records a failed attempt. Permanent reasons and
// exhausted attempt budgets finalize the row as failed; everything else
// stays queued with an exponential backoff stamp.
func (r *GormOutboxRepo) MarkFailedWithRetry(ctx context.Context, id string, reason domain.FailureReason, detail string, now time.Time) error {
	var model OutboxItemModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	attempts := model.RetryCount + 1
	lastError := string(reason)
	if detail != "" {
		lastError = lastError + ": " + detail
	}

	updates := map[string]any{
		"retry_count": attempts,
		"last_error":  lastError,
		"updated_at":  now,
	}

	if reason.Permanent() || attempts >= domain.MaxOutboxAttempts {
		updates["status"] = domain.OutboxFailed
		updates["next_retry_at"] = nil
	} else {
		updates["status"] = domain.OutboxQueued
		updates["next_retry_at"] = now.Add(domain.RetryBackoff(attempts))
	}

	return r.db.WithContext(ctx).
		Model(&OutboxItemModel{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *GormOutboxRepo) GetConfig(ctx context.Context, businessID int64) (*domain.ChannelConfig, error) {
	var model ChannelConfigModel
	err := r.db.WithContext(ctx).First(&model, "business_id = ?", businessID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return channelConfigModelToDomain(&model), nil
}

func (r *GormOutboxRepo) HasApprovedTemplate(ctx context.Context, businessID int64, name, language string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&TemplateModel{}).
		Where("business_id = ? AND name = ? AND language = ? AND status = ?", businessID, name, language, "approved").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormOutboxRepo) HasValidConsent(ctx context.Context, businessID, customerID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ConsentModel{}).
		Where("business_id = ? AND customer_id = ? AND channel = ? AND granted = ? AND revoked_at IS NULL",
			businessID, customerID, "whatsapp", true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormOutboxRepo) CountRecentSends(ctx context.Context, businessID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&OutboxItemModel{}).
		Where("business_id = ? AND status IN ? AND updated_at >= ?",
			businessID, []domain.OutboxStatus{domain.OutboxSent, domain.OutboxDelivered, domain.OutboxRead}, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormOutboxRepo) CountDailySends(ctx context.Context, businessID int64, dayStart time.Time) (int64, error) {
	return r.CountRecentSends(ctx, businessID, dayStart)
}

func (r *GormOutboxRepo) LogMessage(ctx context.Context, log *domain.MessageLog) error {
	if log == nil {
		return domain.ErrValidation
	}

	model := messageLogModelFromDomain(log)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	log.ID = model.ID
	return nil
}
