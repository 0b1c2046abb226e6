package repository

import (
	"context"
	"errors"

	"github.com/romeolab/agenda-notify/internal/domain"
	"gorm.io/gorm"
)

type SettingsRepository interface {
	Get(ctx context.Context, businessID int64) (*domain.NotificationSettings, error)
	CountActiveLocations(ctx context.Context, businessID int64) (int64, error)
}

type GormSettingsRepo struct {
	db *gorm.DB
}

func NewGormSettingsRepo(db *gorm.DB) *GormSettingsRepo {
	return &GormSettingsRepo{db: db}
}

// Get returns the business's toggles, or nil when no row exists. A missing
// row is not an error: defaults apply.
func (r *GormSettingsRepo) Get(ctx context.Context, businessID int64) (*domain.NotificationSettings, error) {
	var model NotificationSettingsModel
	err := r.db.WithContext(ctx).First(&model, "business_id = ?", businessID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return settingsModelToDomain(&model), nil
}

// CountActiveLocations tells builders whether location details belong in
// the message. Single-location businesses leave them out.
func (r *GormSettingsRepo) CountActiveLocations(ctx context.Context, businessID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("locations").
		Where("business_id = ? AND active = ?", businessID, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
