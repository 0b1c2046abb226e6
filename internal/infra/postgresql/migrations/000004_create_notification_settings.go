package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/romeolab/agenda-notify/internal/repository"
	"gorm.io/gorm"
)

func createNotificationSettingsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_notification_settings",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.NotificationSettingsModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.NotificationSettingsModel{})
		},
	}
}
