package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/romeolab/agenda-notify/internal/repository"
	"gorm.io/gorm"
)

func createNotificationQueueTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_notification_queue",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.QueueItemModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_queue_dispatch ON notification_queue (status, priority, scheduled_at)`,
				`CREATE INDEX IF NOT EXISTS idx_queue_booking ON notification_queue (booking_id)`,
				// Dedup backstop: at most one live row per booking event.
				// Failed rows drop out so a retry can re-enqueue.
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_queue_dedup ON notification_queue (channel, booking_id) WHERE status IN ('pending', 'processing', 'sent')`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.QueueItemModel{})
		},
	}
}
