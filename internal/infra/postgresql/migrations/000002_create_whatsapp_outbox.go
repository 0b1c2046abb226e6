package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/romeolab/agenda-notify/internal/repository"
	"gorm.io/gorm"
)

func createWhatsappOutboxTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_whatsapp_outbox",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.OutboxItemModel{}, &repository.MessageLogModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_outbox_dispatch ON whatsapp_notification_outbox (status, next_retry_at, retry_count)`,
				`CREATE INDEX IF NOT EXISTS idx_outbox_business_sent ON whatsapp_notification_outbox (business_id, status, updated_at)`,
				`CREATE INDEX IF NOT EXISTS idx_message_log_business ON whatsapp_message_log (business_id, created_at)`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(
				&repository.MessageLogModel{},
				&repository.OutboxItemModel{},
			)
		},
	}
}
