package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/romeolab/agenda-notify/internal/repository"
	"gorm.io/gorm"
)

func createWhatsappChannelTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_whatsapp_channel",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(
				&repository.ChannelConfigModel{},
				&repository.TemplateModel{},
				&repository.ConsentModel{},
			); err != nil {
				return err
			}
			indexes := []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_templates_business_name_lang ON whatsapp_templates (business_id, name, language)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_consents_business_customer ON customer_consents (business_id, customer_id, channel)`,
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
				&repository.ConsentModel{},
				&repository.TemplateModel{},
				&repository.ChannelConfigModel{},
			)
		},
	}
}
