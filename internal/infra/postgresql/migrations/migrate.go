package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Migrate applies the schema this engine owns. Booking platform tables
// (bookings, clients, businesses, locations) are created elsewhere.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		createNotificationQueueTable(),
		createWhatsappOutboxTables(),
		createWhatsappChannelTables(),
		createNotificationSettingsTable(),
	})

	return m.Migrate()
}
