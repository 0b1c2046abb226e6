package repository

import (
	"context"
	"time"

	"github.com/romeolab/agenda-notify/internal/domain"
	"gorm.io/gorm"
)

type BookingRepository interface {
	FindReminderCandidates(ctx context.Context, from, to time.Time) ([]domain.BookingContext, error)
}

type GormBookingRepo struct {
	db *gorm.DB
}

func NewGormBookingRepo(db *gorm.DB) *GormBookingRepo {
	return &GormBookingRepo{db: db}
}

// reminderCandidateRow is the flat scan target for the candidate query.
type reminderCandidateRow struct {
	BookingID  int64 `gorm:"column:booking_id"`
	BusinessID int64 `gorm:"column:business_id"`
	LocationID int64 `gorm:"column:location_id"`
	ClientID   int64 `gorm:"column:client_id"`

	ClientFirstName string `gorm:"column:client_first_name"`
	ClientLastName  string `gorm:"column:client_last_name"`
	ClientEmail     string `gorm:"column:client_email"`

	BusinessName   string `gorm:"column:business_name"`
	BusinessEmail  string `gorm:"column:business_email"`
	BusinessSlug   string `gorm:"column:business_slug"`
	BusinessLocale string `gorm:"column:business_locale"`

	LocationName    string `gorm:"column:location_name"`
	LocationAddress string `gorm:"column:location_address"`
	LocationCity    string `gorm:"column:location_city"`
	LocationPhone   string `gorm:"column:location_phone"`
	LocationEmail   string `gorm:"column:location_email"`
	Timezone        string `gorm:"column:timezone"`

	Services   string    `gorm:"column:services"`
	TotalPrice float64   `gorm:"column:total_price"`
	StartTime  time.Time `gorm:"column:start_time"`
	Locale     string    `gorm:"column:locale"`
}

const reminderCandidatesQuery = `
SELECT
    b.id              AS booking_id,
    b.business_id     AS business_id,
    b.location_id     AS location_id,
    b.client_id       AS client_id,
    c.first_name      AS client_first_name,
    c.last_name       AS client_last_name,
    c.email           AS client_email,
    bz.name           AS business_name,
    bz.email          AS business_email,
    bz.slug           AS business_slug,
    bz.locale         AS business_locale,
    l.name            AS location_name,
    l.address         AS location_address,
    l.city            AS location_city,
    l.phone           AS location_phone,
    l.email           AS location_email,
    l.timezone        AS timezone,
    b.services        AS services,
    b.total_price     AS total_price,
    b.start_time      AS start_time,
    b.locale          AS locale
FROM bookings b
JOIN clients c     ON c.id = b.client_id
JOIN businesses bz ON bz.id = b.business_id
JOIN locations l   ON l.id = b.location_id
WHERE b.status IN ('pending', 'confirmed')
  AND b.client_id IS NOT NULL
  AND b.start_time >= ?
  AND b.start_time < ?
  AND NOT EXISTS (
      SELECT 1
      FROM notification_queue q
      WHERE q.booking_id = b.id
        AND q.channel = 'booking_reminder'
        AND q.status IN ('pending', 'processing', 'sent')
  )
ORDER BY b.start_time ASC`

// FindReminderCandidates returns confirmed client bookings starting in the
// window. The scheduler applies per-business lead times and dedup on top.
func (r *GormBookingRepo) FindReminderCandidates(ctx context.Context, from, to time.Time) ([]domain.BookingContext, error) {
	var rows []reminderCandidateRow
	if err := r.db.WithContext(ctx).Raw(reminderCandidatesQuery, from, to).Scan(&rows).Error; err != nil {
		return nil, err
	}

	contexts := make([]domain.BookingContext, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		client := domain.Client{FirstName: row.ClientFirstName, LastName: row.ClientLastName}
		contexts = append(contexts, domain.BookingContext{
			BookingID:       row.BookingID,
			BusinessID:      row.BusinessID,
			LocationID:      row.LocationID,
			ClientID:        row.ClientID,
			ClientName:      client.FullName(),
			ClientEmail:     row.ClientEmail,
			BusinessName:    row.BusinessName,
			BusinessEmail:   row.BusinessEmail,
			BusinessSlug:    row.BusinessSlug,
			BusinessLocale:  row.BusinessLocale,
			LocationName:    row.LocationName,
			LocationAddress: row.LocationAddress,
			LocationCity:    row.LocationCity,
			LocationPhone:   row.LocationPhone,
			LocationEmail:   row.LocationEmail,
			Timezone:        row.Timezone,
			Services:        row.Services,
			TotalPrice:      row.TotalPrice,
			StartTime:       row.StartTime,
			Locale:          row.Locale,
		})
	}

	return contexts, nil
}
