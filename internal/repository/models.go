package repository

import (
	"time"

	"github.com/romeolab/agenda-notify/internal/domain"
)

// QueueItemModel is the persistence model for the notification_queue table.
type QueueItemModel struct {
	ID             int64                `gorm:"primaryKey;autoIncrement"`
	Type           string               `gorm:"type:varchar(20);not null"`
	Channel        domain.Channel       `gorm:"type:varchar(40);not null"`
	RecipientType  domain.RecipientType `gorm:"type:varchar(10);not null"`
	RecipientID    int64                `gorm:"not null"`
	RecipientEmail string               `gorm:"type:varchar(255);not null"`
	RecipientName  string               `gorm:"type:varchar(255)"`
	Subject        string               `gorm:"type:varchar(500);not null"`
	Payload        string               `gorm:"type:text;not null"`
	Priority       int                  `gorm:"not null;default:5"`
	Status         domain.Status        `gorm:"type:varchar(20);not null;default:'pending'"`
	ScheduledAt    *time.Time           `gorm:"type:timestamptz"`
	BusinessID     int64                `gorm:"not null"`
	BookingID      int64                `gorm:"not null"`
	CreatedAt      time.Time
	ProcessedAt    *time.Time `gorm:"type:timestamptz"`
	Error          *string    `gorm:"type:text"`
}

func (QueueItemModel) TableName() string {
	return "notification_queue"
}

// OutboxItemModel is the persistence model for whatsapp_notification_outbox.
type OutboxItemModel struct {
	ID                string              `gorm:"type:uuid;primaryKey"`
	BusinessID        int64               `gorm:"not null"`
	CustomerID        int64               `gorm:"not null"`
	EventType         string              `gorm:"type:varchar(40);not null"`
	TemplateName      string              `gorm:"type:varchar(255);not null"`
	PayloadJSON       string              `gorm:"column:payload_json;type:text;not null"`
	Status            domain.OutboxStatus `gorm:"type:varchar(20);not null;default:'queued'"`
	RetryCount        int                 `gorm:"not null;default:0"`
	LastError         *string             `gorm:"type:text"`
	NextRetryAt       *time.Time          `gorm:"type:timestamptz"`
	ProviderMessageID *string             `gorm:"type:varchar(255)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (OutboxItemModel) TableName() string {
	return "whatsapp_notification_outbox"
}

// ChannelConfigModel is the persistence model for business_whatsapp_config.
type ChannelConfigModel struct {
	BusinessID           int64  `gorm:"primaryKey"`
	Status               string `gorm:"type:varchar(20);not null;default:'disconnected'"`
	PhoneNumberID        string `gorm:"type:varchar(64)"`
	AccessTokenEncrypted string `gorm:"type:text"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (ChannelConfigModel) TableName() string {
	return "business_whatsapp_config"
}

// TemplateModel is the persistence model for whatsapp_templates.
type TemplateModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	BusinessID int64  `gorm:"not null"`
	Name       string `gorm:"type:varchar(255);not null"`
	Language   string `gorm:"type:varchar(10);not null"`
	Status     string `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (TemplateModel) TableName() string {
	return "whatsapp_templates"
}

// ConsentModel is the persistence model for customer_consents.
type ConsentModel struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	BusinessID int64      `gorm:"not null"`
	CustomerID int64      `gorm:"not null"`
	Channel    string     `gorm:"type:varchar(20);not null"`
	Granted    bool       `gorm:"not null;default:false"`
	RevokedAt  *time.Time `gorm:"type:timestamptz"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ConsentModel) TableName() string {
	return "customer_consents"
}

// MessageLogModel is the persistence model for whatsapp_message_log.
type MessageLogModel struct {
	ID                string `gorm:"type:uuid;primaryKey"`
	BusinessID        int64  `gorm:"not null"`
	CustomerID        int64  `gorm:"not null"`
	Direction         string `gorm:"type:varchar(10);not null"`
	MessageType       string `gorm:"type:varchar(20);not null"`
	ContentSnapshot   string `gorm:"type:text"`
	ProviderMessageID string `gorm:"type:varchar(255)"`
	DeliveryStatus    string `gorm:"type:varchar(20);not null"`
	CreatedAt         time.Time
}

func (MessageLogModel) TableName() string {
	return "whatsapp_message_log"
}

// NotificationSettingsModel is the persistence model for notification_settings.
// Rows are owned by business configuration management; this module reads them.
type NotificationSettingsModel struct {
	BusinessID              int64 `gorm:"primaryKey"`
	EmailBookingConfirmed   bool  `gorm:"not null;default:true"`
	EmailBookingCancelled   bool  `gorm:"not null;default:true"`
	EmailBookingRescheduled bool  `gorm:"not null;default:true"`
	EmailReminderEnabled    bool  `gorm:"not null;default:true"`
	EmailReminderHours      int   `gorm:"not null;default:24"`
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (NotificationSettingsModel) TableName() string {
	return "notification_settings"
}

// ClientModel is the read-only projection of the booking platform's
// clients table.
type ClientModel struct {
	ID        int64  `gorm:"primaryKey"`
	Email     string `gorm:"type:varchar(255)"`
	FirstName string `gorm:"type:varchar(255)"`
	LastName  string `gorm:"type:varchar(255)"`
	Phone     string `gorm:"type:varchar(64)"`
}

func (ClientModel) TableName() string {
	return "clients"
}

func queueItemModelFromDomain(q *domain.QueueItem) *QueueItemModel {
	if q == nil {
		return nil
	}

	return &QueueItemModel{
		ID:             q.ID,
		Type:           q.Type,
		Channel:        q.Channel,
		RecipientType:  q.RecipientType,
		RecipientID:    q.RecipientID,
		RecipientEmail: q.RecipientEmail,
		RecipientName:  q.RecipientName,
		Subject:        q.Subject,
		Payload:        q.Payload,
		Priority:       q.Priority,
		Status:         q.Status,
		ScheduledAt:    q.ScheduledAt,
		BusinessID:     q.BusinessID,
		BookingID:      q.BookingID,
		CreatedAt:      q.CreatedAt,
		ProcessedAt:    q.ProcessedAt,
		Error:          q.Error,
	}
}

func queueItemModelToDomain(m *QueueItemModel) *domain.QueueItem {
	if m == nil {
		return nil
	}

	return &domain.QueueItem{
		ID:             m.ID,
		Type:           m.Type,
		Channel:        m.Channel,
		RecipientType:  m.RecipientType,
		RecipientID:    m.RecipientID,
		RecipientEmail: m.RecipientEmail,
		RecipientName:  m.RecipientName,
		Subject:        m.Subject,
		Payload:        m.Payload,
		Priority:       m.Priority,
		Status:         m.Status,
		ScheduledAt:    m.ScheduledAt,
		BusinessID:     m.BusinessID,
		BookingID:      m.BookingID,
		CreatedAt:      m.CreatedAt,
		ProcessedAt:    m.ProcessedAt,
		Error:          m.Error,
	}
}

func outboxItemModelFromDomain(o *domain.OutboxItem) *OutboxItemModel {
	if o == nil {
		return nil
	}

	return &OutboxItemModel{
		ID:                o.ID,
		BusinessID:        o.BusinessID,
		CustomerID:        o.CustomerID,
		EventType:         o.EventType,
		TemplateName:      o.TemplateName,
		PayloadJSON:       o.PayloadJSON,
		Status:            o.Status,
		RetryCount:        o.RetryCount,
		LastError:         o.LastError,
		NextRetryAt:       o.NextRetryAt,
		ProviderMessageID: o.ProviderMessageID,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

func outboxItemModelToDomain(m *OutboxItemModel) *domain.OutboxItem {
	if m == nil {
		return nil
	}

	return &domain.OutboxItem{
		ID:                m.ID,
		BusinessID:        m.BusinessID,
		CustomerID:        m.CustomerID,
		EventType:         m.EventType,
		TemplateName:      m.TemplateName,
		PayloadJSON:       m.PayloadJSON,
		Status:            m.Status,
		RetryCount:        m.RetryCount,
		LastError:         m.LastError,
		NextRetryAt:       m.NextRetryAt,
		ProviderMessageID: m.ProviderMessageID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func channelConfigModelToDomain(m *ChannelConfigModel) *domain.ChannelConfig {
	if m == nil {
		return nil
	}

	return &domain.ChannelConfig{
		BusinessID:           m.BusinessID,
		Status:               m.Status,
		PhoneNumberID:        m.PhoneNumberID,
		AccessTokenEncrypted: m.AccessTokenEncrypted,
	}
}

func messageLogModelFromDomain(l *domain.MessageLog) *MessageLogModel {
	if l == nil {
		return nil
	}

	return &MessageLogModel{
		ID:                l.ID,
		BusinessID:        l.BusinessID,
		CustomerID:        l.CustomerID,
		Direction:         l.Direction,
		MessageType:       l.MessageType,
		ContentSnapshot:   l.ContentSnapshot,
		ProviderMessageID: l.ProviderMessageID,
		DeliveryStatus:    l.DeliveryStatus,
		CreatedAt:         l.CreatedAt,
	}
}

func settingsModelToDomain(m *NotificationSettingsModel) *domain.NotificationSettings {
	if m == nil {
		return nil
	}

	return &domain.NotificationSettings{
		BusinessID:              m.BusinessID,
		EmailBookingConfirmed:   m.EmailBookingConfirmed,
		EmailBookingCancelled:   m.EmailBookingCancelled,
		EmailBookingRescheduled: m.EmailBookingRescheduled,
		EmailReminderEnabled:    m.EmailReminderEnabled,
		EmailReminderHours:      m.EmailReminderHours,
	}
}

func clientModelToDomain(m *ClientModel) *domain.Client {
	if m == nil {
		return nil
	}

	return &domain.Client{
		ID:        m.ID,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Phone:     m.Phone,
	}
}
