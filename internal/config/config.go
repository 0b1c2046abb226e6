package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required=true"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`

	BatchSize       int `env:"WORKER_BATCH_SIZE,default=50"`
	SendDelayMillis int `env:"WORKER_SEND_DELAY_MS,default=100"`

	DefaultTimezone string `env:"DEFAULT_TIMEZONE,default=Europe/Rome"`
	DefaultLocale   string `env:"DEFAULT_LOCALE,default=it"`
	FrontendURL     string `env:"FRONTEND_URL,default=https://prenota.romeolab.it"`

	ReminderLookaheadHours int `env:"REMINDER_LOOKAHEAD_HOURS,default=48"`

	EncryptionKey string `env:"ENCRYPTION_KEY"`

	WhatsAppPerMinuteCap int    `env:"WHATSAPP_RATE_LIMIT_PER_MINUTE,default=60"`
	WhatsAppDailyCap     int    `env:"WHATSAPP_DAILY_CAP,default=1000"`
	WhatsAppAPIVersion   string `env:"WHATSAPP_API_VERSION,default=v22.0"`

	MailProvider    string `env:"MAIL_PROVIDER,default=smtp"`
	MailFromAddress string `env:"MAIL_FROM_ADDRESS"`
	MailFromName    string `env:"MAIL_FROM_NAME,default=Agenda"`

	// Per-channel sender addresses; empty entries fall back to
	// MailFromAddress.
	SenderConfirmationEmail string `env:"SENDER_CONFIRMATION_EMAIL"`
	SenderCancellationEmail string `env:"SENDER_CANCELLATION_EMAIL"`
	SenderRescheduleEmail   string `env:"SENDER_RESCHEDULE_EMAIL"`
	SenderReminderEmail     string `env:"SENDER_REMINDER_EMAIL"`

	SMTPHost        string `env:"SMTP_HOST"`
	SMTPPort        int    `env:"SMTP_PORT,default=587"`
	SMTPUser        string `env:"SMTP_USER"`
	SMTPPass        string `env:"SMTP_PASS"`
	BrevoAPIKey     string `env:"BREVO_API_KEY"`
	MailgunAPIKey   string `env:"MAILGUN_API_KEY"`
	MailgunDomain   string `env:"MAILGUN_DOMAIN"`
	MailgunEURegion bool   `env:"MAILGUN_EU_REGION,default=true"`
	ResendAPIKey    string `env:"RESEND_API_KEY"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
