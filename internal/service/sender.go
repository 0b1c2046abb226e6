package service

import (
	"strings"

	"github.com/romeolab/agenda-notify/internal/config"
	"github.com/romeolab/agenda-notify/internal/domain"
)

// Sender is a resolved outbound identity for one message.
type Sender struct {
	From     string
	FromName string
	ReplyTo  string
}

// SenderTable maps event channels to their configured From addresses.
// Resolution order is fixed: channel address, then the global default.
// The From name is the business's display name so recipients see the
// business, not the platform; the configured platform name is the last
// resort when a row carries no business name.
type SenderTable struct {
	byChannel       map[domain.Channel]string
	defaultFrom     string
	defaultFromName string
}

func NewSenderTable(cfg *config.Config) *SenderTable {
	table := &SenderTable{
		byChannel:       map[domain.Channel]string{},
		defaultFrom:     cfg.MailFromAddress,
		defaultFromName: cfg.MailFromName,
	}

	assign := func(channel domain.Channel, address string) {
		if strings.TrimSpace(address) != "" {
			table.byChannel[channel] = address
		}
	}
	assign(domain.ChannelBookingConfirmed, cfg.SenderConfirmationEmail)
	assign(domain.ChannelBookingCancelled, cfg.SenderCancellationEmail)
	assign(domain.ChannelBookingRescheduled, cfg.SenderRescheduleEmail)
	assign(domain.ChannelBookingReminder, cfg.SenderReminderEmail)

	return table
}

// Resolve picks From by channel, and Reply-To as the most specific
// contact address available: location first, then business, then none.
func (t *SenderTable) Resolve(channel domain.Channel, businessName, locationEmail, businessEmail string) Sender {
	from := t.defaultFrom
	if addr, ok := t.byChannel[channel]; ok {
		from = addr
	}

	fromName := strings.TrimSpace(businessName)
	if fromName == "" {
		fromName = t.defaultFromName
	}

	replyTo := strings.TrimSpace(locationEmail)
	if replyTo == "" {
		replyTo = strings.TrimSpace(businessEmail)
	}

	return Sender{
		From:     from,
		FromName: fromName,
		ReplyTo:  replyTo,
	}
}
