package template

import (
	"fmt"
	"strings"

	"github.com/romeolab/agenda-notify/internal/domain"
)

// Email is a renderable template triple for one event and locale.
type Email struct {
	Subject string
	HTML    string
	Text    string
}

// Lookup returns the template for an event channel and resolved locale.
// For reminder and reschedule events the "where" block is spliced in only
// when withLocation is set; single-location businesses get no location
// text at all.
func Lookup(channel domain.Channel, locale string, withLocation bool) (Email, error) {
	byLocale, ok := catalog[channel]
	if !ok {
		return Email{}, fmt.Errorf("%w: no template for channel %q", domain.ErrValidation, channel)
	}

	email, ok := byLocale[locale]
	if !ok {
		email = byLocale[LocaleItalian]
	}

	block := locationBlocks[locale]
	if !withLocation {
		block = blockPair{}
	}
	email.HTML = strings.ReplaceAll(email.HTML, "{{location_block}}", block.html)
	email.Text = strings.ReplaceAll(email.Text, "{{location_block}}", block.text)

	return email, nil
}

type blockPair struct {
	html string
	text string
}

var locationBlocks = map[string]blockPair{
	LocaleItalian: {
		html: `<p><strong>Dove:</strong> {{location_name}}<br>{{location_address}}, {{location_city}}<br>{{location_phone}}</p>`,
		text: "Dove: {{location_name}}, {{location_address}}, {{location_city}} ({{location_phone}})\n",
	},
	LocaleEnglish: {
		html: `<p><strong>Where:</strong> {{location_name}}<br>{{location_address}}, {{location_city}}<br>{{location_phone}}</p>`,
		text: "Where: {{location_name}}, {{location_address}}, {{location_city}} ({{location_phone}})\n",
	},
}

var catalog = map[domain.Channel]map[string]Email{
	domain.ChannelBookingConfirmed: {
		LocaleItalian: {
			Subject: "Prenotazione confermata - {{business_name}}",
			HTML: `<div style="font-family:sans-serif;max-width:600px;margin:0 auto;">
<h1 style="background:#2196F3;color:#fff;padding:24px;text-align:center;">Prenotazione Confermata</h1>
<p>Ciao <strong>{{client_name}}</strong>,</p>
<p>La tua prenotazione presso <strong>{{business_name}}</strong> è stata confermata.</p>
<p><strong>Dove:</strong> {{location_name}}, {{location_address}}<br>
<strong>Quando:</strong> {{date}} alle {{time}}<br>
<strong>Servizi:</strong> {{services}}<br>
<strong>Totale:</strong> €{{total_price}}</p>
<p>Puoi modificare o cancellare la prenotazione fino a {{cancel_deadline}}.</p>
<p><a href="{{manage_url}}">Gestisci Prenotazione</a></p>
</div>`,
			Text: `Prenotazione Confermata

Ciao {{client_name}},

La tua prenotazione presso {{business_name}} è stata confermata.

Dove: {{location_name}}, {{location_address}}
Quando: {{date}} alle {{time}}
Servizi: {{services}}
Totale: €{{total_price}}

Puoi modificare o cancellare fino a {{cancel_deadline}}.
Gestisci prenotazione: {{manage_url}}`,
		},
		LocaleEnglish: {
			Subject: "Booking confirmed - {{business_name}}",
			HTML: `<div style="font-family:sans-serif;max-width:600px;margin:0 auto;">
<h1 style="background:#2196F3;color:#fff;padding:24px;text-align:center;">Booking Confirmed</h1>
<p>Hi <strong>{{client_name}}</strong>,</p>
<p>Your booking at <strong>{{business_name}}</strong> has been confirmed.</p>
<p><strong>Where:</strong> {{location_name}}, {{location_address}}<br>
<strong>When:</strong> {{date}} at {{time}}<br>
<strong>Services:</strong> {{services}}<br>
<strong>Total:</strong> €{{total_price}}</p>
<p>You can change or cancel your booking until {{cancel_deadline}}.</p>
<p><a href="{{manage_url}}">Manage Booking</a></p>
</div>`,
			Text: `Booking Confirmed

Hi {{client_name}},

Your booking at {{business_name}} has been confirmed.

Where: {{location_name}}, {{location_address}}
When: {{date}} at {{time}}
Services: {{services}}
Total: €{{total_price}}

You can change or cancel until {{cancel_deadline}}.
Manage booking: {{manage_url}}`,
		},
	},
	domain.ChannelBookingCancelled: {
		LocaleItalian: {
			Subject: "Prenotazione cancellata - {{business_name}}",
			HTML: `<div style="font-family:sans-serif;max-width:600px;margin:0 auto;">
<h1 style="background:#f44336;color:#fff;padding:24px;text-align:center;">Prenotazione Cancellata</h1>
<p>Ciao <strong>{{client_name}}</strong>,</p>
<p>La tua prenotazione presso <strong>{{business_name}}</strong> è stata cancellata.</p>
<p><strong>{{date}} alle {{time}}</strong><br>{{services}}</p>
<p>Se desideri prenotare nuovamente, visita il nostro sito.</p>
<p><a href="{{booking_url}}">Prenota di Nuovo</a></p>
</div>`,
			Text: `Prenotazione Cancellata

Ciao {{client_name}},

La tua prenotazione presso {{business_name}} è stata cancellata.

{{date}} alle {{time}}
{{services}}

Prenota di nuovo: {{booking_url}}`,
		},
		LocaleEnglish: {
			Subject: "Booking cancelled - {{business_name}}",
			HTML: `<div style="font-family:sans-serif;max-width:600px;margin:0 auto;">
<h1 style="background:#f44336;color:#fff;padding:24px;text-align:center;">Booking Cancelled</h1>
<p>Hi <strong>{{client_name}}</strong>,</p>
<p>Your booking at <strong>{{business_name}}</strong> has been cancelled.</p>
<p><strong>{{date}} at {{time}}</strong><br>{{services}}</p>
<p>If you would like to book again, visit our site.</p>
<p><a href="{{booking_url}}">Book Again</a></p>
</div>`,
			Text: `Booking Cancelled

Hi {{client_name}},

Your booking at {{business_name}} has been cancelled.

{{date}} at {{time}}
{{services}}

Book again: {{booking_url}}`,
		},
	},
	domain.ChannelBookingRescheduled: {
		LocaleItalian: {
			Subject: "Prenotazione modificata - {{business_name}}",
			HTML: `<div style="font-family:sans-serif;max-width:600px;margin:0 auto;">
<h1 style="background:#FF9800;color:#fff;padding:24px;text-align:center;">Prenotazione Modificata</h1>
<p>Ciao <strong>{{client_name}}</strong>,</p>
<p>La tua prenotazione presso <strong>{{business_name}}</strong> è stata spostata.</p>
<p>Da: <s>{{old_date}} alle {{old_time}}</s><br>
A: <strong>{{date}} alle {{time}}</strong><br>
Servizi: {{services}}</p>
{{location_block}}
<p><a href="{{manage_url}}">Gestisci Prenotazione</a></p>
</div>`,
			Text: `Prenotazione Modificata

Ciao {{client_name}},

La tua prenotazione presso {{business_name}} è stata spostata.

Da: {{old_date}} alle {{old_time}}
A: {{date}} alle {{time}}
Servizi: {{services}}
{{location_block}}
Gestisci prenotazione: {{manage_url}}`,
		},
		LocaleEnglish: {
			Subject: "Booking rescheduled - {{business_name}}",
			HTML: `<div style="font-family:sans-serif;max-width:600px;margin:0 auto;">
<h1 style="background:#FF9800;color:#fff;padding:24px;text-align:center;">Booking Rescheduled</h1>
<p>Hi <strong>{{client_name}}</strong>,</p>
<p>Your booking at <strong>{{business_name}}</strong> has been moved.</p>
<p>From: <s>{{old_date}} at {{old_time}}</s><br>
To: <strong>{{date}} at {{time}}</strong><br>
Services: {{services}}</p>
{{location_block}}
<p><a href="{{manage_url}}">Manage Booking</a></p>
</div>`,
			Text: `Booking Rescheduled

Hi {{client_name}},

Your booking at {{business_name}} has been moved.

From: {{old_date}} at {{old_time}}
To: {{date}} at {{time}}
Services: {{services}}
{{location_block}}
Manage booking: {{manage_url}}`,
		},
	},
	domain.ChannelBookingReminder: {
		LocaleItalian: {
			Subject: "Promemoria appuntamento - {{business_name}}",
			HTML: `<div style="font-family:sans-serif;max-width:600px;margin:0 auto;">
<h1 style="background:#4CAF50;color:#fff;padding:24px;text-align:center;">Promemoria Appuntamento</h1>
<p>Ciao <strong>{{client_name}}</strong>,</p>
<p>Ti ricordiamo il tuo appuntamento presso <strong>{{business_name}}</strong>.</p>
<p><strong>Quando:</strong> {{date}} alle {{time}}<br>
<strong>Servizi:</strong> {{services}}</p>
{{location_block}}
<p><a href="{{manage_url}}">Gestisci Prenotazione</a></p>
</div>`,
			Text: `Promemoria Appuntamento

Ciao {{client_name}},

Ti ricordiamo il tuo appuntamento presso {{business_name}}.

Quando: {{date}} alle {{time}}
Servizi: {{services}}
{{location_block}}
Gestisci prenotazione: {{manage_url}}`,
		},
		LocaleEnglish: {
			Subject: "Appointment reminder - {{business_name}}",
			HTML: `<div style="font-family:sans-serif;max-width:600px;margin:0 auto;">
<h1 style="background:#4CAF50;color:#fff;padding:24px;text-align:center;">Appointment Reminder</h1>
<p>Hi <strong>{{client_name}}</strong>,</p>
<p>This is a reminder of your appointment at <strong>{{business_name}}</strong>.</p>
<p><strong>When:</strong> {{date}} at {{time}}<br>
<strong>Services:</strong> {{services}}</p>
{{location_block}}
<p><a href="{{manage_url}}">Manage Booking</a></p>
</div>`,
			Text: `Appointment Reminder

Hi {{client_name}},

This is a reminder of your appointment at {{business_name}}.

When: {{date}} at {{time}}
Services: {{services}}
{{location_block}}
Manage booking: {{manage_url}}`,
		},
	},
}
