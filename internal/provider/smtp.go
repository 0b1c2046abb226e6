package provider

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

// SMTPProvider sends email through an authenticated SMTP submission relay.
type SMTPProvider struct {
	host     string
	port     int
	username string
	password string

	// sendMail is swapped in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPProvider(host string, port int, username, password string) (*SMTPProvider, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if port <= 0 {
		port = 587
	}

	return &SMTPProvider{
		host:     host,
		port:     port,
		username: username,
		password: password,
		sendMail: smtp.SendMail,
	}, nil
}

func (p *SMTPProvider) Name() string { return "smtp" }

func (p *SMTPProvider) Send(ctx context.Context, msg Message) error {
	if p == nil || p.sendMail == nil {
		return fmt.Errorf("provider is not initialized")
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if p.username != "" {
		auth = smtp.PlainAuth("", p.username, p.password, p.host)
	}

	addr := fmt.Sprintf("%s:%d", p.host, p.port)
	if err := p.sendMail(addr, auth, msg.From, []string{msg.To}, buildMIMEMessage(msg)); err != nil {
		return &ProviderError{
			Message:   "smtp submission failed",
			Transient: true,
			Cause:     err,
		}
	}

	return nil
}

const mimeBoundary = "=_agenda_alt"

func buildMIMEMessage(msg Message) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", formatAddress(encodeHeaderWord(msg.FromName), msg.From))
	fmt.Fprintf(&b, "To: %s\r\n", formatAddress(encodeHeaderWord(msg.ToName), msg.To))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", encodeHeaderWord(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mimeBoundary)

	if msg.Text != "" {
		fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(msg.Text)
		b.WriteString("\r\n")
	}

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)

	return []byte(b.String())
}

func encodeHeaderWord(s string) string {
	if s == "" {
		return s
	}
	return mime.QEncoding.Encode("utf-8", s)
}
