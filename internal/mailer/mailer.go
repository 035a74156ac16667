// Package mailer delivers HTML mail over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/stemsi/cyberassess-backend/internal/config"
)

// ErrNotConfigured is returned by Send when SMTP settings are incomplete.
var ErrNotConfigured = errors.New("smtp not configured")

// Message is one outgoing mail.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// SMTPMailer sends messages with a fresh SMTP connection per message.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	timeout time.Duration
	log     zerolog.Logger
}

// NewSMTPMailer creates a mailer from SMTP settings.
func NewSMTPMailer(cfg config.SMTPConfig, timeout time.Duration, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:     cfg,
		timeout: timeout,
		log:     log.With().Str("component", "mailer").Logger(),
	}
}

// Enabled reports whether the mailer can attempt delivery.
func (m *SMTPMailer) Enabled() bool {
	return m.cfg.Enabled()
}

// Send delivers msg. The context bounds dialing and the SMTP conversation.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.Enabled() {
		return ErrNotConfigured
	}

	mm, err := m.build(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	start := time.Now()
	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("send mail to %v: %w", msg.To, err)
	}

	m.log.Debug().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Dur("took", time.Since(start)).
		Msg("mail sent")
	return nil
}

func (m *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.Password),
		mail.WithTimeout(m.timeout),
	}
	if m.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	// Port last so the TLS options above cannot reset it.
	return append(opts, mail.WithPort(m.cfg.Port))
}

func (m *SMTPMailer) build(msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("message has no recipients")
	}

	mm := mail.NewMsg()
	if err := mm.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", m.cfg.From, err)
	}
	if err := mm.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		mm.AddAlternativeString(mail.TypeTextPlain, msg.Text)
	}
	return mm, nil
}
