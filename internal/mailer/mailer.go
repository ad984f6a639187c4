// Package mailer delivers transactional mail. The SMTP implementation wraps
// gomail; the log implementation writes the message to the application log
// and is the default for development, where reset codes land in stdout.
package mailer

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/stockplan/stockplan-api/internal/config"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a single message.
type Mailer interface {
	Send(msg Message) error
}

// New selects an implementation based on the configured driver.
func New(cfg *config.Config, logger *zerolog.Logger) Mailer {
	if cfg.MailerDriver == config.MailerDriverSMTP {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(logger)
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

func (m *SMTPMailer) Send(msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("no recipient specified")
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Body)

	return m.dialer.DialAndSend(mail)
}

// LogMailer writes the message to the log instead of sending it.
type LogMailer struct {
	logger *zerolog.Logger
}

func NewLogMailer(logger *zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(msg Message) error {
	m.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mailer: message delivered to log")
	return nil
}
