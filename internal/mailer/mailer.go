package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/SergeiKhy/campaign-tracker/internal/config"
	"github.com/google/uuid"
	"github.com/jordan-wright/email"
)

// Message одно отрендеренное письмо для одного получателя
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer доставляет письмо получателю и возвращает непрозрачный
// идентификатор доставки
type Mailer interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer создаёт mailer поверх обычного SMTP с PLAIN-аутентификацией
func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(ctx context.Context, msg *Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e := email.NewEmail()
	e.From = m.from()
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.HTML = []byte(msg.HTML)

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	if err := e.Send(addr, auth); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	// SMTP не возвращает идентификатор сообщения, выдаём свой
	return uuid.NewString(), nil
}

func (m *smtpMailer) from() string {
	if m.cfg.FromName != "" {
		return fmt.Sprintf("%q <%s>", m.cfg.FromName, m.cfg.From)
	}
	return m.cfg.From
}
