package services

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, text string) error
}

// SendGridSender sends plain-text email through the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	log       *zap.Logger
}

func NewSendGridSender(apiKey, fromEmail, fromName string, logger *zap.Logger) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		log:       logger,
	}
}

func (s *SendGridSender) SendEmail(ctx context.Context, to, subject, text string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), text, "")

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	s.log.Info("email sent", zap.String("provider", "sendgrid"), zap.Int("status", response.StatusCode))
	return nil
}

// SMTPSender sends plain-text email over SMTP.
type SMTPSender struct {
	dialer    *gomail.Dialer
	fromEmail string
	fromName  string
	log       *zap.Logger
}

func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		dialer:    gomail.NewDialer(host, port, username, password),
		fromEmail: fromEmail,
		fromName:  fromName,
		log:       logger,
	}
}

// SendEmail honours ctx only before dialing; gomail has no context support.
func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.fromEmail, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	s.log.Info("email sent", zap.String("provider", "smtp"))
	return nil
}
