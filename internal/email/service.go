package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/medassist/assistant-api/pkg/logger"
)

type Service interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendNotification(ctx context.Context, to, subject, body string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Enabled  bool
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	logger *logger.Logger
}

// NewSMTPService returns a gomail-backed sender. When the config is
// disabled a no-op sender is returned so callers never branch.
func NewSMTPService(cfg Config, logger *logger.Logger) Service {
	if !cfg.Enabled {
		return &noopService{logger: logger}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *smtpService) SendWelcome(ctx context.Context, to, name string) error {
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour medical assistant account is ready. "+
		"You can now track medications, reminders and appointments in one place.\r\n", name)
	return s.send(to, "Welcome to Medical Assistant", body)
}

func (s *smtpService) SendNotification(ctx context.Context, to, subject, body string) error {
	return s.send(to, subject, body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type noopService struct {
	logger *logger.Logger
}

func (s *noopService) SendWelcome(ctx context.Context, to, name string) error {
	s.logger.Debug(fmt.Sprintf("email disabled, skipping welcome mail to %s", to))
	return nil
}

func (s *noopService) SendNotification(ctx context.Context, to, subject, body string) error {
	s.logger.Debug(fmt.Sprintf("email disabled, skipping notification mail to %s", to))
	return nil
}
