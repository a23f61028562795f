package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Service sends staff-facing notification emails.
type Service interface {
	SendArrivalNotice(ctx context.Context, to, doctorName, patient, message string) error
}

type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	From     string `mapstructure:"from"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
}

type service struct {
	cfg    Config
	dialer *gomail.Dialer
}

func NewService(cfg Config) Service {
	return &service{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *service) SendArrivalNotice(_ context.Context, to, doctorName, patient, message string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Arrivée patient — %s", patient))
	m.SetBody("text/plain", fmt.Sprintf("Dr %s,\n\n%s\n", doctorName, message))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
