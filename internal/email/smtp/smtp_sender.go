package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"mrstrict/internal/config"
	"mrstrict/internal/domain"
	"mrstrict/internal/email"
	"mrstrict/internal/port"
)

const defaultTimeout = 30 * time.Second

type smtpSender struct {
	cfg  config.SMTPConfig
	from string
	now  func() time.Time
}

// NewSMTPSender creates a Notifier that relays through an SMTP server.
// STARTTLS is used whenever the server offers it. Credentials come only from
// cfg.SMTP and PLAIN auth is refused on an unencrypted remote connection.
func NewSMTPSender(cfg config.EmailConfig) port.Notifier {
	smtpCfg := cfg.SMTP
	if smtpCfg.Timeout <= 0 {
		smtpCfg.Timeout = defaultTimeout
	}
	return &smtpSender{
		cfg:  smtpCfg,
		from: email.FormatAddress(cfg.FromName, cfg.FromAddress),
		now:  time.Now,
	}
}

func (s *smtpSender) Send(ctx context.Context, msg domain.Message) error {
	m, err := email.NewMessage(s.from, msg, s.now())
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.cfg.Host, s.options()...)
	if err != nil {
		return fmt.Errorf("smtp client %s: %w", s.cfg.Addr(), err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send via %s: %w", s.cfg.Addr(), err)
	}
	return nil
}

func (s *smtpSender) options() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(s.cfg.Timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTLSConfig(&tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}
