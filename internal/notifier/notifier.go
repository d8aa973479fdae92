// Package notifier selects the marks delivery adapter from configuration.
package notifier

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"mrstrict/internal/config"
	"mrstrict/internal/email/noop"
	"mrstrict/internal/email/ses"
	smtpsender "mrstrict/internal/email/smtp"
	"mrstrict/internal/port"
)

// New builds the Notifier named by cfg.Provider.
func New(ctx context.Context, cfg config.EmailConfig) (port.Notifier, error) {
	switch cfg.Provider {
	case "ses":
		n, err := ses.NewSESSender(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("notifier.New: %w", err)
		}
		log.Info().Str("region", cfg.Region).Msg("email notifications via SES")
		return n, nil
	case "smtp":
		if cfg.SMTP.Host == "" {
			return nil, fmt.Errorf("notifier.New: smtp host is not configured")
		}
		log.Info().Str("addr", cfg.SMTP.Addr()).Bool("auth", cfg.SMTP.Username != "").Msg("email notifications via SMTP")
		return smtpsender.NewSMTPSender(cfg), nil
	case "noop", "":
		log.Info().Msg("email provider is noop, messages will be logged")
		return noop.NewNoopSender(log.Logger), nil
	default:
		return nil, fmt.Errorf("notifier.New: unknown email provider %q", cfg.Provider)
	}
}
