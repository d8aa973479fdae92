package noop

import (
	"context"

	"github.com/rs/zerolog"

	"mrstrict/internal/domain"
	"mrstrict/internal/port"
)

type noopSender struct {
	logger zerolog.Logger
}

// NewNoopSender creates a Notifier that logs messages instead of sending them.
func NewNoopSender(logger zerolog.Logger) port.Notifier {
	return &noopSender{logger: logger}
}

func (s *noopSender) Send(_ context.Context, msg domain.Message) error {
	ev := s.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject)
	if msg.Attachment != nil {
		ev = ev.Str("attachment", msg.Attachment.Filename).Int("attachment_bytes", len(msg.Attachment.Data))
	}
	ev.Msg("[NOOP EMAIL] message not sent")
	return nil
}
