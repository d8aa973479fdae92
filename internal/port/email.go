package port

import (
	"context"

	"mrstrict/internal/domain"
)

// Notifier delivers a message, optionally with a file attachment.
// Delivery failures are returned to the caller.
type Notifier interface {
	Send(ctx context.Context, msg domain.Message) error
}
