package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mrstrict/internal/domain"
)

// EvaluationRepository persists evaluation runs with their result rows.
// Query methods are scoped by owner.
type EvaluationRepository interface {
	// Create stores the evaluation together with its Results and Skipped rows.
	Create(ctx context.Context, eval *domain.Evaluation) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Evaluation, error)
	// ListByOwner returns evaluations without their result rows, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Evaluation, int, error)
	UpdateReportKey(ctx context.Context, id uuid.UUID, key string) error
	MarkNotified(ctx context.Context, id uuid.UUID, recipient string, at time.Time) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
