// Package memory holds process-local repositories for the grader CLI.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"mrstrict/internal/domain"
	"mrstrict/internal/port"
)

type evaluationRepo struct {
	mu    sync.RWMutex
	evals map[uuid.UUID]*domain.Evaluation
}

// NewEvaluationRepo creates an in-memory EvaluationRepository. Stored
// evaluations are copied on the way in and out.
func NewEvaluationRepo() port.EvaluationRepository {
	return &evaluationRepo{evals: make(map[uuid.UUID]*domain.Evaluation)}
}

func (r *evaluationRepo) Create(_ context.Context, eval *domain.Evaluation) error {
	if eval.CreatedAt.IsZero() {
		eval.CreatedAt = time.Now().UTC()
	}
	eval.UpdatedAt = eval.CreatedAt

	r.mu.Lock()
	defer r.mu.Unlock()
	r.evals[eval.ID] = clone(eval, true)
	return nil
}

func (r *evaluationRepo) GetByID(_ context.Context, ownerID, id uuid.UUID) (*domain.Evaluation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	eval, ok := r.evals[id]
	if !ok || eval.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return clone(eval, true), nil
}

func (r *evaluationRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Evaluation, int, error) {
	r.mu.RLock()
	var owned []domain.Evaluation
	for _, eval := range r.evals {
		if eval.OwnerID == ownerID {
			owned = append(owned, *clone(eval, false))
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(owned, func(a, b domain.Evaluation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := len(owned)
	if offset >= total {
		return []domain.Evaluation{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return owned[offset:end], total, nil
}

func (r *evaluationRepo) UpdateReportKey(_ context.Context, id uuid.UUID, key string) error {
	return r.update(id, func(e *domain.Evaluation) {
		e.ReportKey = key
	})
}

func (r *evaluationRepo) MarkNotified(_ context.Context, id uuid.UUID, recipient string, at time.Time) error {
	return r.update(id, func(e *domain.Evaluation) {
		e.NotifiedTo = recipient
		e.NotifiedAt = &at
	})
}

func (r *evaluationRepo) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	eval, ok := r.evals[id]
	if !ok || eval.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(r.evals, id)
	return nil
}

func (r *evaluationRepo) update(id uuid.UUID, fn func(*domain.Evaluation)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	eval, ok := r.evals[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(eval)
	eval.UpdatedAt = time.Now().UTC()
	return nil
}

func clone(e *domain.Evaluation, withRows bool) *domain.Evaluation {
	c := *e
	if e.NotifiedAt != nil {
		at := *e.NotifiedAt
		c.NotifiedAt = &at
	}
	c.Results, c.Skipped = nil, nil
	if withRows {
		c.Results = slices.Clone(e.Results)
		c.Skipped = slices.Clone(e.Skipped)
	}
	return &c
}
