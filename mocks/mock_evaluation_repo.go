package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"mrstrict/internal/domain"
)

// MockEvaluationRepo is a mock implementation of port.EvaluationRepository.
type MockEvaluationRepo struct {
	mock.Mock
}

func (m *MockEvaluationRepo) Create(ctx context.Context, eval *domain.Evaluation) error {
	args := m.Called(ctx, eval)
	return args.Error(0)
}

func (m *MockEvaluationRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Evaluation, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Evaluation), args.Error(1)
}

func (m *MockEvaluationRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Evaluation, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Evaluation), args.Int(1), args.Error(2)
}

func (m *MockEvaluationRepo) UpdateReportKey(ctx context.Context, id uuid.UUID, key string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

func (m *MockEvaluationRepo) MarkNotified(ctx context.Context, id uuid.UUID, recipient string, at time.Time) error {
	args := m.Called(ctx, id, recipient, at)
	return args.Error(0)
}

func (m *MockEvaluationRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}
