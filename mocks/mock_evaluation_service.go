package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"mrstrict/internal/domain"
	"mrstrict/internal/report"
	"mrstrict/internal/service"
)

// MockEvaluationService is a mock implementation of service.EvaluationService.
type MockEvaluationService struct {
	mock.Mock
}

func (m *MockEvaluationService) Evaluate(ctx context.Context, input service.EvaluateInput) (*domain.Evaluation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Evaluation), args.Error(1)
}

func (m *MockEvaluationService) Notify(ctx context.Context, ownerID, id uuid.UUID, recipient string) (*domain.Evaluation, error) {
	args := m.Called(ctx, ownerID, id, recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Evaluation), args.Error(1)
}

func (m *MockEvaluationService) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Evaluation, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Evaluation), args.Error(1)
}

func (m *MockEvaluationService) List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Evaluation, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Evaluation), args.Int(1), args.Error(2)
}

// Export writes the optional third Return value (a string) to w.
func (m *MockEvaluationService) Export(ctx context.Context, ownerID, id uuid.UUID, format report.Format, w io.Writer) (*domain.Evaluation, error) {
	args := m.Called(ctx, ownerID, id, format, w)
	if len(args) > 2 {
		if body, ok := args.Get(2).(string); ok {
			_, _ = io.WriteString(w, body)
		}
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Evaluation), args.Error(1)
}

func (m *MockEvaluationService) GetReportURL(ctx context.Context, ownerID, id uuid.UUID) (string, error) {
	args := m.Called(ctx, ownerID, id)
	return args.String(0), args.Error(1)
}

func (m *MockEvaluationService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}
