package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mrstrict/internal/domain"
)

// MockTextExtractor is a mock implementation of port.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, doc domain.SourceDocument) domain.Extraction {
	args := m.Called(ctx, doc)
	return args.Get(0).(domain.Extraction)
}
