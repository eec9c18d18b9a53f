package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invex/internal/domain"
)

// MockInvoiceSummarizer is a mock implementation of port.InvoiceSummarizer.
type MockInvoiceSummarizer struct {
	mock.Mock
}

func (m *MockInvoiceSummarizer) Summarize(ctx context.Context, inv *domain.Invoice) (string, error) {
	args := m.Called(ctx, inv)
	return args.String(0), args.Error(1)
}
