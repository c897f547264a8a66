package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lcaload/internal/port"
)

// MockNotifier is a mock implementation of port.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendJobSummary(ctx context.Context, summary port.JobSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}
