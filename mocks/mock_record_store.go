package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lcaload/internal/domain"
	"lcaload/internal/port"
)

// MockRecordStore is a mock implementation of port.RecordStore.
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) WriteBatch(ctx context.Context, ds *domain.Dataset, recs []domain.CanonicalRecord) (port.BatchResult, error) {
	args := m.Called(ctx, ds, recs)
	return args.Get(0).(port.BatchResult), args.Error(1)
}

func (m *MockRecordStore) ResetYear(ctx context.Context, ds *domain.Dataset, year int) (int64, error) {
	args := m.Called(ctx, ds, year)
	return args.Get(0).(int64), args.Error(1)
}

// MockWageAreaRepo is a mock implementation of port.WageAreaRepository.
type MockWageAreaRepo struct {
	mock.Mock
}

func (m *MockWageAreaRepo) UpdateAreaNames(ctx context.Context, year int, names map[string]string) (int64, error) {
	args := m.Called(ctx, year, names)
	return args.Get(0).(int64), args.Error(1)
}
