package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lcaload/internal/port"
)

// MockArchiveFetcher is a mock implementation of port.ArchiveFetcher.
type MockArchiveFetcher struct {
	mock.Mock
}

func (m *MockArchiveFetcher) Fetch(ctx context.Context, rawURL string) (*port.FetchedArchive, func(), error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	cleanup, _ := args.Get(1).(func())
	if cleanup == nil {
		cleanup = func() {}
	}
	return args.Get(0).(*port.FetchedArchive), cleanup, args.Error(2)
}
