package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"lcaload/internal/domain"
	"lcaload/internal/ingest"
	"lcaload/internal/service"
)

// MockIngestService is a mock implementation of service.IngestService.
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Upload(ctx context.Context, input service.UploadInput) (*domain.SourceFile, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SourceFile), args.Error(1)
}

func (m *MockIngestService) RunChunk(ctx context.Context, input service.ChunkInput) (*domain.ChunkResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChunkResult), args.Error(1)
}

func (m *MockIngestService) Release(ctx context.Context, jobID uuid.UUID) (int, error) {
	args := m.Called(ctx, jobID)
	return args.Int(0), args.Error(1)
}

// MockAreaPatchService is a mock implementation of service.AreaPatchService.
type MockAreaPatchService struct {
	mock.Mock
}

func (m *MockAreaPatchService) PatchAreas(ctx context.Context, input service.AreaPatchInput) (*domain.AreaPatchResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AreaPatchResult), args.Error(1)
}

// MockChunkRunner is a mock implementation of service.ChunkRunner.
type MockChunkRunner struct {
	mock.Mock
}

func (m *MockChunkRunner) RunChunk(ctx context.Context, req ingest.ChunkRequest) (*domain.ChunkResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChunkResult), args.Error(1)
}
