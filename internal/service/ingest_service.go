package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lcaload/internal/config"
	"lcaload/internal/dataset"
	"lcaload/internal/domain"
	"lcaload/internal/ingest"
	"lcaload/internal/port"
)

// UploadInput is the DTO for source upload requests.
type UploadInput struct {
	Dataset  domain.DatasetName
	Filename string
	Size     int64
	Body     io.Reader
}

// ChunkInput is the DTO for one ingest invocation.
type ChunkInput struct {
	SourceKey   string
	Dataset     domain.DatasetName
	DatasetYear int
	Cursor      *domain.IngestCursor
}

// ChunkRunner advances a job by one window.
type ChunkRunner interface {
	RunChunk(ctx context.Context, req ingest.ChunkRequest) (*domain.ChunkResult, error)
}

// IngestService defines the chunked import contract.
type IngestService interface {
	Upload(ctx context.Context, input UploadInput) (*domain.SourceFile, error)
	RunChunk(ctx context.Context, input ChunkInput) (*domain.ChunkResult, error)
	// Release deletes every stored object of a job and returns the count.
	Release(ctx context.Context, jobID uuid.UUID) (int, error)
}

type ingestService struct {
	datasets *dataset.Registry
	runner   ChunkRunner
	storage  port.ObjectStorage
	geo      *ingest.GeographyCache
	cfg      *config.S3Config
}

// NewIngestService creates a new IngestService implementation. geo may be nil.
func NewIngestService(
	datasets *dataset.Registry,
	runner ChunkRunner,
	storage port.ObjectStorage,
	geo *ingest.GeographyCache,
	cfg *config.S3Config,
) IngestService {
	return &ingestService{
		datasets: datasets,
		runner:   runner,
		storage:  storage,
		geo:      geo,
		cfg:      cfg,
	}
}

func (s *ingestService) Upload(ctx context.Context, input UploadInput) (*domain.SourceFile, error) {
	if _, err := s.datasets.Get(input.Dataset); err != nil {
		return nil, err
	}

	name := filepath.Base(input.Filename)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	kind, ok := domain.AllowedSourceExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	jobID := uuid.New()
	src := &domain.SourceFile{
		JobID:        jobID,
		Key:          ingest.SourceKey(jobID.String(), name),
		Bucket:       s.cfg.Bucket,
		Size:         input.Size,
		Kind:         kind,
		ContentType:  domain.SourceContentTypes[kind],
		Dataset:      input.Dataset,
		OriginalName: input.Filename,
	}

	log.Printf("ingestService.Upload: uploading %s (%s, %d bytes) for dataset %s as job %s",
		name, kind, input.Size, input.Dataset, jobID)

	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         src.Key,
		Body:        input.Body,
		ContentType: src.ContentType,
		Size:        input.Size,
	})
	if err != nil {
		log.Printf("ingestService.Upload: upload failed for job %s: %v", jobID, err)
		return nil, domain.ErrUploadFailed
	}
	src.UploadedAt = time.Now().UTC()
	return src, nil
}

func (s *ingestService) RunChunk(ctx context.Context, input ChunkInput) (*domain.ChunkResult, error) {
	ds, err := s.datasets.Get(input.Dataset)
	if err != nil {
		return nil, err
	}
	res, err := s.runner.RunChunk(ctx, ingest.ChunkRequest{
		SourceKey: input.SourceKey,
		Dataset:   ds,
		Year:      input.DatasetYear,
		Cursor:    input.Cursor,
	})
	if err != nil {
		return nil, fmt.Errorf("running chunk for %s: %w", input.SourceKey, err)
	}
	return res, nil
}

func (s *ingestService) Release(ctx context.Context, jobID uuid.UUID) (int, error) {
	prefix := ingest.JobPrefix(jobID.String())
	n, err := s.storage.DeletePrefix(ctx, s.cfg.Bucket, prefix)
	if err != nil {
		return n, fmt.Errorf("releasing job %s: %w", jobID, err)
	}
	if s.geo != nil {
		s.geo.InvalidatePrefix(prefix)
	}
	log.Printf("ingestService.Release: deleted %d objects for job %s", n, jobID)
	return n, nil
}
