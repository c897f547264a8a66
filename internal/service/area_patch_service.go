package service

import (
	"context"
	"fmt"
	"log"
	"os"

	"lcaload/internal/archive"
	"lcaload/internal/csvtext"
	"lcaload/internal/domain"
	"lcaload/internal/fetch"
	"lcaload/internal/ingest"
	"lcaload/internal/port"
)

// AreaPatchInput is the DTO for an area-name backfill.
type AreaPatchInput struct {
	ArchiveURL  string
	DatasetYear int
}

// AreaPatchService backfills prevailing-wage area names from a remote
// wage archive's geography entry.
type AreaPatchService interface {
	PatchAreas(ctx context.Context, input AreaPatchInput) (*domain.AreaPatchResult, error)
}

type areaPatchService struct {
	policy  fetch.HostPolicy
	fetcher port.ArchiveFetcher
	repo    port.WageAreaRepository
	dec     csvtext.Decoder
}

// NewAreaPatchService creates a new AreaPatchService implementation.
func NewAreaPatchService(
	policy fetch.HostPolicy,
	fetcher port.ArchiveFetcher,
	repo port.WageAreaRepository,
	dec csvtext.Decoder,
) AreaPatchService {
	return &areaPatchService{policy: policy, fetcher: fetcher, repo: repo, dec: dec}
}

func (s *areaPatchService) PatchAreas(ctx context.Context, input AreaPatchInput) (*domain.AreaPatchResult, error) {
	if input.DatasetYear <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrMissingDatasetYear, input.DatasetYear)
	}
	// No network I/O happens for a URL off the allow-list.
	u, err := s.policy.Check(input.ArchiveURL)
	if err != nil {
		return nil, err
	}

	fetched, cleanup, err := s.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}
	defer cleanup()

	names, err := s.readAreaNames(fetched)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateAreaNames(ctx, input.DatasetYear, names)
	if err != nil {
		return nil, fmt.Errorf("patching area names for %d: %w", input.DatasetYear, err)
	}
	log.Printf("areaPatchService.PatchAreas: year %d, %d area codes, %d rows updated from %s",
		input.DatasetYear, len(names), updated, u.Host)
	return &domain.AreaPatchResult{UpdatedCount: updated, AreaCodesSeen: len(names)}, nil
}

func (s *areaPatchService) readAreaNames(fetched *port.FetchedArchive) (map[string]string, error) {
	f, err := os.Open(fetched.Path)
	if err != nil {
		return nil, fmt.Errorf("opening fetched archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	zr, err := archive.Open(f, fetched.Size)
	if err != nil {
		return nil, err
	}
	entry, err := archive.FindGeography(zr)
	if err != nil {
		return nil, err
	}
	text, err := archive.ReadEntry(entry, s.dec)
	if err != nil {
		return nil, err
	}
	return ingest.ParseAreaNames([]byte(text)), nil
}
