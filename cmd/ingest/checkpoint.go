package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lcaload/internal/domain"
)

// checkpoint is the cursor file of a CLI-driven job. It is rewritten after
// every committed window, so a killed process resumes where it stopped.
type checkpoint struct {
	JobID       string               `json:"job_id,omitempty"`
	SourceKey   string               `json:"source_key"`
	Dataset     domain.DatasetName   `json:"dataset"`
	DatasetYear int                  `json:"dataset_year"`
	Cursor      *domain.IngestCursor `json:"cursor,omitempty"`
	Report      domain.IngestReport  `json:"report"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// loadCheckpoint returns nil when path does not exist.
func loadCheckpoint(path string) (*checkpoint, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cursor file: %w", err)
	}
	var cp checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parsing cursor file %s: %w", path, err)
	}
	if cp.SourceKey == "" {
		return nil, fmt.Errorf("cursor file %s: %w", path, domain.ErrMissingSourceKey)
	}
	return &cp, nil
}

// saveCheckpoint replaces path atomically.
func saveCheckpoint(path string, cp *checkpoint) error {
	cp.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cursor file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing cursor file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing cursor file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing cursor file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing cursor file: %w", err)
	}
	return nil
}

// jobIDOf extracts <id> from a jobs/<id>/... key.
func jobIDOf(sourceKey string) string {
	rest, ok := strings.CutPrefix(sourceKey, "jobs/")
	if !ok {
		return ""
	}
	id, _, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return id
}
