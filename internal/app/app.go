// Package app wires configuration into the storage, database, ingest and
// notification components shared by the server and the CLI.
package app

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"lcaload/internal/config"
	"lcaload/internal/csvtext"
	"lcaload/internal/dataset"
	"lcaload/internal/email/noop"
	"lcaload/internal/email/ses"
	"lcaload/internal/fetch"
	"lcaload/internal/ingest"
	"lcaload/internal/port"
	"lcaload/internal/repository/postgres"
	"lcaload/internal/service"
	s3storage "lcaload/internal/storage/s3"
)

// App holds the wired components of one process.
type App struct {
	Config   *config.Config
	DB       *sqlx.DB
	Storage  port.ObjectStorage
	Ingest   service.IngestService
	Patch    service.AreaPatchService
	Notifier port.Notifier
}

// New connects to the database and object storage and builds the services.
func New(cfg *config.Config) (*App, error) {
	dec, err := csvtext.NewDecoder(cfg.Ingest.SourceEncoding)
	if err != nil {
		return nil, fmt.Errorf("source encoding: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	notifier, err := NewNotifier(&cfg.Email)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	geo, err := ingest.NewGeographyCache(storage, cfg.S3.Bucket, cfg.Geography.CacheSize, dec)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	// Initialize repositories
	recordRepo := postgres.NewRecordRepo(db)
	wageAreaRepo := postgres.NewWageAreaRepo(db)

	driver := ingest.NewDriver(storage, recordRepo, geo, cfg.S3.Bucket, ingest.Options{
		CursorMode:       cfg.Ingest.CursorMode,
		WindowBytes:      cfg.Ingest.WindowBytes,
		WindowRows:       cfg.Ingest.WindowRows,
		BatchSize:        cfg.Ingest.BatchSize,
		SampleCap:        cfg.Ingest.SampleCap,
		HeaderProbeBytes: cfg.Ingest.HeaderProbeBytes,
		Decoder:          dec,
	})

	policy := fetch.NewHostPolicy(cfg.Archive.AllowedHosts)
	fetcher := fetch.NewFetcher(policy, &cfg.Archive)

	return &App{
		Config:   cfg,
		DB:       db,
		Storage:  storage,
		Ingest:   service.NewIngestService(dataset.Default(), driver, storage, geo, &cfg.S3),
		Patch:    service.NewAreaPatchService(policy, fetcher, wageAreaRepo, dec),
		Notifier: notifier,
	}, nil
}

// NewNotifier builds the job-summary notifier for the configured provider.
func NewNotifier(cfg *config.EmailConfig) (port.Notifier, error) {
	switch cfg.Provider {
	case "ses":
		n, err := ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName, cfg.OperatorAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES notifier: %w", err)
		}
		log.Printf("app.NewNotifier: using SES (region=%s, to=%s)", cfg.Region, cfg.OperatorAddress)
		return n, nil
	case "", "noop":
		return noop.NewNoopSender(), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// Close releases the database pool.
func (a *App) Close() error {
	return a.DB.Close()
}
