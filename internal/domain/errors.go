package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")

	// Configuration errors: returned before any work is attempted.
	ErrUnknownDataset     = errors.New("unknown dataset")
	ErrMissingDatasetYear = errors.New("dataset year is required")
	ErrMissingSourceKey   = errors.New("source key is required")
	ErrInvalidCursor      = errors.New("invalid ingest cursor")
	ErrHostNotAllowed     = errors.New("archive host is not allow-listed")
	ErrInvalidArchiveURL  = errors.New("invalid archive url")

	// Source errors: fatal to the current invocation.
	ErrSourceNotFound    = errors.New("source object not found")
	ErrNoCSVEntry        = errors.New("archive contains no csv entry")
	ErrNoGeographyEntry  = errors.New("archive contains no geography entry")
	ErrRowExceedsWindow  = errors.New("row exceeds ingest window")
	ErrMissingHeader     = errors.New("source has no header row")
	ErrArchiveFetch      = errors.New("archive download failed")
	ErrArchiveTooLarge   = errors.New("archive exceeds maximum allowed size")
	ErrSourceUnreadable  = errors.New("source could not be decoded")
	ErrStorageRead       = errors.New("object storage read failed")
)
