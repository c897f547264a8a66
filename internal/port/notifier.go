package port

import (
	"context"

	"lcaload/internal/domain"
)

// JobSummary is the operator-facing outcome of a finished ingest job.
type JobSummary struct {
	JobID       string
	Dataset     domain.DatasetName
	DatasetYear int
	SourceKey   string
	Report      domain.IngestReport
}

// Notifier delivers job summaries to operators.
type Notifier interface {
	SendJobSummary(ctx context.Context, summary JobSummary) error
}
