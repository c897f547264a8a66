package noop

import (
	"context"
	"log"

	"lcaload/internal/email"
	"lcaload/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a Notifier that logs job summaries instead of sending them.
func NewNoopSender() port.Notifier {
	return &noopSender{}
}

func (s *noopSender) SendJobSummary(_ context.Context, summary port.JobSummary) error {
	log.Printf("[NOOP EMAIL] %s\n%s", email.Subject(summary), email.TextBody(summary))
	return nil
}
