// Package email renders operator notifications; delivery lives in the
// provider subpackages.
package email

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"lcaload/internal/port"
)

// maxListedSamples bounds the skipped-row samples quoted in a summary.
const maxListedSamples = 10

// Subject returns the subject line for a job summary.
func Subject(s port.JobSummary) string {
	status := "finished"
	if !s.Report.Done {
		status = "stopped early"
	}
	if s.Report.Errored > 0 {
		status += " with errors"
	}
	return fmt.Sprintf("lcaload: %s %d import %s", s.Dataset, s.DatasetYear, status)
}

func reasonLines(s port.JobSummary) []string {
	reasons := make([]string, 0, len(s.Report.SkipReasons))
	for r, n := range s.Report.SkipReasons {
		reasons = append(reasons, fmt.Sprintf("%s: %d", r, n))
	}
	sort.Strings(reasons)
	return reasons
}

// TextBody renders the plain-text summary.
func TextBody(s port.JobSummary) string {
	r := s.Report
	var b strings.Builder
	fmt.Fprintf(&b, "Job %s (%s %d)\nSource: %s\n\n", s.JobID, s.Dataset, s.DatasetYear, s.SourceKey)
	fmt.Fprintf(&b, "Chunks:   %d\nParsed:   %d\nInserted: %d\nUpdated:  %d\nSkipped:  %d\nErrored:  %d\n",
		r.Chunks, r.TotalParsed, r.Inserted, r.Updated, r.Skipped, r.Errored)

	if reasons := reasonLines(s); len(reasons) > 0 {
		b.WriteString("\nSkip reasons:\n")
		for _, line := range reasons {
			b.WriteString("  " + line + "\n")
		}
	}
	if len(r.SkippedSamples) > 0 {
		b.WriteString("\nSample skipped rows:\n")
		for i, sample := range r.SkippedSamples {
			if i == maxListedSamples {
				fmt.Fprintf(&b, "  ... %d more in the report\n", len(r.SkippedSamples)-maxListedSamples)
				break
			}
			fmt.Fprintf(&b, "  line %d: %s", sample.LineNumber, sample.Reason)
			if len(sample.MissingFields) > 0 {
				fmt.Fprintf(&b, " (missing %s)", strings.Join(sample.MissingFields, ", "))
			}
			b.WriteString("\n")
		}
	}
	for _, be := range r.BatchErrors {
		fmt.Fprintf(&b, "\nBatch lines %d-%d (%d records) failed: %s", be.FirstLine, be.LastLine, be.Records, be.Detail)
	}
	return b.String()
}

// HTMLBody renders the summary as a minimal HTML document.
func HTMLBody(s port.JobSummary) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">%s</h2>
  <pre style="background: #f6f8fa; padding: 12px; border-radius: 6px;">%s</pre>
</body>
</html>`, html.EscapeString(Subject(s)), html.EscapeString(TextBody(s)))
}
