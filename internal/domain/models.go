package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceFile is an uploaded source blob in durable storage.
type SourceFile struct {
	JobID        uuid.UUID   `json:"job_id"`
	Key          string      `json:"source_key"`
	Bucket       string      `json:"-"`
	Size         int64       `json:"size"`
	Kind         SourceKind  `json:"kind"`
	ContentType  string      `json:"content_type"`
	Dataset      DatasetName `json:"dataset"`
	OriginalName string      `json:"original_name"`
	UploadedAt   time.Time   `json:"uploaded_at"`
}

// Synonym lists every known header spelling of one canonical field.
type Synonym struct {
	Canonical string
	Variants  []string
}

// SynonymTable is a versioned set of header synonyms. Adding a newly observed
// spelling is a data change here, never a code change in the reconciler.
type SynonymTable struct {
	Version string
	Entries []Synonym
}

// ColumnMapping maps canonical fields to header column indexes.
type ColumnMapping struct {
	SynonymVersion string         `json:"synonym_version"`
	Fields         map[string]int `json:"fields"`
	HeaderWidth    int            `json:"header_width"`
}

// Index returns the header index of a canonical field.
func (m *ColumnMapping) Index(field string) (int, bool) {
	if m == nil {
		return -1, false
	}
	idx, ok := m.Fields[field]
	return idx, ok
}

// IngestCursor is the externally held resumption state of one job.
type IngestCursor struct {
	Mode CursorMode `json:"mode"`
	// Offset is a byte offset in byte mode, or the number of physical lines
	// consumed after the header in row mode.
	Offset int64 `json:"offset"`
	// Line is the 1-based physical line number at Offset (header is line 1).
	Line         int            `json:"line,omitempty"`
	Mapping      *ColumnMapping `json:"mapping,omitempty"`
	DataKey      string         `json:"data_key,omitempty"`
	GeographyKey string         `json:"geography_key,omitempty"`
	// Encoding overrides the configured source encoding for DataKey.
	Encoding string `json:"encoding,omitempty"`
}

// State reports where the cursor sits in the job lifecycle.
func (c *IngestCursor) State() JobState {
	if c == nil || (c.Offset == 0 && c.Mapping == nil) {
		return JobStateNotStarted
	}
	if c.Offset == 0 {
		return JobStateHeaderParsed
	}
	return JobStateStreaming
}

// Field describes one canonical column of a dataset.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
}

// JobEnv carries job parameters into a dataset's Finalize hook.
type JobEnv struct {
	Year      int
	AreaNames map[string]string
}

// Dataset describes how a source maps onto its target table.
type Dataset struct {
	Name  DatasetName
	Table string
	// Fields are the canonical columns read from the source, in storage order.
	Fields []Field
	// Derived are stored columns computed by Finalize.
	Derived    []string
	YearColumn string
	NaturalKey []string
	// DiagnosticFields are echoed in skip samples to help locate a row.
	DiagnosticFields []string
	Policy           WritePolicy
	Synonyms         SynonymTable
	ArchiveKeywords  []string
	NeedsGeography   bool
	Finalize         func(rec *CanonicalRecord, env JobEnv)
}

// Columns returns every stored column in insert order.
func (d *Dataset) Columns() []string {
	cols := make([]string, 0, len(d.Fields)+len(d.Derived)+1)
	if d.YearColumn != "" {
		cols = append(cols, d.YearColumn)
	}
	for _, f := range d.Fields {
		cols = append(cols, f.Name)
	}
	return append(cols, d.Derived...)
}

// RequiredFields returns the names of fields that must be present.
func (d *Dataset) RequiredFields() []string {
	var out []string
	for _, f := range d.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// CanonicalRecord is a coerced record keyed by canonical column name.
// A nil value is stored as NULL.
type CanonicalRecord struct {
	Line   int
	Values map[string]any
}

// Key joins the natural-key values of the record.
func (r *CanonicalRecord) Key(fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i], _ = r.Values[f].(string)
	}
	return strings.Join(parts, "\x1f")
}

// SkippedRecordDiagnostic is a sampled record that was not written.
type SkippedRecordDiagnostic struct {
	LineNumber          int               `json:"line_number"`
	Reason              SkipReason        `json:"reason"`
	NaturalKeyFragments map[string]string `json:"natural_key_fragments,omitempty"`
	MissingFields       []string          `json:"missing_fields,omitempty"`
}

// BatchErrorDiagnostic describes a batch whose commit failed.
type BatchErrorDiagnostic struct {
	FirstLine int    `json:"first_line"`
	LastLine  int    `json:"last_line"`
	Records   int    `json:"records"`
	Detail    string `json:"detail"`
}

// ChunkResult is the per-window outcome of one driver invocation.
type ChunkResult struct {
	State          JobState                  `json:"state"`
	ParsedCount    int                       `json:"parsed_count"`
	InsertedCount  int                       `json:"inserted_count"`
	UpdatedCount   int                       `json:"updated_count"`
	SkippedCount   int                       `json:"skipped_count"`
	ErrorCount     int                       `json:"error_count"`
	HasMore        bool                      `json:"has_more"`
	Done           bool                      `json:"done"`
	NextCursor     *IngestCursor             `json:"next_cursor,omitempty"`
	SkipReasons    map[SkipReason]int        `json:"skip_reasons,omitempty"`
	SkippedSamples []SkippedRecordDiagnostic `json:"skipped_samples"`
	BatchErrors    []BatchErrorDiagnostic    `json:"batch_errors,omitempty"`
}

// IngestReport accumulates chunk results across a whole job.
type IngestReport struct {
	Chunks         int                       `json:"chunks"`
	TotalParsed    int                       `json:"total_parsed"`
	Inserted       int                       `json:"inserted"`
	Updated        int                       `json:"updated"`
	Skipped        int                       `json:"skipped"`
	Errored        int                       `json:"errored"`
	SkipReasons    map[SkipReason]int        `json:"skip_reasons"`
	SkippedSamples []SkippedRecordDiagnostic `json:"skipped_samples"`
	BatchErrors    []BatchErrorDiagnostic    `json:"batch_errors,omitempty"`
	Done           bool                      `json:"done"`
}

// AreaPatchResult is the outcome of an area-name backfill.
type AreaPatchResult struct {
	UpdatedCount  int64 `json:"updated_count"`
	AreaCodesSeen int   `json:"area_codes_seen"`
}
