package domain

// DatasetName identifies a loadable dataset.
type DatasetName string

const (
	DatasetDisclosure DatasetName = "disclosure"
	DatasetWage       DatasetName = "wage"
	DatasetGeography  DatasetName = "geography"
)

// SourceKind is the container format of an uploaded source.
type SourceKind string

const (
	SourceKindCSV  SourceKind = "csv"
	SourceKindZIP  SourceKind = "zip"
	SourceKindXLSX SourceKind = "xlsx"
)

// AllowedSourceExtensions maps file extensions (without dot) to SourceKind.
var AllowedSourceExtensions = map[string]SourceKind{
	"csv":  SourceKindCSV,
	"txt":  SourceKindCSV,
	"zip":  SourceKindZIP,
	"xlsx": SourceKindXLSX,
}

// SourceContentTypes maps SourceKind to the content type used in storage.
var SourceContentTypes = map[SourceKind]string{
	SourceKindCSV:  "text/csv",
	SourceKindZIP:  "application/zip",
	SourceKindXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// CursorMode selects how an ingest window is measured.
type CursorMode string

const (
	CursorModeByte CursorMode = "byte"
	CursorModeRow  CursorMode = "row"
)

// JobState is the position of an ingest job in its lifecycle.
type JobState string

const (
	JobStateNotStarted   JobState = "not_started"
	JobStateHeaderParsed JobState = "header_parsed"
	JobStateStreaming    JobState = "streaming"
	JobStateDone         JobState = "done"
)

// WritePolicy controls how a dataset's records reach the store.
type WritePolicy string

const (
	// WritePolicyUpsert inserts, or updates in place on natural-key conflict.
	WritePolicyUpsert WritePolicy = "upsert"
	// WritePolicyReplace clears the dataset year once at job start, then appends.
	// A retried window appends its rows again; a re-run from a nil cursor
	// starts the year over.
	WritePolicyReplace WritePolicy = "replace"
)

// FieldKind selects the coercer applied to a raw cell.
type FieldKind string

const (
	FieldString FieldKind = "string"
	FieldDate   FieldKind = "date"
	FieldNumber FieldKind = "number"
	FieldBool   FieldKind = "bool"
)

// SkipReason is the categorical reason a row was not written.
type SkipReason string

const (
	SkipMissingRequiredField SkipReason = "missing_required_field"
	SkipUnparseableRow       SkipReason = "unparseable_row"
	SkipDuplicateKey         SkipReason = "duplicate_key"
)
