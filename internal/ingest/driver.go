// Package ingest runs resumable, windowed imports of CSV sources into the
// record store. Each RunChunk call is stateless: everything needed to resume
// travels in the cursor.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"lcaload/internal/coerce"
	"lcaload/internal/csvtext"
	"lcaload/internal/domain"
	"lcaload/internal/port"
	"lcaload/internal/schema"
)

// Options tunes window sizes and batching.
type Options struct {
	CursorMode       domain.CursorMode
	WindowBytes      int64
	WindowRows       int
	BatchSize        int
	SampleCap        int
	HeaderProbeBytes int64
	Decoder          csvtext.Decoder
}

// ChunkRequest is one invocation of the driver.
type ChunkRequest struct {
	SourceKey string
	Dataset   *domain.Dataset
	Year      int
	Cursor    *domain.IngestCursor
}

// Driver advances ingest jobs one window at a time.
type Driver struct {
	storage port.ObjectStorage
	writer  *Writer
	store   port.RecordStore
	geo     *GeographyCache
	bucket  string
	opts    Options
}

// NewDriver wires a Driver. geo may be nil when no dataset needs geography.
func NewDriver(storage port.ObjectStorage, store port.RecordStore, geo *GeographyCache, bucket string, opts Options) *Driver {
	if opts.CursorMode == "" {
		opts.CursorMode = domain.CursorModeByte
	}
	if opts.SampleCap < 1 {
		opts.SampleCap = 100
	}
	if opts.HeaderProbeBytes < 1 {
		opts.HeaderProbeBytes = 64 << 10
	}
	return &Driver{
		storage: storage,
		writer:  NewWriter(store, opts.BatchSize),
		store:   store,
		geo:     geo,
		bucket:  bucket,
		opts:    opts,
	}
}

// window is the decoded content of one invocation.
type window struct {
	lines      []csvtext.Line
	nextOffset int64
	consumed   int
	atEOF      bool
}

func validate(req ChunkRequest) error {
	if req.Dataset == nil {
		return domain.ErrUnknownDataset
	}
	if req.Year <= 0 {
		return fmt.Errorf("%w: got %d", domain.ErrMissingDatasetYear, req.Year)
	}
	if strings.TrimSpace(req.SourceKey) == "" {
		return domain.ErrMissingSourceKey
	}
	if c := req.Cursor; c != nil {
		if c.Offset < 0 {
			return fmt.Errorf("%w: negative offset %d", domain.ErrInvalidCursor, c.Offset)
		}
		if c.Mode != "" && c.Mode != domain.CursorModeByte && c.Mode != domain.CursorModeRow {
			return fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidCursor, c.Mode)
		}
	}
	return nil
}

// RunChunk processes the window after req.Cursor and returns its counts and
// the cursor to resume from. Row-level and batch-level failures are counted,
// never returned; a returned error leaves the input cursor valid for retry.
func (d *Driver) RunChunk(ctx context.Context, req ChunkRequest) (*domain.ChunkResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	ds := req.Dataset

	cur := domain.IngestCursor{Mode: d.opts.CursorMode}
	if req.Cursor != nil {
		cur = *req.Cursor
		if cur.Mode == "" {
			cur.Mode = d.opts.CursorMode
		}
	}
	startState := req.Cursor.State()

	if startState == domain.JobStateNotStarted {
		if err := d.materialize(ctx, req, &cur); err != nil {
			return nil, err
		}
	}
	dataKey := cur.DataKey
	if dataKey == "" {
		if KindOf(req.SourceKey) != domain.SourceKindCSV {
			return nil, fmt.Errorf("%w: cursor for %s carries no data key", domain.ErrInvalidCursor, req.SourceKey)
		}
		dataKey = req.SourceKey
	}
	dec, err := d.decoderFor(&cur)
	if err != nil {
		return nil, err
	}

	size, err := d.storage.Size(ctx, d.bucket, dataKey)
	if err != nil {
		return nil, err
	}
	if cur.Mode == domain.CursorModeByte && cur.Offset > size {
		return nil, fmt.Errorf("%w: offset %d past end of %s (%d bytes)", domain.ErrInvalidCursor, cur.Offset, dataKey, size)
	}

	if startState == domain.JobStateNotStarted || !schema.Current(ds.Synonyms, cur.Mapping) {
		header, end, err := d.readHeader(ctx, dataKey, size, dec)
		if err != nil {
			return nil, err
		}
		cur.Mapping = schema.Reconcile(ds.Synonyms, header)
		if missing := unmappedRequired(ds, cur.Mapping); len(missing) > 0 {
			log.Printf("ingest.Driver.RunChunk: %s header lacks required fields %v", dataKey, missing)
		}
		if startState == domain.JobStateNotStarted {
			cur.Line = 2
			if cur.Mode == domain.CursorModeByte {
				cur.Offset = end
			}
			if ds.Policy == domain.WritePolicyReplace {
				removed, err := d.store.ResetYear(ctx, ds, req.Year)
				if err != nil {
					return nil, fmt.Errorf("clearing %s year %d: %w", ds.Table, req.Year, err)
				}
				log.Printf("ingest.Driver.RunChunk: cleared %d %s rows for year %d", removed, ds.Table, req.Year)
			}
		}
	}

	var win *window
	if cur.Mode == domain.CursorModeRow {
		win, err = d.rowWindow(ctx, dataKey, &cur, dec)
	} else {
		win, err = d.byteWindow(ctx, dataKey, size, &cur, dec)
	}
	if err != nil {
		return nil, err
	}

	env := domain.JobEnv{Year: req.Year}
	if ds.NeedsGeography && cur.GeographyKey != "" && d.geo != nil {
		env.AreaNames, err = d.geo.AreaNames(ctx, cur.GeographyKey)
		if err != nil {
			return nil, err
		}
	}

	t := newTally(d.opts.SampleCap)
	recs := d.buildRecords(ds, cur.Mapping, win.lines, env, t)
	if err := d.writer.write(ctx, ds, recs, t); err != nil {
		return nil, err
	}

	next := cur
	if cur.Mode == domain.CursorModeRow {
		next.Offset += int64(win.consumed)
		next.Line += win.consumed
	} else {
		next.Line += win.consumed
		next.Offset = win.nextOffset
	}

	res := &domain.ChunkResult{
		ParsedCount:    t.parsed,
		InsertedCount:  t.inserted,
		UpdatedCount:   t.updated,
		SkippedCount:   t.skipped,
		ErrorCount:     t.errored,
		HasMore:        !win.atEOF,
		Done:           win.atEOF,
		NextCursor:     &next,
		SkipReasons:    t.reasons,
		SkippedSamples: t.sampler.Samples(),
		BatchErrors:    t.batchErrors,
	}
	res.State = next.State()
	if res.Done {
		res.State = domain.JobStateDone
	}

	log.Printf("ingest.Driver.RunChunk: %s %s offset %d -> %d parsed=%d inserted=%d updated=%d skipped=%d errored=%d done=%v",
		ds.Name, dataKey, cur.Offset, next.Offset, res.ParsedCount, res.InsertedCount, res.UpdatedCount,
		res.SkippedCount, res.ErrorCount, res.Done)
	return res, nil
}

func (d *Driver) decoderFor(cur *domain.IngestCursor) (csvtext.Decoder, error) {
	if cur.Encoding == "" {
		return d.opts.Decoder, nil
	}
	dec, err := csvtext.NewDecoder(cur.Encoding)
	if err != nil {
		return csvtext.Decoder{}, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}
	return dec, nil
}

// readHeader returns the tokenized header and the byte offset just past it,
// growing the probe until the header line ends.
func (d *Driver) readHeader(ctx context.Context, key string, size int64, dec csvtext.Decoder) ([]string, int64, error) {
	if size == 0 {
		return nil, 0, fmt.Errorf("%w: %s is empty", domain.ErrMissingHeader, key)
	}
	limit := max(d.opts.WindowBytes, d.opts.HeaderProbeBytes)
	probe := d.opts.HeaderProbeBytes
	for {
		n := min(probe, size)
		buf, err := d.storage.ReadRange(ctx, d.bucket, key, 0, n)
		if err != nil {
			return nil, 0, err
		}
		line, end, ok := csvtext.HeaderLine(buf, int64(len(buf)) >= size)
		if ok {
			text, err := dec.Bytes([]byte(line))
			if err != nil {
				return nil, 0, err
			}
			if strings.TrimSpace(string(text)) == "" {
				return nil, 0, fmt.Errorf("%w: %s starts with a blank line", domain.ErrMissingHeader, key)
			}
			cells, err := csvtext.SplitRecord(string(text))
			if err != nil {
				return nil, 0, fmt.Errorf("%w: %s header: %v", domain.ErrMissingHeader, key, err)
			}
			return cells, int64(end), nil
		}
		if probe >= limit {
			return nil, 0, fmt.Errorf("%w: header of %s longer than %d bytes", domain.ErrRowExceedsWindow, key, limit)
		}
		probe = min(probe*2, limit)
	}
}

// byteWindow reads [offset, offset+WindowBytes) snapped back to the last
// line boundary.
func (d *Driver) byteWindow(ctx context.Context, key string, size int64, cur *domain.IngestCursor, dec csvtext.Decoder) (*window, error) {
	if cur.Offset >= size {
		return &window{nextOffset: size, atEOF: true}, nil
	}
	length := min(d.opts.WindowBytes, size-cur.Offset)
	buf, err := d.storage.ReadRange(ctx, d.bucket, key, cur.Offset, length)
	if err != nil {
		return nil, err
	}
	atEOF := cur.Offset+int64(len(buf)) >= size
	if !atEOF {
		cut := csvtext.LastLineBoundary(buf)
		if cut < 0 {
			return nil, fmt.Errorf("%w: no line break in %d bytes at offset %d of %s",
				domain.ErrRowExceedsWindow, len(buf), cur.Offset, key)
		}
		buf = buf[:cut]
	}
	next := cur.Offset + int64(len(buf))

	text, err := dec.Bytes(buf)
	if err != nil {
		return nil, err
	}
	lines := csvtext.SplitLines(text, cur.Line)
	return &window{lines: lines, nextOffset: next, consumed: len(lines), atEOF: atEOF}, nil
}

// rowWindow streams past the header and the consumed lines, then takes up
// to WindowRows physical lines.
func (d *Driver) rowWindow(ctx context.Context, key string, cur *domain.IngestCursor, dec csvtext.Decoder) (*window, error) {
	body, err := d.storage.Open(ctx, d.bucket, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	br := bufio.NewReaderSize(dec.Reader(body), 64<<10)
	if _, err := readLine(br); err != nil {
		if errors.Is(err, io.EOF) {
			return &window{atEOF: true}, nil
		}
		return nil, fmt.Errorf("reading header of %s: %w", key, err)
	}
	for i := int64(0); i < cur.Offset; i++ {
		if _, err := readLine(br); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: row offset %d past end of %s (%d rows)", domain.ErrInvalidCursor, cur.Offset, key, i)
			}
			return nil, fmt.Errorf("skipping to row %d of %s: %w", cur.Offset, key, err)
		}
	}

	win := &window{}
	for len(win.lines) < d.opts.WindowRows {
		text, err := readLine(br)
		if errors.Is(err, io.EOF) {
			win.atEOF = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		win.lines = append(win.lines, csvtext.Line{Number: cur.Line + len(win.lines), Text: text})
	}
	win.consumed = len(win.lines)
	if !win.atEOF {
		if _, err := br.Peek(1); errors.Is(err, io.EOF) {
			win.atEOF = true
		}
	}
	return win, nil
}

// readLine returns the next physical line without its terminator. io.EOF is
// returned only when no bytes remain.
func readLine(br *bufio.Reader) (string, error) {
	s, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r"), nil
}

// buildRecords tokenizes and coerces the lines of a window. Rows that cannot
// become records are counted as skips in t.
func (d *Driver) buildRecords(ds *domain.Dataset, m *domain.ColumnMapping, lines []csvtext.Line, env domain.JobEnv, t *tally) []domain.CanonicalRecord {
	recs := make([]domain.CanonicalRecord, 0, len(lines))
	for _, line := range lines {
		if line.Blank() {
			continue
		}
		t.parsed++

		cells, err := csvtext.SplitRecord(line.Text)
		if err != nil {
			t.skip(domain.SkippedRecordDiagnostic{LineNumber: line.Number, Reason: domain.SkipUnparseableRow})
			continue
		}

		rec := domain.CanonicalRecord{Line: line.Number, Values: make(map[string]any, len(ds.Fields)+len(ds.Derived)+1)}
		var missing []string
		for _, f := range ds.Fields {
			var v any
			if idx, ok := m.Index(f.Name); ok {
				v = coerce.Value(f.Kind, csvtext.Cell(cells, idx))
			}
			rec.Values[f.Name] = v
			if f.Required && v == nil {
				missing = append(missing, f.Name)
			}
		}
		if len(missing) > 0 {
			t.skip(domain.SkippedRecordDiagnostic{
				LineNumber:          line.Number,
				Reason:              domain.SkipMissingRequiredField,
				NaturalKeyFragments: rawFragments(ds, m, cells),
				MissingFields:       missing,
			})
			continue
		}

		if ds.YearColumn != "" {
			rec.Values[ds.YearColumn] = env.Year
		}
		if ds.Finalize != nil {
			ds.Finalize(&rec, env)
		}
		recs = append(recs, rec)
	}
	return recs
}

// rawFragments echoes the trimmed raw diagnostic cells of a skipped row.
func rawFragments(ds *domain.Dataset, m *domain.ColumnMapping, cells []string) map[string]string {
	out := make(map[string]string, len(ds.DiagnosticFields))
	for _, f := range ds.DiagnosticFields {
		if idx, ok := m.Index(f); ok {
			if v := csvtext.Cell(cells, idx); v != "" {
				out[f] = v
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func unmappedRequired(ds *domain.Dataset, m *domain.ColumnMapping) []string {
	var out []string
	for _, f := range ds.RequiredFields() {
		if _, ok := m.Index(f); !ok {
			out = append(out, f)
		}
	}
	return out
}
