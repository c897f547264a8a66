package ingest

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"lcaload/internal/archive"
	"lcaload/internal/csvtext"
	"lcaload/internal/domain"
	"lcaload/internal/port"
)

// readAheadBytes is the block size fetched per remote read when iterating a
// ZIP over ranged GETs. Decompressors read in small pieces.
const readAheadBytes = 1 << 20

// rangeReaderAt exposes a stored object as an io.ReaderAt over ranged reads,
// keeping one read-ahead block.
type rangeReaderAt struct {
	ctx     context.Context
	storage port.ObjectStorage
	bucket  string
	key     string
	size    int64

	blockOff int64
	block    []byte
}

func (r *rangeReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= r.size {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) && off < r.size {
		if off < r.blockOff || off >= r.blockOff+int64(len(r.block)) {
			length := max(int64(len(p)-n), readAheadBytes)
			length = min(length, r.size-off)
			data, err := r.storage.ReadRange(r.ctx, r.bucket, r.key, off, length)
			if err != nil {
				return n, err
			}
			if len(data) == 0 {
				return n, io.ErrUnexpectedEOF
			}
			r.blockOff, r.block = off, data
		}
		c := copy(p[n:], r.block[off-r.blockOff:])
		n += c
		off += int64(c)
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// DerivedPrefix returns the storage prefix for objects materialized from a
// job's source. Sources follow jobs/<job_id>/source/<name>.
func DerivedPrefix(sourceKey string) string {
	if before, _, ok := strings.Cut(sourceKey, "/source/"); ok {
		return before + "/derived/"
	}
	return sourceKey + ".derived/"
}

// JobPrefix returns the storage prefix holding every object of a job.
func JobPrefix(jobID string) string {
	return "jobs/" + jobID + "/"
}

// SourceKey returns the storage key of an uploaded source.
func SourceKey(jobID, filename string) string {
	return JobPrefix(jobID) + "source/" + filename
}

// KindOf infers the container format of a stored object from its key.
func KindOf(key string) domain.SourceKind {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
	if kind, ok := domain.AllowedSourceExtensions[ext]; ok {
		return kind
	}
	return domain.SourceKindCSV
}

// materialize prepares the data object named by the cursor. Plain CSV is
// read in place; ZIP entries and XLSX sheets are written once under the
// job's derived prefix.
func (d *Driver) materialize(ctx context.Context, req ChunkRequest, cur *domain.IngestCursor) error {
	switch KindOf(req.SourceKey) {
	case domain.SourceKindZIP:
		return d.materializeZIP(ctx, req, cur)
	case domain.SourceKindXLSX:
		return d.materializeWorkbook(ctx, req, cur)
	default:
		cur.DataKey = ""
		cur.GeographyKey = ""
		return nil
	}
}

func (d *Driver) materializeZIP(ctx context.Context, req ChunkRequest, cur *domain.IngestCursor) error {
	size, err := d.storage.Size(ctx, d.bucket, req.SourceKey)
	if err != nil {
		return err
	}
	zr, err := archive.Open(&rangeReaderAt{
		ctx: ctx, storage: d.storage, bucket: d.bucket, key: req.SourceKey, size: size,
	}, size)
	if err != nil {
		return fmt.Errorf("reading %s: %w", req.SourceKey, err)
	}
	if archive.IsWorkbook(zr) {
		return d.materializeWorkbook(ctx, req, cur)
	}

	sel, err := archive.Select(zr, req.Dataset.ArchiveKeywords)
	if err != nil {
		return fmt.Errorf("selecting entries of %s: %w", req.SourceKey, err)
	}

	prefix := DerivedPrefix(req.SourceKey)
	dataKey := prefix + path.Base(sel.Data.Name)
	if err := d.copyEntry(ctx, sel.Data, dataKey); err != nil {
		return err
	}
	cur.DataKey = dataKey
	cur.GeographyKey = ""

	if req.Dataset.NeedsGeography {
		if sel.Geography == nil {
			log.Printf("ingest.Driver.materialize: %s has no geography entry, area names come from the data entry only", req.SourceKey)
		} else {
			geoKey := prefix + "geography-" + path.Base(sel.Geography.Name)
			if err := d.copyEntry(ctx, sel.Geography, geoKey); err != nil {
				return err
			}
			cur.GeographyKey = geoKey
		}
	}

	log.Printf("ingest.Driver.materialize: %s -> data=%s geography=%s (%d entries)",
		req.SourceKey, cur.DataKey, cur.GeographyKey, len(sel.Entries))
	return nil
}

func (d *Driver) materializeWorkbook(ctx context.Context, req ChunkRequest, cur *domain.IngestCursor) error {
	body, err := d.storage.Open(ctx, d.bucket, req.SourceKey)
	if err != nil {
		return err
	}
	defer body.Close()

	name := strings.TrimSuffix(path.Base(req.SourceKey), path.Ext(req.SourceKey)) + ".csv"
	dataKey := DerivedPrefix(req.SourceKey) + name
	var rows int
	err = d.uploadStream(ctx, dataKey, func(w io.Writer) error {
		var werr error
		rows, werr = archive.WorkbookToCSV(body, w)
		if werr != nil {
			return fmt.Errorf("%w: converting workbook %s: %w", domain.ErrSourceUnreadable, req.SourceKey, werr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cur.DataKey = dataKey
	cur.GeographyKey = ""
	cur.Encoding = "utf-8"
	log.Printf("ingest.Driver.materialize: %s -> %s (%d rows)", req.SourceKey, dataKey, rows)
	return nil
}

// copyEntry stores the raw bytes of a ZIP entry; decoding happens per window.
func (d *Driver) copyEntry(ctx context.Context, f *zip.File, key string) error {
	return d.uploadStream(ctx, key, func(w io.Writer) error {
		rc, err := archive.EntryReader(f, csvtext.Decoder{})
		if err != nil {
			return err
		}
		defer rc.Close()
		if _, err := io.Copy(w, rc); err != nil {
			return fmt.Errorf("%w: extracting entry %s (%d bytes): %w", domain.ErrSourceUnreadable, f.Name, f.UncompressedSize64, err)
		}
		return nil
	})
}

// uploadStream pipes the output of fill into a new object at key.
func (d *Driver) uploadStream(ctx context.Context, key string, fill func(w io.Writer) error) error {
	pr, pw := io.Pipe()
	go func() {
		_ = pw.CloseWithError(fill(pw))
	}()

	_, err := d.storage.Upload(ctx, port.UploadInput{
		Bucket:      d.bucket,
		Key:         key,
		Body:        pr,
		ContentType: domain.SourceContentTypes[domain.SourceKindCSV],
	})
	_ = pr.CloseWithError(fmt.Errorf("upload of %s finished", key))
	if err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return nil
}
