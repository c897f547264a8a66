// Package archive locates and decodes the data entries of ZIP exports.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/samber/lo"

	"lcaload/internal/csvtext"
	"lcaload/internal/domain"
)

// maxListedEntries bounds the entry list carried in extraction errors.
const maxListedEntries = 50

// Selection is the outcome of applying the name heuristics to an archive.
type Selection struct {
	Data      *zip.File
	Geography *zip.File
	Entries   []string
}

// Open reads the central directory of a ZIP. Entries are decompressed lazily,
// so r can be a ranged view over remote storage.
func Open(r io.ReaderAt, size int64) (*zip.Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: opening zip archive (%d bytes): %w", domain.ErrSourceUnreadable, size, err)
	}
	return zr, nil
}

// IsWorkbook reports whether the archive is an OOXML spreadsheet.
func IsWorkbook(zr *zip.Reader) bool {
	return lo.ContainsBy(zr.File, func(f *zip.File) bool {
		return f.Name == "xl/workbook.xml"
	})
}

func isJunk(name string) bool {
	return strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(path.Base(name), "._")
}

func isCSV(name string) bool {
	return strings.EqualFold(path.Ext(name), ".csv")
}

func entries(zr *zip.Reader) []*zip.File {
	return lo.Filter(zr.File, func(f *zip.File, _ int) bool {
		return !f.FileInfo().IsDir() && !isJunk(f.Name)
	})
}

func findGeography(files []*zip.File) *zip.File {
	f, _ := lo.Find(files, func(f *zip.File) bool {
		return strings.Contains(strings.ToLower(path.Base(f.Name)), "geography")
	})
	return f
}

// FindGeography returns the geography entry of an archive.
func FindGeography(zr *zip.Reader) (*zip.File, error) {
	files := entries(zr)
	if f := findGeography(files); f != nil {
		return f, nil
	}
	names := lo.Map(files, func(f *zip.File, _ int) string { return f.Name })
	return nil, fmt.Errorf("%w (entries: %s)", domain.ErrNoGeographyEntry, listEntries(names))
}

// Select picks the geography entry (name contains "geography") and the data
// entry: the first .csv whose name contains one of keywords, else the first
// .csv. It fails with ErrNoCSVEntry, listing the entries present, when the
// archive holds no .csv at all.
func Select(zr *zip.Reader, keywords []string) (*Selection, error) {
	files := entries(zr)
	sel := &Selection{
		Entries:   lo.Map(files, func(f *zip.File, _ int) string { return f.Name }),
		Geography: findGeography(files),
	}

	var firstCSV *zip.File
	for _, f := range files {
		if !isCSV(f.Name) || f == sel.Geography {
			continue
		}
		if firstCSV == nil {
			firstCSV = f
		}
		base := strings.ToLower(path.Base(f.Name))
		if lo.SomeBy(keywords, func(k string) bool { return strings.Contains(base, k) }) {
			sel.Data = f
			break
		}
	}
	if sel.Data == nil {
		sel.Data = firstCSV
	}
	if sel.Data == nil {
		return nil, fmt.Errorf("%w (entries: %s)", domain.ErrNoCSVEntry, listEntries(sel.Entries))
	}
	return sel, nil
}

func listEntries(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	if len(names) <= maxListedEntries {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(names[:maxListedEntries], ", "), len(names)-maxListedEntries)
}

// EntryReader opens an entry for streaming, decoding it to UTF-8.
func EntryReader(f *zip.File, dec csvtext.Decoder) (io.ReadCloser, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening entry %s (%d bytes compressed): %w", domain.ErrSourceUnreadable, f.Name, f.CompressedSize64, err)
	}
	return struct {
		io.Reader
		io.Closer
	}{dec.Reader(rc), rc}, nil
}

// ReadEntry decodes an entry fully to text.
func ReadEntry(f *zip.File, dec csvtext.Decoder) (string, error) {
	rc, err := EntryReader(f, dec)
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%w: decompressing entry %s (%d bytes): %w", domain.ErrSourceUnreadable, f.Name, f.UncompressedSize64, err)
	}
	return string(data), nil
}
