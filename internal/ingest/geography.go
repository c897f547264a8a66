package ingest

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"lcaload/internal/coerce"
	"lcaload/internal/csvtext"
	"lcaload/internal/dataset"
	"lcaload/internal/port"
	"lcaload/internal/schema"
)

// GeographyCache holds parsed area-code lookups keyed by geography object
// key. One cache is built per process and handed to the driver; entries are
// immutable once loaded.
type GeographyCache struct {
	storage port.ObjectStorage
	bucket  string
	dec     csvtext.Decoder
	entries *lru.Cache[string, map[string]string]
}

// NewGeographyCache returns a cache holding at most size lookups.
func NewGeographyCache(storage port.ObjectStorage, bucket string, size int, dec csvtext.Decoder) (*GeographyCache, error) {
	if size < 1 {
		size = 1
	}
	entries, err := lru.New[string, map[string]string](size)
	if err != nil {
		return nil, fmt.Errorf("creating geography cache: %w", err)
	}
	return &GeographyCache{storage: storage, bucket: bucket, dec: dec, entries: entries}, nil
}

// AreaNames returns the area_code -> area_name lookup stored at key.
func (g *GeographyCache) AreaNames(ctx context.Context, key string) (map[string]string, error) {
	if names, ok := g.entries.Get(key); ok {
		return names, nil
	}
	raw, err := g.storage.Download(ctx, g.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("loading geography %s: %w", key, err)
	}
	text, err := g.dec.Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("loading geography %s: %w", key, err)
	}
	names := ParseAreaNames(text)
	g.entries.Add(key, names)
	return names, nil
}

// Invalidate drops the cached lookup for key.
func (g *GeographyCache) Invalidate(key string) {
	g.entries.Remove(key)
}

// InvalidatePrefix drops every cached lookup whose key starts with prefix.
func (g *GeographyCache) InvalidatePrefix(prefix string) int {
	n := 0
	for _, key := range g.entries.Keys() {
		if strings.HasPrefix(key, prefix) {
			g.entries.Remove(key)
			n++
		}
	}
	return n
}

// Len returns the number of cached lookups.
func (g *GeographyCache) Len() int {
	return g.entries.Len()
}

// ParseAreaNames reads a geography CSV into an area_code -> area_name map.
// Rows lacking either column, or that do not tokenize, are ignored; the last
// row wins for a repeated code.
func ParseAreaNames(text []byte) map[string]string {
	names := make(map[string]string)
	header, end, ok := csvtext.HeaderLine(text, true)
	if !ok {
		return names
	}
	cells, err := csvtext.SplitRecord(header)
	if err != nil {
		return names
	}
	geo := dataset.Geography()
	mapping := schema.Reconcile(geo.Synonyms, cells)
	codeIdx, okCode := mapping.Index("area_code")
	nameIdx, okName := mapping.Index("area_name")
	if !okCode || !okName {
		return names
	}

	for _, line := range csvtext.SplitLines(text[end:], 2) {
		if line.Blank() {
			continue
		}
		row, err := csvtext.SplitRecord(line.Text)
		if err != nil {
			continue
		}
		code := coerce.String(csvtext.Cell(row, codeIdx))
		name := coerce.String(csvtext.Cell(row, nameIdx))
		if code == nil || name == nil {
			continue
		}
		names[*code] = *name
	}
	return names
}
