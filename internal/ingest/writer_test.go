package ingest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lcaload/internal/csvtext"
	"lcaload/internal/dataset"
	"lcaload/internal/domain"
	"lcaload/internal/ingest"
)

func rec(line int, kv ...string) domain.CanonicalRecord {
	r := domain.CanonicalRecord{Line: line, Values: map[string]any{}}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Values[kv[i]] = kv[i+1]
	}
	return r
}

func TestDedup_LastOccurrenceWins(t *testing.T) {
	recs := []domain.CanonicalRecord{
		rec(2, "case_number", "A1", "case_status", "Certified"),
		rec(3, "case_number", "A2"),
		rec(4, "case_number", "A1", "case_status", "Withdrawn"),
		rec(5, "case_number", "A1", "case_status", "Denied"),
	}
	kept, superseded := ingest.Dedup(dataset.Disclosure(), recs)

	require.Len(t, kept, 2)
	assert.Equal(t, 3, kept[0].Line)
	assert.Equal(t, 5, kept[1].Line)
	assert.Equal(t, "Denied", kept[1].Values["case_status"])
	require.Len(t, superseded, 2)
	assert.Equal(t, 2, superseded[0].Line)
	assert.Equal(t, 4, superseded[1].Line)
}

func TestDedup_NoNaturalKeyKeepsAll(t *testing.T) {
	recs := []domain.CanonicalRecord{
		rec(2, "area_code", "10180", "soc_code", "11-1011"),
		rec(3, "area_code", "10180", "soc_code", "11-1011"),
	}
	kept, superseded := ingest.Dedup(dataset.Wage(), recs)
	assert.Len(t, kept, 2)
	assert.Empty(t, superseded)
}

func TestGeographyCache_LoadsOnceAndInvalidates(t *testing.T) {
	storage := newMemStorage()
	storage.put("geo.csv", []byte("AREA,AREA_TITLE\n10180,Abilene\n,Nowhere\n11500,Anniston\n"))
	geo, err := ingest.NewGeographyCache(storage, testBucket, 2, csvtext.Decoder{})
	require.NoError(t, err)

	names, err := geo.AreaNames(context.Background(), "geo.csv")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"10180": "Abilene", "11500": "Anniston"}, names)
	assert.Equal(t, 1, geo.Len())

	storage.put("geo.csv", []byte("AREA,AREA_TITLE\n10180,Abilene TX\n"))
	cached, err := geo.AreaNames(context.Background(), "geo.csv")
	require.NoError(t, err)
	assert.Equal(t, "Abilene", cached["10180"])

	geo.Invalidate("geo.csv")
	assert.Equal(t, 0, geo.Len())
	reloaded, err := geo.AreaNames(context.Background(), "geo.csv")
	require.NoError(t, err)
	assert.Equal(t, "Abilene TX", reloaded["10180"])
}

func TestParseAreaNames_WithoutColumns(t *testing.T) {
	assert.Empty(t, ingest.ParseAreaNames([]byte("foo,bar\n1,2\n")))
	assert.Empty(t, ingest.ParseAreaNames(nil))
}

func TestDerivedPrefix(t *testing.T) {
	assert.Equal(t, "jobs/j1/derived/", ingest.DerivedPrefix("jobs/j1/source/a.zip"))
	assert.Equal(t, "imports/a.zip.derived/", ingest.DerivedPrefix("imports/a.zip"))
	assert.Equal(t, "jobs/j1/source/LCA.xlsx", ingest.SourceKey("j1", "LCA.xlsx"))
	assert.Equal(t, domain.SourceKindXLSX, ingest.KindOf("x/LCA.XLSX"))
	assert.Equal(t, domain.SourceKindCSV, ingest.KindOf("x/data.txt"))
}

func TestGeographyCache_InvalidatePrefix(t *testing.T) {
	storage := newMemStorage()
	storage.put("jobs/a/derived/geography-g.csv", []byte("AREA,AREA_TITLE\n1,One\n"))
	storage.put("jobs/b/derived/geography-g.csv", []byte("AREA,AREA_TITLE\n2,Two\n"))
	geo, err := ingest.NewGeographyCache(storage, testBucket, 4, csvtext.Decoder{})
	require.NoError(t, err)

	for _, key := range []string{"jobs/a/derived/geography-g.csv", "jobs/b/derived/geography-g.csv"} {
		_, err := geo.AreaNames(context.Background(), key)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, geo.InvalidatePrefix("jobs/a/"))
	assert.Equal(t, 1, geo.Len())
}
