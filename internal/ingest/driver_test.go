package ingest_test

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lcaload/internal/csvtext"
	"lcaload/internal/dataset"
	"lcaload/internal/domain"
	"lcaload/internal/ingest"
)

const disclosureHeader = "case_number,case_status,visa_class,employer_name,wage_rate_of_pay_from\n"

func defaultOptions() ingest.Options {
	return ingest.Options{
		CursorMode:       domain.CursorModeByte,
		WindowBytes:      4 << 20,
		WindowRows:       5000,
		BatchSize:        500,
		SampleCap:        100,
		HeaderProbeBytes: 64,
	}
}

func newDriver(t *testing.T, storage *memStorage, store *memStore, opts ingest.Options) *ingest.Driver {
	t.Helper()
	geo, err := ingest.NewGeographyCache(storage, testBucket, 4, opts.Decoder)
	require.NoError(t, err)
	return ingest.NewDriver(storage, store, geo, testBucket, opts)
}

// runAll drives a job to completion and returns every chunk result.
func runAll(t *testing.T, d *ingest.Driver, req ingest.ChunkRequest) []*domain.ChunkResult {
	t.Helper()
	var results []*domain.ChunkResult
	for i := 0; i < 1000; i++ {
		res, err := d.RunChunk(context.Background(), req)
		require.NoError(t, err)
		results = append(results, res)
		if res.Done {
			return results
		}
		req.Cursor = res.NextCursor
	}
	t.Fatal("job did not finish")
	return nil
}

func totals(results []*domain.ChunkResult) domain.IngestReport {
	r := ingest.NewReporter(100)
	for _, res := range results {
		r.Add(res)
	}
	return r.Report()
}

func TestRunChunk_ThreeRowScenario(t *testing.T) {
	storage := newMemStorage()
	store := newMemStore()
	storage.put("jobs/j1/source/lca.csv", []byte(disclosureHeader+
		`"A1","Certified","H-1B","Acme Inc","85000"`+"\n"+
		`"","Certified","H-1B","Acme Inc","85000"`+"\n"+
		`"A2","Certified","H-1B","Acme Inc","$92,000"`+"\n"))

	d := newDriver(t, storage, store, defaultOptions())
	res, err := d.RunChunk(context.Background(), ingest.ChunkRequest{
		SourceKey: "jobs/j1/source/lca.csv",
		Dataset:   dataset.Disclosure(),
		Year:      2024,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.ParsedCount)
	assert.Equal(t, 2, res.InsertedCount)
	assert.Equal(t, 0, res.UpdatedCount)
	assert.Equal(t, 1, res.SkippedCount)
	assert.Equal(t, 0, res.ErrorCount)
	assert.True(t, res.Done)
	assert.False(t, res.HasMore)
	assert.Equal(t, domain.JobStateDone, res.State)

	require.Contains(t, store.keyed, "A2")
	assert.Equal(t, 92000.0, store.keyed["A2"]["wage_rate_from"])
	assert.Equal(t, 2024, store.keyed["A2"]["disclosure_year"])

	require.Len(t, res.SkippedSamples, 1)
	sample := res.SkippedSamples[0]
	assert.Equal(t, 3, sample.LineNumber)
	assert.Equal(t, domain.SkipMissingRequiredField, sample.Reason)
	assert.Equal(t, []string{"case_number"}, sample.MissingFields)
	assert.Equal(t, "Acme Inc", sample.NaturalKeyFragments["employer_name"])
}

func TestRunChunk_MissingEmployerIsSkipped(t *testing.T) {
	storage := newMemStorage()
	store := newMemStore()
	storage.put("lca.csv", []byte(disclosureHeader+"A1,Certified,H-1B,,1000\nA2,Certified,H-1B,Beta,2000\n"))

	d := newDriver(t, storage, store, defaultOptions())
	res, err := d.RunChunk(context.Background(), ingest.ChunkRequest{
		SourceKey: "lca.csv", Dataset: dataset.Disclosure(), Year: 2024,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.InsertedCount)
	assert.Equal(t, 1, res.SkippedCount)
	assert.NotContains(t, store.keyed, "A1")
	require.Len(t, res.SkippedSamples, 1)
	assert.Contains(t, res.SkippedSamples[0].MissingFields, "employer_name")
	assert.Equal(t, "A1", res.SkippedSamples[0].NaturalKeyFragments["case_number"])
	assert.Equal(t, 1, res.SkipReasons[domain.SkipMissingRequiredField])
}

func TestRunChunk_ChunkBoundarySafety(t *testing.T) {
	var b strings.Builder
	b.WriteString(disclosureHeader)
	const rows = 60
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "C-%03d,Certified,H-1B,\"Employer, %d\",%d\r\n", i, i, 1000+i)
	}
	data := []byte(b.String())

	storage := newMemStorage()
	store := newMemStore()
	storage.put("lca.csv", data)

	opts := defaultOptions()
	opts.WindowBytes = 100
	d := newDriver(t, storage, store, opts)

	results := runAll(t, d, ingest.ChunkRequest{SourceKey: "lca.csv", Dataset: dataset.Disclosure(), Year: 2023})
	require.Greater(t, len(results), 10)

	for _, res := range results[:len(results)-1] {
		off := res.NextCursor.Offset
		require.Greater(t, off, int64(0))
		assert.Equal(t, byte('\n'), data[off-1], "cursor %d is not at a line start", off)
	}

	seen := map[int]int{}
	for _, batch := range store.batches {
		for _, line := range batch {
			seen[line]++
		}
	}
	assert.Len(t, seen, rows)
	for line := 2; line < rows+2; line++ {
		assert.Equal(t, 1, seen[line], "line %d", line)
	}

	rep := totals(results)
	assert.Equal(t, rows, rep.TotalParsed)
	assert.Equal(t, rows, rep.Inserted)
	assert.Equal(t, "Employer, 7", store.keyed["C-007"]["employer_name"])
}

func TestRunChunk_RowExceedsWindow(t *testing.T) {
	storage := newMemStorage()
	storage.put("lca.csv", []byte(disclosureHeader+"A1,Certified,H-1B,"+strings.Repeat("x", 200)+",1\nA2,Certified,H-1B,B,1\n"))

	opts := defaultOptions()
	opts.WindowBytes = 80
	d := newDriver(t, storage, newMemStore(), opts)

	_, err := d.RunChunk(context.Background(), ingest.ChunkRequest{SourceKey: "lca.csv", Dataset: dataset.Disclosure(), Year: 2024})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRowExceedsWindow)
}

func TestRunChunk_UpsertIsIdempotent(t *testing.T) {
	storage := newMemStorage()
	store := newMemStore()
	storage.put("lca.csv", []byte(disclosureHeader+"A1,Certified,H-1B,Acme,1\nA2,Withdrawn,H-1B,Beta,2\n"))
	d := newDriver(t, storage, store, defaultOptions())
	req := ingest.ChunkRequest{SourceKey: "lca.csv", Dataset: dataset.Disclosure(), Year: 2024}

	first := totals(runAll(t, d, req))
	second := totals(runAll(t, d, req))

	assert.Equal(t, 2, first.Inserted)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.Updated)
	assert.Len(t, store.keyed, 2)
	assert.Equal(t, "Withdrawn", store.keyed["A2"]["case_status"])
}

func TestRunChunk_DuplicateKeyWithinWindow(t *testing.T) {
	storage := newMemStorage()
	store := newMemStore()
	storage.put("lca.csv", []byte(disclosureHeader+"A1,Certified,H-1B,Acme,1\nA2,Certified,H-1B,Beta,2\nA1,Withdrawn,H-1B,Acme,3\n"))
	d := newDriver(t, storage, store, defaultOptions())

	res, err := d.RunChunk(context.Background(), ingest.ChunkRequest{SourceKey: "lca.csv", Dataset: dataset.Disclosure(), Year: 2024})
	require.NoError(t, err)

	assert.Equal(t, 3, res.ParsedCount)
	assert.Equal(t, 2, res.InsertedCount)
	assert.Equal(t, 1, res.SkippedCount)
	assert.Equal(t, 1, res.SkipReasons[domain.SkipDuplicateKey])
	assert.Equal(t, 2, res.SkippedSamples[0].LineNumber)
	assert.Equal(t, "Withdrawn", store.keyed["A1"]["case_status"])
	assert.Equal(t, [][]int{{3, 4}}, store.batches)
}

func TestRunChunk_UnterminatedQuoteIsUnparseable(t *testing.T) {
	storage := newMemStorage()
	store := newMemStore()
	storage.put("lca.csv", []byte(disclosureHeader+"A1,Certified,H-1B,\"Acme,1\n\nA2,Certified,H-1B,Beta,2\n"))
	d := newDriver(t, storage, store, defaultOptions())

	res, err := d.RunChunk(context.Background(), ingest.ChunkRequest{SourceKey: "lca.csv", Dataset: dataset.Disclosure(), Year: 2024})
	require.NoError(t, err)

	assert.Equal(t, 2, res.ParsedCount, "blank lines are not parsed")
	assert.Equal(t, 1, res.InsertedCount)
	assert.Equal(t, 1, res.SkipReasons[domain.SkipUnparseableRow])
	assert.Equal(t, 2, res.SkippedSamples[0].LineNumber)
}

func TestRunChunk_FailedBatchIsCountedAndSkipped(t *testing.T) {
	storage := newMemStorage()
	store := newMemStore()
	store.failOn = func(recs []domain.CanonicalRecord) error {
		for _, r := range recs {
			if r.Values["case_number"] == "A2" {
				return fmt.Errorf("recordRepo.WriteBatch: %w", &pgconn.PgError{
					Code: "22003", Message: "numeric field overflow", Detail: "A field with precision 12",
				})
			}
		}
		return nil
	}
	storage.put("lca.csv", []byte(disclosureHeader+"A1,Certified,H-1B,Acme,1\nA2,Certified,H-1B,Beta,2\nA3,Certified,H-1B,Gamma,3\n"))

	opts := defaultOptions()
	opts.BatchSize = 1
	d := newDriver(t, storage, store, opts)

	res, err := d.RunChunk(context.Background(), ingest.ChunkRequest{SourceKey: "lca.csv", Dataset: dataset.Disclosure(), Year: 2024})
	require.NoError(t, err)

	assert.Equal(t, 3, res.ParsedCount)
	assert.Equal(t, 2, res.InsertedCount)
	assert.Equal(t, 1, res.ErrorCount)
	require.Len(t, res.BatchErrors, 1)
	assert.Equal(t, 3, res.BatchErrors[0].FirstLine)
	assert.Contains(t, res.BatchErrors[0].Detail, "SQLSTATE 22003")
	assert.Contains(t, res.BatchErrors[0].Detail, "precision 12")
	assert.Contains(t, store.keyed, "A3")
}

func TestRunChunk_RowMode(t *testing.T) {
	storage := newMemStorage()
	store := newMemStore()
	storage.put("lca.csv", []byte(disclosureHeader+
		"A1,Certified,H-1B,Acme,1\nA2,Certified,H-1B,Beta,2\nA3,Certified,H-1B,Gamma,3\nA4,Certified,H-1B,Delta,4\nA5,Certified,H-1B,Eps,5"))

	opts := defaultOptions()
	opts.CursorMode = domain.CursorModeRow
	opts.WindowRows = 2
	d := newDriver(t, storage, store, opts)

	results := runAll(t, d, ingest.ChunkRequest{SourceKey: "lca.csv", Dataset: dataset.Disclosure(), Year: 2024})
	require.Len(t, results, 3)
	assert.Equal(t, int64(2), results[0].NextCursor.Offset)
	assert.Equal(t, 4, results[0].NextCursor.Line)
	assert.Equal(t, domain.JobStateStreaming, results[0].State)
	assert.Equal(t, int64(4), results[1].NextCursor.Offset)
	assert.Equal(t, int64(5), results[2].NextCursor.Offset)
	assert.True(t, results[2].Done)
	assert.Len(t, store.keyed, 5)
	assert.Equal(t, [][]int{{2, 3}, {4, 5}, {6}}, store.batches)
}

func TestRunChunk_RowModePastEnd(t *testing.T) {
	storage := newMemStorage()
	storage.put("lca.csv", []byte(disclosureHeader+"A1,Certified,H-1B,Acme,1\n"))
	opts := defaultOptions()
	opts.CursorMode = domain.CursorModeRow
	d := newDriver(t, storage, newMemStore(), opts)

	m := &domain.ColumnMapping{SynonymVersion: dataset.DisclosureSynonyms.Version, Fields: map[string]int{"case_number": 0}}
	_, err := d.RunChunk(context.Background(), ingest.ChunkRequest{
		SourceKey: "lca.csv", Dataset: dataset.Disclosure(), Year: 2024,
		Cursor: &domain.IngestCursor{Mode: domain.CursorModeRow, Offset: 5, Mapping: m},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCursor)
}

func TestRunChunk_Validation(t *testing.T) {
	storage := newMemStorage()
	storage.put("lca.csv", []byte(disclosureHeader))
	d := newDriver(t, storage, newMemStore(), defaultOptions())
	ds := dataset.Disclosure()

	tests := []struct {
		name string
		req  ingest.ChunkRequest
		want error
	}{
		{"missing dataset", ingest.ChunkRequest{SourceKey: "lca.csv", Year: 2024}, domain.ErrUnknownDataset},
		{"missing year", ingest.ChunkRequest{SourceKey: "lca.csv", Dataset: ds}, domain.ErrMissingDatasetYear},
		{"missing key", ingest.ChunkRequest{Dataset: ds, Year: 2024}, domain.ErrMissingSourceKey},
		{"negative offset", ingest.ChunkRequest{SourceKey: "lca.csv", Dataset: ds, Year: 2024,
			Cursor: &domain.IngestCursor{Offset: -1}}, domain.ErrInvalidCursor},
		{"past end", ingest.ChunkRequest{SourceKey: "lca.csv", Dataset: ds, Year: 2024,
			Cursor: &domain.IngestCursor{Offset: 10_000}}, domain.ErrInvalidCursor},
		{"unknown mode", ingest.ChunkRequest{SourceKey: "lca.csv", Dataset: ds, Year: 2024,
			Cursor: &domain.IngestCursor{Mode: "page"}}, domain.ErrInvalidCursor},
		{"missing source", ingest.ChunkRequest{SourceKey: "nope.csv", Dataset: ds, Year: 2024}, domain.ErrSourceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.RunChunk(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRunChunk_EmptySourceHasNoHeader(t *testing.T) {
	storage := newMemStorage()
	storage.put("lca.csv", nil)
	d := newDriver(t, storage, newMemStore(), defaultOptions())

	_, err := d.RunChunk(context.Background(), ingest.ChunkRequest{SourceKey: "lca.csv", Dataset: dataset.Disclosure(), Year: 2024})
	assert.ErrorIs(t, err, domain.ErrMissingHeader)
}

func TestRunChunk_StaleMappingIsRebuiltInPlace(t *testing.T) {
	data := disclosureHeader + "A1,Certified,H-1B,Acme,1\nA2,Certified,H-1B,Beta,2\n"
	storage := newMemStorage()
	store := newMemStore()
	storage.put("lca.csv", []byte(data))
	d := newDriver(t, storage, store, defaultOptions())

	secondRow := int64(len(disclosureHeader) + len("A1,Certified,H-1B,Acme,1\n"))
	res, err := d.RunChunk(context.Background(), ingest.ChunkRequest{
		SourceKey: "lca.csv", Dataset: dataset.Disclosure(), Year: 2024,
		Cursor: &domain.IngestCursor{
			Offset:  secondRow,
			Line:    3,
			Mapping: &domain.ColumnMapping{SynonymVersion: "2019.1", Fields: map[string]int{"case_number": 3}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.InsertedCount)
	assert.Contains(t, store.keyed, "A2")
	assert.Equal(t, dataset.DisclosureSynonyms.Version, res.NextCursor.Mapping.SynonymVersion)
	assert.Equal(t, 0, res.NextCursor.Mapping.Fields["case_number"])
}

func TestRunChunk_CursorWithoutLineNumbersRelative(t *testing.T) {
	storage := newMemStorage()
	store := newMemStore()
	storage.put("lca.csv", []byte(disclosureHeader+",Certified,H-1B,Acme,1\n"))
	d := newDriver(t, storage, store, defaultOptions())

	m := &domain.ColumnMapping{
		SynonymVersion: dataset.DisclosureSynonyms.Version,
		Fields:         map[string]int{"case_number": 0, "case_status": 1, "visa_class": 2, "employer_name": 3},
	}
	res, err := d.RunChunk(context.Background(), ingest.ChunkRequest{
		SourceKey: "lca.csv", Dataset: dataset.Disclosure(), Year: 2024,
		Cursor: &domain.IngestCursor{Offset: int64(len(disclosureHeader)), Mapping: m},
	})
	require.NoError(t, err)
	require.Len(t, res.SkippedSamples, 1)
	assert.Equal(t, 0, res.SkippedSamples[0].LineNumber)
}

func TestRunChunk_Windows1252Source(t *testing.T) {
	storage := newMemStorage()
	store := newMemStore()
	storage.put("lca.csv", []byte(disclosureHeader+"A1,Certified,H-1B,Caf\xe9 Corp,1\n"))

	opts := defaultOptions()
	dec, err := csvtext.NewDecoder("windows-1252")
	require.NoError(t, err)
	opts.Decoder = dec
	d := newDriver(t, storage, store, opts)

	_, err = d.RunChunk(context.Background(), ingest.ChunkRequest{SourceKey: "lca.csv", Dataset: dataset.Disclosure(), Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, "Café Corp", store.keyed["A1"]["employer_name"])
}

func buildZip(t *testing.T, entries [][2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(e[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRunChunk_WageArchiveReplacesYearOnce(t *testing.T) {
	storage := newMemStorage()
	store := newMemStore()
	storage.put("jobs/w1/source/alc_2024.zip", buildZip(t, [][2]string{
		{"xwalk_plus.csv", "SocCode,Title\n11-1011,Chief Executives\n"},
		{"ALC_Export.csv", "Area,SocCode,GeoLvl,Level1,Level2,Level3,Level4,Average,Label\n" +
			"10180,11-1011,1,50.00,60.00,70.00,80.00,65.00,Chief Executives\n" +
			"99999,11-1011,1,10.00,,,,,Unknown area\n" +
			"10180,11-2011,1,30.125,,,,,Advertising Managers\n"},
		{"Geography.csv", "Area,AreaName,StateAb,CountyTownName\n10180,\"Abilene, TX MSA\",TX,Callahan County\n"},
	}))

	opts := defaultOptions()
	opts.WindowBytes = 80
	d := newDriver(t, storage, store, opts)

	results := runAll(t, d, ingest.ChunkRequest{
		SourceKey: "jobs/w1/source/alc_2024.zip", Dataset: dataset.Wage(), Year: 2024,
	})

	assert.Equal(t, []int{2024}, store.resets)
	first := results[0].NextCursor
	assert.Equal(t, "jobs/w1/derived/ALC_Export.csv", first.DataKey)
	assert.Equal(t, "jobs/w1/derived/geography-Geography.csv", first.GeographyKey)
	assert.Contains(t, storage.keys(), "jobs/w1/derived/ALC_Export.csv")

	require.Len(t, store.rows, 3)
	row := store.rows[0]
	assert.Equal(t, 2024, row["wage_year"])
	assert.Equal(t, "Abilene, TX MSA", row["area_name"])
	assert.Equal(t, 104000.0, row["level_1_annual"])
	assert.Equal(t, 135200.0, row["mean_annual"])
	assert.Nil(t, store.rows[1]["area_name"])
	assert.Nil(t, store.rows[1]["level_2_annual"])
	assert.Equal(t, 62660.0, store.rows[2]["level_1_annual"])

	rep := totals(results)
	assert.Equal(t, 3, rep.Inserted)
	assert.True(t, rep.Done)
}

func TestRunChunk_WageWindowRetryAppendsUntilRerun(t *testing.T) {
	storage := newMemStorage()
	store := newMemStore()
	storage.put("jobs/w4/source/alc.csv", []byte("Area,SocCode,GeoLvl,Level1\n"+
		"10180,11-1011,1,50.00\n"+
		"10180,11-2011,1,30.00\n"+
		"10180,11-3011,1,40.00\n"))

	opts := defaultOptions()
	opts.WindowBytes = 24
	d := newDriver(t, storage, store, opts)
	req := ingest.ChunkRequest{SourceKey: "jobs/w4/source/alc.csv", Dataset: dataset.Wage(), Year: 2024}

	first, err := d.RunChunk(context.Background(), req)
	require.NoError(t, err)
	require.False(t, first.Done)

	req.Cursor = first.NextCursor
	second, err := d.RunChunk(context.Background(), req)
	require.NoError(t, err)
	require.Positive(t, second.InsertedCount)
	before := len(store.rows)

	retried, err := d.RunChunk(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, second.InsertedCount, retried.InsertedCount)
	assert.Len(t, store.rows, before+retried.InsertedCount)

	req.Cursor = nil
	runAll(t, d, req)
	assert.Equal(t, []int{2024, 2024}, store.resets)
	assert.Len(t, store.rows, 3)
}

func TestRunChunk_ArchiveWithoutCSV(t *testing.T) {
	storage := newMemStorage()
	storage.put("jobs/w2/source/alc.zip", buildZip(t, [][2]string{{"readme.txt", "hello"}}))
	d := newDriver(t, storage, newMemStore(), defaultOptions())

	_, err := d.RunChunk(context.Background(), ingest.ChunkRequest{
		SourceKey: "jobs/w2/source/alc.zip", Dataset: dataset.Wage(), Year: 2024,
	})
	require.ErrorIs(t, err, domain.ErrNoCSVEntry)
	assert.Contains(t, err.Error(), "readme.txt")
}

func TestRunChunk_WorkbookSource(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"CASE_NUMBER", "CASE_STATUS", "VISA_CLASS", "EMPLOYER_NAME", "WAGE_RATE_OF_PAY_FROM"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"X1", "Certified", "H-1B", "Multi\nLine LLC", "120000"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"X2", "Denied", "E-3 Australian", "Solo Inc", "80000"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	storage := newMemStorage()
	store := newMemStore()
	storage.put("jobs/x1/source/LCA_FY2024.xlsx", buf.Bytes())
	d := newDriver(t, storage, store, defaultOptions())

	results := runAll(t, d, ingest.ChunkRequest{
		SourceKey: "jobs/x1/source/LCA_FY2024.xlsx", Dataset: dataset.Disclosure(), Year: 2024,
	})
	assert.Equal(t, "jobs/x1/derived/LCA_FY2024.csv", results[0].NextCursor.DataKey)
	assert.Equal(t, "utf-8", results[0].NextCursor.Encoding)
	assert.Equal(t, 2, totals(results).Inserted)
	assert.Equal(t, "Multi Line LLC", store.keyed["X1"]["employer_name"])
	assert.Equal(t, 120000.0, store.keyed["X1"]["wage_rate_from"])
}

func TestRunChunk_CorruptArchive(t *testing.T) {
	storage := newMemStorage()
	storage.put("jobs/w3/source/alc.zip", bytes.Repeat([]byte("x"), 32))
	d := newDriver(t, storage, newMemStore(), defaultOptions())

	_, err := d.RunChunk(context.Background(), ingest.ChunkRequest{
		SourceKey: "jobs/w3/source/alc.zip", Dataset: dataset.Wage(), Year: 2024,
	})
	require.ErrorIs(t, err, domain.ErrSourceUnreadable)
	assert.Contains(t, err.Error(), "jobs/w3/source/alc.zip")
	assert.Contains(t, err.Error(), "32 bytes")
}

func TestRunChunk_CorruptWorkbook(t *testing.T) {
	storage := newMemStorage()
	storage.put("jobs/x2/source/LCA.xlsx", []byte("plain text, not a workbook"))
	d := newDriver(t, storage, newMemStore(), defaultOptions())

	_, err := d.RunChunk(context.Background(), ingest.ChunkRequest{
		SourceKey: "jobs/x2/source/LCA.xlsx", Dataset: dataset.Disclosure(), Year: 2024,
	})
	require.ErrorIs(t, err, domain.ErrSourceUnreadable)
	assert.Contains(t, err.Error(), "converting workbook jobs/x2/source/LCA.xlsx")
}
