package ingest

import (
	"lcaload/internal/domain"
)

// maxBatchErrors caps batch error diagnostics per window and per report.
const maxBatchErrors = 20

// Sampler keeps a bounded sample of skipped records. At most perReason
// samples of any single reason are kept so one failure mode cannot crowd
// out the others.
type Sampler struct {
	limit     int
	perReason int
	counts    map[domain.SkipReason]int
	samples   []domain.SkippedRecordDiagnostic
}

// NewSampler returns a Sampler holding at most limit samples, perReason of
// any one reason. perReason <= 0 means no per-reason bound.
func NewSampler(limit, perReason int) *Sampler {
	if perReason <= 0 || perReason > limit {
		perReason = limit
	}
	return &Sampler{
		limit:     limit,
		perReason: perReason,
		counts:    make(map[domain.SkipReason]int),
		samples:   []domain.SkippedRecordDiagnostic{},
	}
}

// Add offers a sample and reports whether it was kept.
func (s *Sampler) Add(d domain.SkippedRecordDiagnostic) bool {
	if len(s.samples) >= s.limit || s.counts[d.Reason] >= s.perReason {
		return false
	}
	s.counts[d.Reason]++
	s.samples = append(s.samples, d)
	return true
}

// Samples returns the kept samples in arrival order.
func (s *Sampler) Samples() []domain.SkippedRecordDiagnostic {
	return s.samples
}

// Reporter aggregates chunk results into a job report.
type Reporter struct {
	report  domain.IngestReport
	sampler *Sampler
}

// NewReporter returns an empty Reporter with a total sample cap of limit.
func NewReporter(limit int) *Reporter {
	return ResumeReporter(domain.IngestReport{}, limit)
}

// ResumeReporter continues aggregation from a previously saved report.
func ResumeReporter(prev domain.IngestReport, limit int) *Reporter {
	if limit < 1 {
		limit = 1
	}
	r := &Reporter{report: prev, sampler: NewSampler(limit, max(limit/2, 1))}
	if r.report.SkipReasons == nil {
		r.report.SkipReasons = make(map[domain.SkipReason]int)
	}
	for _, s := range prev.SkippedSamples {
		r.sampler.Add(s)
	}
	r.report.SkippedSamples = r.sampler.Samples()
	return r
}

// Add folds one chunk result into the running totals.
func (r *Reporter) Add(res *domain.ChunkResult) {
	r.report.Chunks++
	r.report.TotalParsed += res.ParsedCount
	r.report.Inserted += res.InsertedCount
	r.report.Updated += res.UpdatedCount
	r.report.Skipped += res.SkippedCount
	r.report.Errored += res.ErrorCount
	for reason, n := range res.SkipReasons {
		r.report.SkipReasons[reason] += n
	}
	for _, s := range res.SkippedSamples {
		r.sampler.Add(s)
	}
	r.report.SkippedSamples = r.sampler.Samples()
	for _, be := range res.BatchErrors {
		if len(r.report.BatchErrors) >= maxBatchErrors {
			break
		}
		r.report.BatchErrors = append(r.report.BatchErrors, be)
	}
	r.report.Done = res.Done
}

// Report returns the aggregated report.
func (r *Reporter) Report() domain.IngestReport {
	return r.report
}

// tally accumulates the counts of a single window.
type tally struct {
	parsed, inserted, updated, skipped, errored int
	reasons     map[domain.SkipReason]int
	sampler     *Sampler
	batchErrors []domain.BatchErrorDiagnostic
}

func newTally(sampleCap int) *tally {
	return &tally{
		reasons: make(map[domain.SkipReason]int),
		sampler: NewSampler(sampleCap, 0),
	}
}

func (t *tally) skip(d domain.SkippedRecordDiagnostic) {
	t.skipped++
	t.reasons[d.Reason]++
	t.sampler.Add(d)
}

func (t *tally) batchError(d domain.BatchErrorDiagnostic) {
	t.errored += d.Records
	if len(t.batchErrors) < maxBatchErrors {
		t.batchErrors = append(t.batchErrors, d)
	}
}
