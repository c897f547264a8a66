package ingest_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"lcaload/internal/domain"
	"lcaload/internal/port"
)

const testBucket = "test-bucket"

// memStorage is an in-memory ObjectStorage.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	ranges  int
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
}

func (m *memStorage) get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, key)
	}
	return data, nil
}

func (m *memStorage) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *memStorage) Upload(_ context.Context, in port.UploadInput) (*port.UploadOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.put(in.Key, data)
	return &port.UploadOutput{Location: "mem://" + in.Key}, nil
}

func (m *memStorage) Download(_ context.Context, _, key string) ([]byte, error) {
	return m.get(key)
}

func (m *memStorage) Open(_ context.Context, _, key string) (io.ReadCloser, error) {
	data, err := m.get(key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) ReadRange(_ context.Context, _, key string, offset, length int64) ([]byte, error) {
	data, err := m.get(key)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.ranges++
	m.mu.Unlock()
	if offset >= int64(len(data)) {
		return nil, nil
	}
	end := min(offset+length, int64(len(data)))
	out := make([]byte, end-offset)
	copy(out, data[offset:end])
	return out, nil
}

func (m *memStorage) Size(_ context.Context, _, key string) (int64, error) {
	data, err := m.get(key)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (m *memStorage) Delete(_ context.Context, _, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStorage) DeletePrefix(_ context.Context, _, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			delete(m.objects, k)
			n++
		}
	}
	return n, nil
}

// memStore is an in-memory RecordStore keyed like the real tables.
type memStore struct {
	mu      sync.Mutex
	keyed   map[string]map[string]any
	rows    []map[string]any
	resets  []int
	batches [][]int
	failOn  func(recs []domain.CanonicalRecord) error
}

func newMemStore() *memStore {
	return &memStore{keyed: make(map[string]map[string]any)}
}

func (s *memStore) WriteBatch(_ context.Context, ds *domain.Dataset, recs []domain.CanonicalRecord) (port.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		if err := s.failOn(recs); err != nil {
			return port.BatchResult{}, err
		}
	}
	lines := make([]int, len(recs))
	var res port.BatchResult
	for i, r := range recs {
		lines[i] = r.Line
		if len(ds.NaturalKey) == 0 {
			s.rows = append(s.rows, r.Values)
			res.Inserted++
			continue
		}
		k := r.Key(ds.NaturalKey)
		if _, ok := s.keyed[k]; ok {
			res.Updated++
		} else {
			res.Inserted++
		}
		s.keyed[k] = r.Values
	}
	s.batches = append(s.batches, lines)
	return res, nil
}

func (s *memStore) ResetYear(_ context.Context, ds *domain.Dataset, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = append(s.resets, year)
	kept := s.rows[:0]
	var removed int64
	for _, r := range s.rows {
		if r[ds.YearColumn] == year {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return removed, nil
}
