package core

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory Store. The CLI uses it for dry runs, which need
// no database connection.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]StudentRecord
	imports []ImportBatch
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]StudentRecord)}
}

func (m *MemStore) SaveRecord(ctx context.Context, rec StudentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.IndexNumber]; ok {
		return ErrDuplicateKey
	}
	rec.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	m.records[rec.IndexNumber] = rec
	return nil
}

func (m *MemStore) ListRecords(ctx context.Context) ([]StudentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]StudentRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IndexNumber < out[j].IndexNumber })
	return out, nil
}

func (m *MemStore) GetRecord(ctx context.Context, indexNumber string) (StudentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[indexNumber]
	if !ok {
		return StudentRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemStore) UpdateScore(ctx context.Context, indexNumber string, score int, grade Grade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[indexNumber]
	if !ok {
		return ErrNotFound
	}
	rec.Score, rec.Grade = score, grade
	rec.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	m.records[indexNumber] = rec
	return nil
}

func (m *MemStore) DeleteRecord(ctx context.Context, indexNumber string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[indexNumber]; !ok {
		return ErrNotFound
	}
	delete(m.records, indexNumber)
	return nil
}

func (m *MemStore) Reset(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.records))
	m.records = make(map[string]StudentRecord)
	m.imports = nil
	return n, nil
}

// SaveBatch applies records one by one; unlike PgStore there is no
// transaction to roll back, so a context error leaves earlier records saved.
func (m *MemStore) SaveBatch(ctx context.Context, records []StudentRecord, opts SaveOptions) (SaveOutcome, error) {
	var out SaveOutcome
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC().Truncate(time.Second)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		_, exists := m.records[rec.IndexNumber]
		switch {
		case exists && opts.Mode != ModeUpsert:
			out.Failures = append(out.Failures, PersistFailure{IndexNumber: rec.IndexNumber, Reason: ErrDuplicateKey.Error()})
			continue
		case exists:
			out.Updated++
		default:
			out.Inserted++
		}
		rec.UpdatedAt = now
		m.records[rec.IndexNumber] = rec
	}
	return out, nil
}

func (m *MemStore) RecordImport(ctx context.Context, b ImportBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imports = append(m.imports, b)
	return nil
}

func (m *MemStore) ListImports(ctx context.Context, limit int) ([]ImportBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ImportBatch, 0, len(m.imports))
	for i := len(m.imports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.imports[i])
	}
	return out, nil
}

var _ Store = (*MemStore)(nil)
