package pkgstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryStore struct {
	mu      sync.RWMutex
	recs    map[string]Record
	reports map[string][]RepairReport
}

// NewMemoryStore is the zero-setup store for single-process use and tests.
func NewMemoryStore() Store {
	return &memoryStore{
		recs:    map[string]Record{},
		reports: map[string][]RepairReport{},
	}
}

func (m *memoryStore) Put(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.ID] = rec
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *memoryStore) List(_ context.Context, opts ListOpts) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(opts.Q)
	var out []Summary
	for _, rec := range m.recs {
		s := summarize(rec)
		if q != "" &&
			!strings.Contains(strings.ToLower(s.Title), q) &&
			!strings.Contains(strings.ToLower(s.FileName), q) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt != out[j].UploadedAt {
			return out[i].UploadedAt > out[j].UploadedAt
		}
		return out[i].ID < out[j].ID
	})
	return page(out, opts), nil
}

func (m *memoryStore) SaveReport(_ context.Context, rep RepairReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[rep.PackageID]; !ok {
		return ErrNotFound
	}
	m.reports[rep.PackageID] = append(m.reports[rep.PackageID], rep)
	return nil
}

func (m *memoryStore) Reports(_ context.Context, packageID string) ([]RepairReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]RepairReport(nil), m.reports[packageID]...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func page(s []Summary, opts ListOpts) []Summary {
	if opts.Offset > 0 {
		if opts.Offset >= len(s) {
			return nil
		}
		s = s[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(s) {
		s = s[:opts.Limit]
	}
	return s
}
