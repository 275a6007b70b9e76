// Package memory provides an in-memory audit log store for tests and
// dependency-free wiring.
package memory

import (
	"context"
	"sync"

	"gatehouse/internal/audit"
)

// InMemory is an append-only audit log held in process memory. Safe for
// concurrent use.
type InMemory struct {
	mu      sync.Mutex
	nextID  int64
	records []audit.ChangeRecord
}

func NewInMemory() *InMemory {
	return &InMemory{nextID: 1}
}

// Append stores a copy of the record and returns its generated id.
func (s *InMemory) Append(_ context.Context, record *audit.ChangeRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	stored.ID = s.nextID
	s.nextID++
	s.records = append(s.records, stored)
	return stored.ID, nil
}

// List returns records matching the filter in insertion order.
func (s *InMemory) List(_ context.Context, filter audit.Filter) ([]audit.ChangeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []audit.ChangeRecord
	skipped := 0
	for _, rec := range s.records {
		if !matches(rec, filter) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, rec)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func matches(rec audit.ChangeRecord, f audit.Filter) bool {
	if f.EntityType != "" && rec.Entity.Type != f.EntityType {
		return false
	}
	if f.EntityID != 0 && rec.Entity.ID != f.EntityID {
		return false
	}
	if f.Source != "" && rec.Details.Source != f.Source {
		return false
	}
	if f.Action != "" && rec.Action != f.Action {
		return false
	}
	if f.CustomerID != 0 && rec.CustomerID != f.CustomerID {
		return false
	}
	return true
}
