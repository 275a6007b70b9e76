package directory

import (
	"context"
	"sync"

	"gatehouse/pkg/platform/sentinel"
)

// InMemory is a seeded directory for tests and dependency-free wiring.
type InMemory struct {
	mu        sync.RWMutex
	companies map[int64]string
	locations map[int64]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		companies: map[int64]string{},
		locations: map[int64]string{},
	}
}

func (d *InMemory) SeedCompany(id int64, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.companies[id] = name
}

func (d *InMemory) SeedLocation(id int64, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locations[id] = name
}

func (d *InMemory) CompanyName(_ context.Context, id int64) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.companies[id]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return name, nil
}

func (d *InMemory) LocationName(_ context.Context, id int64) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.locations[id]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return name, nil
}
