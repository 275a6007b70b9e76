package flow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"gatehouse/pkg/platform/sentinel"
)

// PostgresKioskKeys reads per-location kiosk key hashes from the locations
// table.
type PostgresKioskKeys struct {
	db *sql.DB
}

func NewPostgresKioskKeys(db *sql.DB) *PostgresKioskKeys {
	return &PostgresKioskKeys{db: db}
}

func (k *PostgresKioskKeys) KioskKeyHash(ctx context.Context, locationID int64) (string, error) {
	var hash sql.NullString
	err := k.db.QueryRowContext(ctx,
		`SELECT kiosk_key_hash FROM locations WHERE id = $1`, locationID,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !hash.Valid) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load kiosk key hash: %w", err)
	}
	return hash.String, nil
}

// InMemoryKioskKeys is a seeded key source for tests.
type InMemoryKioskKeys struct {
	mu     sync.RWMutex
	hashes map[int64]string
}

func NewInMemoryKioskKeys() *InMemoryKioskKeys {
	return &InMemoryKioskKeys{hashes: map[int64]string{}}
}

func (k *InMemoryKioskKeys) Seed(locationID int64, hash string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.hashes[locationID] = hash
}

func (k *InMemoryKioskKeys) KioskKeyHash(_ context.Context, locationID int64) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	hash, ok := k.hashes[locationID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return hash, nil
}
