// Package directory resolves tenant entities (companies, locations) to
// display names for source contexts.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gatehouse/pkg/platform/sentinel"
)

// Postgres implements audit.Directory against the primary database.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (d *Postgres) CompanyName(ctx context.Context, id int64) (string, error) {
	return d.lookup(ctx, `SELECT name FROM companies WHERE id = $1`, id)
}

func (d *Postgres) LocationName(ctx context.Context, id int64) (string, error) {
	return d.lookup(ctx, `SELECT name FROM locations WHERE id = $1`, id)
}

func (d *Postgres) lookup(ctx context.Context, query string, id int64) (string, error) {
	var name string
	err := d.db.QueryRowContext(ctx, query, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("directory lookup: %w", err)
	}
	return name, nil
}
