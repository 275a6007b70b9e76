// Package postgres persists change records in the audit_log table.
//
// Expected schema:
//
//	CREATE TABLE audit_log (
//	    id          BIGSERIAL PRIMARY KEY,
//	    entity_type TEXT        NOT NULL,
//	    entity_id   BIGINT      NOT NULL,
//	    action      TEXT        NOT NULL,
//	    source      TEXT        NOT NULL,
//	    details     JSONB       NOT NULL,
//	    customer_id BIGINT,
//	    location_id BIGINT,
//	    created_at  TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX audit_log_entity_idx ON audit_log (entity_type, entity_id);
//	CREATE INDEX audit_log_customer_idx ON audit_log (customer_id, created_at);
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gatehouse/internal/audit"
)

// Store implements audit.Store on PostgreSQL. Appends are deliberately not
// enrolled in any caller transaction: audit durability must never couple to
// the primary entity mutation.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes one record. The details payload is serialized as a single
// JSON value; entity/action/source/scope columns are denormalized from the
// record for filtering only.
func (s *Store) Append(ctx context.Context, record *audit.ChangeRecord) (int64, error) {
	details, err := json.Marshal(record.Details)
	if err != nil {
		return 0, fmt.Errorf("marshal details: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO audit_log (entity_type, entity_id, action, source, details, customer_id, location_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		record.Entity.Type,
		record.Entity.ID,
		string(record.Action),
		string(record.Details.Source),
		details,
		nullableID(record.CustomerID),
		nullableID(record.LocationID),
		record.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append audit record: %w", err)
	}
	return id, nil
}

// List returns records matching the filter, oldest first.
func (s *Store) List(ctx context.Context, filter audit.Filter) ([]audit.ChangeRecord, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond+"$"+strconv.Itoa(len(args)))
	}

	if filter.EntityType != "" {
		add("entity_type = ", filter.EntityType)
	}
	if filter.EntityID != 0 {
		add("entity_id = ", filter.EntityID)
	}
	if filter.Source != "" {
		add("source = ", string(filter.Source))
	}
	if filter.Action != "" {
		add("action = ", string(filter.Action))
	}
	if filter.CustomerID != 0 {
		add("customer_id = ", filter.CustomerID)
	}

	query := `SELECT id, entity_type, entity_id, action, details, customer_id, location_id, created_at FROM audit_log`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var records []audit.ChangeRecord
	for rows.Next() {
		var (
			rec        audit.ChangeRecord
			action     string
			details    []byte
			customerID sql.NullInt64
			locationID sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.Entity.Type, &rec.Entity.ID, &action, &details, &customerID, &locationID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		if err := json.Unmarshal(details, &rec.Details); err != nil {
			return nil, fmt.Errorf("unmarshal details for record %d: %w", rec.ID, err)
		}
		rec.Action = audit.Action(action)
		rec.CustomerID = customerID.Int64
		rec.LocationID = locationID.Int64
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
