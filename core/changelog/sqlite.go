package changelog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the change log to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS schedule_changes (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        version INTEGER NOT NULL,
        ts INTEGER,
        mode TEXT,
        target_id INTEGER,
        map_name TEXT,
        payload BLOB
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes rec to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule_changes (version, ts, mode, target_id, map_name, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Version, rec.Timestamp.UnixNano(), rec.Mode, rec.TargetID, rec.MapName, rec.Payload)
	return err
}

// Query returns Records matching q, ordered by ascending version.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	query := `SELECT version, ts, mode, target_id, map_name, payload FROM schedule_changes WHERE version > ?`
	args := []any{q.AfterVersion}
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, q.End.UnixNano())
	}
	query += ` ORDER BY version ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var res []Record
	for rows.Next() {
		var rec Record
		var tsNano int64
		if err := rows.Scan(&rec.Version, &tsNano, &rec.Mode, &rec.TargetID, &rec.MapName, &rec.Payload); err != nil {
			return nil, err
		}
		rec.Timestamp = timeFromUnixNano(tsNano)
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
