// Package logging records binding calls in the call_log table.
package logging

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region log-call
// LogCall writes a call entry to the call_log table and returns its row ID.
func LogCall(db *sql.DB, entry CallEntry) (int64, error) {
	if entry.Method == "" {
		return 0, fmt.Errorf("log call: empty method")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	res, err := db.Exec(
		`INSERT INTO call_log (method, args_json, result_json, run_id, error, error_kind, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Method,
		nullIfEmpty(entry.ArgsJSON),
		nullIfEmpty(entry.ResultJSON),
		nullIfEmpty(entry.RunID),
		nullIfEmpty(entry.Error),
		nullIfEmpty(entry.ErrorKind),
		entry.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("log call: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("log call: %w", err)
	}
	return id, nil
}

// #endregion log-call

// #region list-calls
// ListCalls returns up to limit of the most recent calls in chronological
// order. A limit <= 0 returns every call.
func ListCalls(db *sql.DB, limit int) ([]CallEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []callRow
	err := sqlx.NewDb(db, "sqlite").Select(&rows,
		`SELECT id, method, args_json, result_json, run_id, error, error_kind, created_at
		 FROM (SELECT * FROM call_log ORDER BY id DESC LIMIT ?)
		 ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}

	entries := make([]CallEntry, 0, len(rows))
	for _, r := range rows {
		created, _ := time.Parse(timeLayout, r.CreatedAt)
		entries = append(entries, CallEntry{
			ID:         r.ID,
			Method:     r.Method,
			ArgsJSON:   deref(r.ArgsJSON),
			ResultJSON: deref(r.ResultJSON),
			RunID:      deref(r.RunID),
			Error:      deref(r.Error),
			ErrorKind:  deref(r.ErrorKind),
			CreatedAt:  created,
		})
	}
	return entries, nil
}

// #endregion list-calls

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// #endregion helpers
