package logging

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE call_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		method      TEXT NOT NULL,
		args_json   TEXT,
		result_json TEXT,
		run_id      TEXT,
		error       TEXT,
		error_kind  TEXT,
		created_at  TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// #endregion helpers

// #region log-call-tests
func TestLogCall_Success(t *testing.T) {
	db := setupDB(t)

	entry := CallEntry{
		Method:     "undulator_K",
		ArgsJSON:   `{"bfield":1,"period":0.05}`,
		ResultJSON: `{"k":4.668}`,
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	id, err := LogCall(db, entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 1 {
		t.Errorf("expected id 1, got %d", id)
	}

	var method, created string
	var runID, errText sql.NullString
	err = db.QueryRow("SELECT method, run_id, error, created_at FROM call_log WHERE id = ?", id).
		Scan(&method, &runID, &errText, &created)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if method != "undulator_K" {
		t.Errorf("method = %q", method)
	}
	if runID.Valid || errText.Valid {
		t.Errorf("expected NULL run_id and error, got %v %v", runID, errText)
	}
	if created != "2026-01-01T00:00:00.000000000Z" {
		t.Errorf("created_at = %q", created)
	}
}

func TestLogCall_DefaultsCreatedAt(t *testing.T) {
	db := setupDB(t)
	before := time.Now().UTC().Add(-time.Second)

	if _, err := LogCall(db, CallEntry{Method: "dipole_spectrum"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls, err := ListCalls(db, 0)
	if err != nil {
		t.Fatalf("ListCalls: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].CreatedAt.Before(before) {
		t.Errorf("created_at %v not filled in", calls[0].CreatedAt)
	}
}

func TestLogCall_EmptyMethod(t *testing.T) {
	db := setupDB(t)
	if _, err := LogCall(db, CallEntry{}); err == nil {
		t.Fatal("expected error for empty method")
	}
}

func TestLogCall_NoTable(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if _, err := LogCall(db, CallEntry{Method: "undulator_K"}); err == nil {
		t.Fatal("expected error without call_log table")
	}
}

// #endregion log-call-tests

// #region list-calls-tests
func TestListCalls_ChronologicalAndLimit(t *testing.T) {
	db := setupDB(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	methods := []string{"undulator_K", "dipole_spectrum", "undulator_K", "bogus"}
	for i, m := range methods {
		e := CallEntry{Method: m, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if m == "bogus" {
			e.Error = "unknown method"
			e.ErrorKind = "unknown_method"
		}
		if m == "dipole_spectrum" {
			e.RunID = "run-1"
		}
		if _, err := LogCall(db, e); err != nil {
			t.Fatalf("LogCall: %v", err)
		}
	}

	all, err := ListCalls(db, 0)
	if err != nil {
		t.Fatalf("ListCalls: %v", err)
	}
	if len(all) != len(methods) {
		t.Fatalf("expected %d calls, got %d", len(methods), len(all))
	}
	for i, c := range all {
		if c.Method != methods[i] {
			t.Errorf("call %d: method %q, want %q", i, c.Method, methods[i])
		}
		if !c.CreatedAt.Equal(base.Add(time.Duration(i) * time.Second)) {
			t.Errorf("call %d: created_at %v", i, c.CreatedAt)
		}
	}
	if all[1].RunID != "run-1" {
		t.Errorf("run_id = %q", all[1].RunID)
	}
	if all[3].ErrorKind != "unknown_method" {
		t.Errorf("error_kind = %q", all[3].ErrorKind)
	}
	if all[3].OK() || !all[0].OK() {
		t.Error("OK() mismatch")
	}

	last, err := ListCalls(db, 2)
	if err != nil {
		t.Fatalf("ListCalls: %v", err)
	}
	if len(last) != 2 || last[0].Method != "undulator_K" || last[1].Method != "bogus" {
		t.Errorf("unexpected tail: %+v", last)
	}
}

// #endregion list-calls-tests
