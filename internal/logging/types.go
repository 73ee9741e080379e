package logging

import "time"

// #region call-entry
// CallEntry is a single row in the call_log table: one invocation of a
// binding method, successful or not.
type CallEntry struct {
	ID         int64     `json:"id"`
	Method     string    `json:"method"`
	ArgsJSON   string    `json:"args_json,omitempty"`
	ResultJSON string    `json:"result_json,omitempty"`
	RunID      string    `json:"run_id,omitempty"` // set when the result was persisted as a spectrum run
	Error      string    `json:"error,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"` // binding.ErrorKind of Error
	CreatedAt  time.Time `json:"created_at"`
}

// OK reports whether the call returned a result.
func (e CallEntry) OK() bool { return e.Error == "" }

// #endregion call-entry

// callRow mirrors call_log with nullable columns.
type callRow struct {
	ID         int64   `db:"id"`
	Method     string  `db:"method"`
	ArgsJSON   *string `db:"args_json"`
	ResultJSON *string `db:"result_json"`
	RunID      *string `db:"run_id"`
	Error      *string `db:"error"`
	ErrorKind  *string `db:"error_kind"`
	CreatedAt  string  `db:"created_at"`
}
