// Package store persists computed dipole spectra in SQLite.
package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/oscars-th/internal/th"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS spectrum_runs (
	run_id             TEXT PRIMARY KEY,
	bfield             REAL NOT NULL,
	beam_energy_gev    REAL NOT NULL,
	angle              REAL NOT NULL,
	energy_low_ev      REAL NOT NULL,
	energy_high_ev     REAL NOT NULL,
	current_a          REAL NOT NULL,
	gamma              REAL NOT NULL,
	critical_energy_ev REAL NOT NULL,
	npoints            INTEGER NOT NULL,
	energies           BLOB NOT NULL,
	flux               BLOB NOT NULL,
	created_at         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS call_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	method      TEXT NOT NULL,
	args_json   TEXT,
	result_json TEXT,
	run_id      TEXT,
	error       TEXT,
	error_kind  TEXT,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON spectrum_runs(created_at);
`

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `run_id, bfield, beam_energy_gev, angle, energy_low_ev, energy_high_ev,
	current_a, gamma, critical_energy_ev, npoints, energies, flux, created_at`

// #endregion schema

// #region store-struct

// Store manages spectrum runs in SQLite.
type Store struct {
	db *sqlx.DB
}

// #endregion store-struct

// #region constructor

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// #endregion db-accessor

// #region save-run

// SaveRun stores a spectrum under a fresh run ID.
func (s *Store) SaveRun(sp th.Spectrum) (RunRecord, error) {
	rec := RunRecord{
		RunID:     uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Spectrum:  sp,
	}

	_, err := s.db.Exec(
		`INSERT INTO spectrum_runs (`+runColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, sp.BField, sp.BeamEnergyGeV, sp.Angle,
		sp.EnergyRange.Low, sp.EnergyRange.High, sp.Current,
		sp.Gamma, sp.CriticalEnergy, len(sp.Points),
		encodeFloats(sp.Energies()), encodeFloats(sp.Fluxes()),
		rec.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// #endregion save-run

// #region get-run

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (RunRecord, error) {
	var row runRow
	err := s.db.Get(&row, `SELECT `+runColumns+` FROM spectrum_runs WHERE run_id = ?`, id)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return row.toRecord()
}

// #endregion get-run

// #region list-runs

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	var rows []runRow
	err := s.db.Select(&rows,
		`SELECT `+runColumns+` FROM spectrum_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	records := make([]RunRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// #endregion list-runs

// #region delete-run

// DeleteRun removes a run. Deleting an unknown ID is an error.
func (s *Store) DeleteRun(id string) error {
	res, err := s.db.Exec(`DELETE FROM spectrum_runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// #endregion delete-run

// #region row-conversion

func (r runRow) toRecord() (RunRecord, error) {
	energies := decodeFloats(r.Energies)
	flux := decodeFloats(r.Flux)
	if len(energies) != r.NPoints || len(flux) != r.NPoints {
		return RunRecord{}, fmt.Errorf("run %s: stored %d points, decoded %d/%d",
			r.RunID, r.NPoints, len(energies), len(flux))
	}

	points := make([]th.SpectrumPoint, r.NPoints)
	for i := range points {
		points[i] = th.SpectrumPoint{Energy: energies[i], Flux: flux[i]}
	}
	created, _ := time.Parse(timeLayout, r.CreatedAt)

	return RunRecord{
		RunID:     r.RunID,
		CreatedAt: created,
		Spectrum: th.Spectrum{
			BField:         r.BField,
			BeamEnergyGeV:  r.BeamEnergyGeV,
			Angle:          r.Angle,
			EnergyRange:    th.EnergyRange{Low: r.EnergyLow, High: r.EnergyHigh},
			Current:        r.Current,
			Gamma:          r.Gamma,
			CriticalEnergy: r.CriticalEnergy,
			Points:         points,
		},
	}, nil
}

// #endregion row-conversion

// #region vector-encoding
func encodeFloats(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeFloats(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

// #endregion vector-encoding
