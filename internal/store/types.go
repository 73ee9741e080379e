package store

import (
	"time"

	"github.com/danielpatrickdp/oscars-th/internal/th"
)

// #region run-record

// RunRecord is a stored dipole spectrum together with its identity.
type RunRecord struct {
	RunID     string
	CreatedAt time.Time
	Spectrum  th.Spectrum
}

// #endregion run-record

// #region run-row

// runRow is the spectrum_runs row layout scanned by sqlx.
type runRow struct {
	RunID          string  `db:"run_id"`
	BField         float64 `db:"bfield"`
	BeamEnergyGeV  float64 `db:"beam_energy_gev"`
	Angle          float64 `db:"angle"`
	EnergyLow      float64 `db:"energy_low_ev"`
	EnergyHigh     float64 `db:"energy_high_ev"`
	Current        float64 `db:"current_a"`
	Gamma          float64 `db:"gamma"`
	CriticalEnergy float64 `db:"critical_energy_ev"`
	NPoints        int     `db:"npoints"`
	Energies       []byte  `db:"energies"`
	Flux           []byte  `db:"flux"`
	CreatedAt      string  `db:"created_at"`
}

// #endregion run-row
