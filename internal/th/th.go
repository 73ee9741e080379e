// Package th computes closed-form synchrotron radiation quantities: the
// undulator deflection parameter and the bending-magnet (dipole) spectrum.
//
// A TH holds no mutable state and may be shared between goroutines.
package th

import (
	"log/slog"
	"math"

	"github.com/danielpatrickdp/oscars-th/internal/constants"
)

// #region facade

// TH is the radiation parameter facade.
type TH struct {
	consts   constants.Constants
	logger   *slog.Logger
	defaults SpectrumOptions
}

// Option configures a TH at construction.
type Option func(*TH)

// WithConstants replaces the CODATA 2018 constant set.
func WithConstants(c constants.Constants) Option {
	return func(t *TH) { t.consts = c }
}

// WithLogger sets the logger that receives diagnostic records.
func WithLogger(l *slog.Logger) Option {
	return func(t *TH) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithDefaults sets the spectrum options used when a call passes none.
func WithDefaults(o SpectrumOptions) Option {
	return func(t *TH) { t.defaults = o }
}

// New returns a facade using CODATA 2018 constants and a discarding logger.
func New(opts ...Option) *TH {
	t := &TH{
		consts:   constants.CODATA2018,
		logger:   slog.New(slog.DiscardHandler),
		defaults: DefaultSpectrumOptions(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Constants returns the constant set in use.
func (t *TH) Constants() constants.Constants {
	return t.consts
}

// Defaults returns the default spectrum options.
func (t *TH) Defaults() SpectrumOptions {
	return t.defaults
}

// #endregion facade

// #region undulator-k

// UndulatorK returns the deflection parameter K for an undulator with peak
// field bFieldMax [T] and period [m]. Any real input is accepted.
func (t *TH) UndulatorK(bFieldMax, period float64) float64 {
	c := t.consts
	return bFieldMax * period * c.Qe / (c.TwoPi * c.Me * c.C)
}

// #endregion undulator-k

// #region beam

// Gamma returns the Lorentz factor of an electron beam of the given energy [GeV].
func (t *TH) Gamma(beamEnergyGeV float64) float64 {
	return beamEnergyGeV * 1e9 / t.consts.MeC2eV
}

// DipoleCriticalEnergy returns the critical photon energy [eV] of a bending
// magnet with field bField [T] for a beam of beamEnergyGeV.
func (t *TH) DipoleCriticalEnergy(bField, beamEnergyGeV float64) (float64, error) {
	if !(beamEnergyGeV > 0) {
		return 0, invalidArg("beam_energy_GeV", "must be > 0")
	}
	return t.criticalEnergy(bField, t.Gamma(beamEnergyGeV)), nil
}

func (t *TH) criticalEnergy(bField, gamma float64) float64 {
	c := t.consts
	// (3/2) ħ γ² e|B| / m in joules, divided by e for eV.
	return 1.5 * c.Hbar * gamma * gamma * math.Abs(bField) / c.Me
}

// #endregion beam
