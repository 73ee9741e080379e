package th

import (
	"log/slog"
	"math"
)

// #region dipole-spectrum

// bandwidth is the relative bandwidth the flux is normalised to (0.1%).
const bandwidth = 1e-3

// DipoleSpectrum returns the angular-spectral flux of an ideal bending magnet
// with field bField [T], for a beam of beamEnergyGeV observed at vertical
// angle [rad], sampled over energyRange [eV]. The beam is taken to be
// perpendicular to the field.
//
// Flux is in photons / s / mrad² / 0.1% BW for the configured current.
func (t *TH) DipoleSpectrum(bField, beamEnergyGeV, angle float64, energyRange EnergyRange, opts ...SpectrumOption) (Spectrum, error) {
	if !(beamEnergyGeV > 0) {
		return Spectrum{}, invalidArg("beam_energy_GeV", "must be > 0")
	}
	if err := energyRange.Validate(); err != nil {
		return Spectrum{}, err
	}
	o := t.defaults
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return Spectrum{}, err
	}

	t.logger.Debug("dipole spectrum",
		slog.Float64("bfield", bField),
		slog.Float64("beam_energy_GeV", beamEnergyGeV),
		slog.Float64("angle", angle),
		slog.Any("energy_range_eV", energyRange.Slice()),
	)

	gamma := t.Gamma(beamEnergyGeV)
	ec := t.criticalEnergy(bField, gamma)

	s := Spectrum{
		BField:         bField,
		BeamEnergyGeV:  beamEnergyGeV,
		Angle:          angle,
		EnergyRange:    energyRange,
		Current:        o.Current,
		Gamma:          gamma,
		CriticalEnergy: ec,
		Points:         make([]SpectrumPoint, 0, o.NPoints),
	}
	for _, e := range energyRange.Linspace(o.NPoints) {
		s.Points = append(s.Points, SpectrumPoint{
			Energy: e,
			Flux:   t.dipoleFlux(e, ec, gamma, angle, o.Current),
		})
	}
	return s, nil
}

// dipoleFlux evaluates d²F/dθdψ at photon energy e for critical energy ec.
func (t *TH) dipoleFlux(e, ec, gamma, psi, current float64) float64 {
	if ec == 0 {
		return 0
	}
	x := gamma * psi
	x2 := x * x
	if math.IsInf(x2, 0) {
		return 0
	}
	c := t.consts

	y := e / ec
	onePX2 := 1 + x2
	xi := 0.5 * y * math.Pow(onePX2, 1.5)

	k23 := besselK(2.0/3.0, xi)
	k13 := besselK(1.0/3.0, xi)
	if k23 == 0 && k13 == 0 {
		// Far off axis the Bessel terms underflow before (1+x²)² overflows.
		return 0
	}

	// 3α/4π² γ² (Δω/ω) (I/e), per rad², then converted to per mrad².
	pref := 3 * c.Alpha / (2 * c.TwoPi * math.Pi) * gamma * gamma * bandwidth * current / c.Qe * 1e-6

	return pref * y * y * onePX2 * onePX2 * (k23*k23 + x2/onePX2*k13*k13)
}

// #endregion dipole-spectrum
