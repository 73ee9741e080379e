package th

import (
	"fmt"
	"math"
)

// #region energy-range

// EnergyRange is the [Low, High] photon energy window of a spectral query, in eV.
type EnergyRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// EnergyRangeFromSlice builds an EnergyRange from a two-element slice.
func EnergyRangeFromSlice(v []float64) (EnergyRange, error) {
	if len(v) != 2 {
		return EnergyRange{}, lengthErr("energy_range_eV", "number of elements not 2")
	}
	return EnergyRange{Low: v[0], High: v[1]}, nil
}

// Validate requires Low < High, Low > 1 and High > 0. NaN bounds fail.
func (r EnergyRange) Validate() error {
	if !(r.Low < r.High) || !(r.Low > 1) || !(r.High > 0) {
		return invalidArg("energy_range_eV", "is incorrect")
	}
	return nil
}

// Slice returns the range as [Low, High].
func (r EnergyRange) Slice() []float64 {
	return []float64{r.Low, r.High}
}

// Linspace returns n energies evenly spaced over [Low, High], both ends included.
func (r EnergyRange) Linspace(n int) []float64 {
	if n < 2 {
		return []float64{r.Low}
	}
	out := make([]float64, n)
	step := (r.High - r.Low) / float64(n-1)
	for i := range out {
		out[i] = r.Low + float64(i)*step
	}
	out[n-1] = r.High
	return out
}

// #endregion energy-range

// #region spectrum

// SpectrumPoint is one sample of a dipole spectrum.
// Flux is in photons / s / mrad² / 0.1% bandwidth.
type SpectrumPoint struct {
	Energy float64 `json:"energy_eV"`
	Flux   float64 `json:"flux"`
}

// Spectrum is the angular-spectral flux of a bending magnet at one vertical angle.
type Spectrum struct {
	BField         float64         `json:"bfield"`
	BeamEnergyGeV  float64         `json:"beam_energy_GeV"`
	Angle          float64         `json:"angle"`
	EnergyRange    EnergyRange     `json:"energy_range_eV"`
	Current        float64         `json:"current"`
	Gamma          float64         `json:"gamma"`
	CriticalEnergy float64         `json:"critical_energy_eV"`
	Points         []SpectrumPoint `json:"points"`
}

// Energies returns the sample energies in order.
func (s Spectrum) Energies() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Energy
	}
	return out
}

// Fluxes returns the sample fluxes in order.
func (s Spectrum) Fluxes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Flux
	}
	return out
}

// Peak returns the sample with the largest flux. ok is false for an empty spectrum.
func (s Spectrum) Peak() (p SpectrumPoint, ok bool) {
	best := math.Inf(-1)
	for _, pt := range s.Points {
		if pt.Flux > best {
			best = pt.Flux
			p = pt
			ok = true
		}
	}
	return p, ok
}

// #endregion spectrum

// #region options

// MaxNPoints bounds the number of energy samples in one spectrum.
const MaxNPoints = 100000

// SpectrumOptions tunes the sampling of DipoleSpectrum.
type SpectrumOptions struct {
	NPoints int     // number of energy samples, in [2, MaxNPoints]
	Current float64 // beam current in A, > 0
}

// DefaultSpectrumOptions returns 500 samples at 1 A.
func DefaultSpectrumOptions() SpectrumOptions {
	return SpectrumOptions{
		NPoints: 500,
		Current: 1.0,
	}
}

// SpectrumOption overrides one field of SpectrumOptions for a single call.
type SpectrumOption func(*SpectrumOptions)

// WithNPoints sets the number of energy samples.
func WithNPoints(n int) SpectrumOption {
	return func(o *SpectrumOptions) { o.NPoints = n }
}

// WithCurrent sets the beam current in amperes.
func WithCurrent(amps float64) SpectrumOption {
	return func(o *SpectrumOptions) { o.Current = amps }
}

func (o SpectrumOptions) validate() error {
	if o.NPoints < 2 {
		return invalidArg("npoints", "must be >= 2")
	}
	if o.NPoints > MaxNPoints {
		return invalidArg("npoints", fmt.Sprintf("must be <= %d", MaxNPoints))
	}
	if !(o.Current > 0) || math.IsInf(o.Current, 1) {
		return invalidArg("current", "must be > 0")
	}
	return nil
}

// #endregion options
