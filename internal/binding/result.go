package binding

import (
	"fmt"

	"github.com/danielpatrickdp/oscars-th/internal/th"
)

// #region encode

// EncodeSpectrum converts a spectrum into a result map made only of
// float64, []any and map[string]any values, so it survives JSON and
// protobuf Struct round trips unchanged.
func EncodeSpectrum(s th.Spectrum) map[string]any {
	points := make([]any, len(s.Points))
	for i, p := range s.Points {
		points[i] = []any{p.Energy, p.Flux}
	}
	return map[string]any{
		"bfield":             s.BField,
		"beam_energy_GeV":    s.BeamEnergyGeV,
		"angle":              s.Angle,
		"energy_range_eV":    []any{s.EnergyRange.Low, s.EnergyRange.High},
		"current":            s.Current,
		"gamma":              s.Gamma,
		"critical_energy_eV": s.CriticalEnergy,
		"points":             points,
	}
}

// #endregion encode

// #region decode

// DecodeK reads the K value from an undulator_K result.
func DecodeK(res map[string]any) (float64, error) {
	v, ok := res["k"]
	if !ok {
		return 0, fmt.Errorf("decode undulator_K: missing k")
	}
	k, err := toFloat("k", v)
	if err != nil {
		return 0, fmt.Errorf("decode undulator_K: k is %T", v)
	}
	return k, nil
}

// DecodeSpectrum is the inverse of EncodeSpectrum.
func DecodeSpectrum(res map[string]any) (th.Spectrum, error) {
	var s th.Spectrum
	fields := []struct {
		key string
		dst *float64
	}{
		{"bfield", &s.BField},
		{"beam_energy_GeV", &s.BeamEnergyGeV},
		{"angle", &s.Angle},
		{"current", &s.Current},
		{"gamma", &s.Gamma},
		{"critical_energy_eV", &s.CriticalEnergy},
	}
	for _, f := range fields {
		v, err := toFloat(f.key, res[f.key])
		if err != nil {
			return th.Spectrum{}, fmt.Errorf("decode dipole_spectrum: %w", err)
		}
		*f.dst = v
	}

	kw := kwargs{m: res}
	r, err := kw.floatList("energy_range_eV")
	if err != nil {
		return th.Spectrum{}, fmt.Errorf("decode dipole_spectrum: %w", err)
	}
	if s.EnergyRange, err = th.EnergyRangeFromSlice(r); err != nil {
		return th.Spectrum{}, fmt.Errorf("decode dipole_spectrum: %w", err)
	}

	raw, ok := res["points"].([]any)
	if !ok {
		return th.Spectrum{}, fmt.Errorf("decode dipole_spectrum: points is %T", res["points"])
	}
	s.Points = make([]th.SpectrumPoint, len(raw))
	for i, rp := range raw {
		pair, err := (kwargs{m: map[string]any{"point": rp}}).floatList("point")
		if err != nil || len(pair) != 2 {
			return th.Spectrum{}, fmt.Errorf("decode dipole_spectrum: point %d malformed", i)
		}
		s.Points[i] = th.SpectrumPoint{Energy: pair[0], Flux: pair[1]}
	}
	return s, nil
}

// #endregion decode
