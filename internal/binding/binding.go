// Package binding exposes the th facade through a keyword-argument call
// convention: a method table with documentation, argument parsing, and
// result encoding into plain maps and lists. Transports (gRPC, CLI, replay)
// go through this package so the facade never sees their conventions.
package binding

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/oscars-th/internal/th"
)

// #region types

// ErrUnknownMethod is returned by Call for a name not in the method table.
var ErrUnknownMethod = errors.New("binding: unknown method")

// Method names.
const (
	UndulatorK     = "undulator_K"
	DipoleSpectrum = "dipole_spectrum"
)

// Method describes one callable entry point.
type Method struct {
	Name     string
	Doc      string
	Required []string
	Optional []string

	invoke func(t *th.TH, kw kwargs) (map[string]any, error)
}

// #endregion types

// #region method-table

var methods = []Method{
	{
		Name:     UndulatorK,
		Doc:      "Get the undulator K parameter value",
		Required: []string{"bfield", "period"},
		invoke:   callUndulatorK,
	},
	{
		Name:     DipoleSpectrum,
		Doc:      "Get the spectrum from ideal dipole field",
		Required: []string{"bfield", "beam_energy_GeV", "angle", "energy_range_eV"},
		Optional: []string{"npoints", "current"},
		invoke:   callDipoleSpectrum,
	},
}

// Methods returns the method table in registration order.
func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// Lookup finds a method by name.
func Lookup(name string) (Method, bool) {
	for _, m := range methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// Call parses kwargs for the named method, invokes it on t and returns the
// encoded result.
func Call(t *th.TH, method string, kw map[string]any) (map[string]any, error) {
	m, ok := Lookup(method)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if err := checkKeywords(kw, m.Required, m.Optional); err != nil {
		return nil, err
	}
	return m.invoke(t, kwargs{m: kw})
}

// #endregion method-table

// #region invokers

func callUndulatorK(t *th.TH, kw kwargs) (map[string]any, error) {
	b, err := kw.float("bfield")
	if err != nil {
		return nil, err
	}
	p, err := kw.float("period")
	if err != nil {
		return nil, err
	}
	return map[string]any{"k": t.UndulatorK(b, p)}, nil
}

func callDipoleSpectrum(t *th.TH, kw kwargs) (map[string]any, error) {
	b, err := kw.float("bfield")
	if err != nil {
		return nil, err
	}
	e, err := kw.float("beam_energy_GeV")
	if err != nil {
		return nil, err
	}
	angle, err := kw.float("angle")
	if err != nil {
		return nil, err
	}
	raw, err := kw.floatList("energy_range_eV")
	if err != nil {
		return nil, err
	}
	defaults := t.Defaults()
	npoints, err := kw.intOr("npoints", defaults.NPoints)
	if err != nil {
		return nil, err
	}
	current, err := kw.floatOr("current", defaults.Current)
	if err != nil {
		return nil, err
	}

	// Beam energy is checked before the range shape, as the facade does.
	if !(e > 0) {
		return nil, invalidArg("beam_energy_GeV", "must be > 0")
	}
	r, err := th.EnergyRangeFromSlice(raw)
	if err != nil {
		return nil, err
	}

	s, err := t.DipoleSpectrum(b, e, angle, r, th.WithNPoints(npoints), th.WithCurrent(current))
	if err != nil {
		return nil, err
	}
	return EncodeSpectrum(s), nil
}

// #endregion invokers

// #region banner

// Banner returns the notice printed when a front end starts.
func Banner() string {
	return "OSCARS vTH - Open Source Code for Advanced Radiation Simulation\n" +
		"Brookhaven National Laboratory, Upton NY, USA\n" +
		"http://oscars.bnl.gov\n" +
		"oscars@bnl.gov\n"
}

// #endregion banner
