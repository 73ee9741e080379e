package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/oscars-th/internal/binding"
	"github.com/danielpatrickdp/oscars-th/internal/logging"
)

// DefaultTolerance is the relative tolerance used when a fixture sets none.
const DefaultTolerance = 1e-9

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string  `json:"description"`
	Tolerance   float64 `json:"tolerance,omitempty"`
	Calls       []Call  `json:"calls"`
}

// Call is one recorded binding call and what it must produce.
type Call struct {
	ID     string         `json:"id"`
	Method string         `json:"method"`
	Kwargs map[string]any `json:"kwargs"`
	Expect Expectation    `json:"expect"`
}

// Expectation describes a call outcome. Error names a binding error kind;
// otherwise any numeric field present is compared.
type Expectation struct {
	Error          string       `json:"error,omitempty"`
	K              *float64     `json:"k,omitempty"`
	CriticalEnergy *float64     `json:"critical_energy_eV,omitempty"`
	Points         [][2]float64 `json:"points,omitempty"`
}

// expectationJSON is the wire form of Expectation. Numbers are float64 or
// the non-finite spellings from binding.JSONFloat.
type expectationJSON struct {
	Error          string   `json:"error,omitempty"`
	K              any      `json:"k,omitempty"`
	CriticalEnergy any      `json:"critical_energy_eV,omitempty"`
	Points         [][2]any `json:"points,omitempty"`
}

// MarshalJSON writes non-finite values as strings.
func (e Expectation) MarshalJSON() ([]byte, error) {
	w := expectationJSON{Error: e.Error}
	if e.K != nil {
		w.K = binding.JSONFloat(*e.K)
	}
	if e.CriticalEnergy != nil {
		w.CriticalEnergy = binding.JSONFloat(*e.CriticalEnergy)
	}
	if e.Points != nil {
		w.Points = make([][2]any, len(e.Points))
		for i, p := range e.Points {
			w.Points[i] = [2]any{binding.JSONFloat(p[0]), binding.JSONFloat(p[1])}
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts numbers and the non-finite spellings.
func (e *Expectation) UnmarshalJSON(data []byte) error {
	var w expectationJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Expectation{Error: w.Error}
	if w.K != nil {
		k, err := binding.Float("k", w.K)
		if err != nil {
			return err
		}
		out.K = &k
	}
	if w.CriticalEnergy != nil {
		ec, err := binding.Float("critical_energy_eV", w.CriticalEnergy)
		if err != nil {
			return err
		}
		out.CriticalEnergy = &ec
	}
	if w.Points != nil {
		out.Points = make([][2]float64, len(w.Points))
		for i, p := range w.Points {
			for j := range p {
				v, err := binding.Float("points", p[j])
				if err != nil {
					return fmt.Errorf("point %d: %w", i, err)
				}
				out.Points[i][j] = v
			}
		}
	}
	*e = out
	return nil
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// Tol returns the fixture tolerance, or DefaultTolerance when unset.
func (f *Fixture) Tol() float64 {
	if f.Tolerance > 0 {
		return f.Tolerance
	}
	return DefaultTolerance
}

func (f *Fixture) validate() error {
	if f.Tolerance < 0 {
		return fmt.Errorf("negative tolerance %g", f.Tolerance)
	}
	for i, c := range f.Calls {
		if c.Method == "" {
			return fmt.Errorf("call %d (%s): empty method", i, c.ID)
		}
		switch c.Expect.Error {
		case "", binding.KindInvalidArgument, binding.KindLength, binding.KindUnknownMethod, binding.KindOther:
		default:
			return fmt.Errorf("call %d (%s): unknown error kind %q", i, c.ID, c.Expect.Error)
		}
	}
	return nil
}

// #endregion fixture-loader

// #region expectations

// ExpectResult builds the expectation matching a successful call result.
func ExpectResult(method string, res map[string]any) (Expectation, error) {
	switch method {
	case binding.UndulatorK:
		k, err := binding.DecodeK(res)
		if err != nil {
			return Expectation{}, err
		}
		return Expectation{K: &k}, nil
	case binding.DipoleSpectrum:
		s, err := binding.DecodeSpectrum(res)
		if err != nil {
			return Expectation{}, err
		}
		ec := s.CriticalEnergy
		pts := make([][2]float64, len(s.Points))
		for i, p := range s.Points {
			pts[i] = [2]float64{p.Energy, p.Flux}
		}
		return Expectation{CriticalEnergy: &ec, Points: pts}, nil
	default:
		return Expectation{}, nil
	}
}

// FromCallLog turns recorded calls into fixture calls. Entries whose result
// cannot be decoded are reported as errors.
func FromCallLog(entries []logging.CallEntry) ([]Call, error) {
	calls := make([]Call, 0, len(entries))
	for _, e := range entries {
		c := Call{ID: fmt.Sprintf("call-%d", e.ID), Method: e.Method}
		if e.ArgsJSON != "" {
			if err := json.Unmarshal([]byte(e.ArgsJSON), &c.Kwargs); err != nil {
				return nil, fmt.Errorf("%s args: %w", c.ID, err)
			}
		}

		if !e.OK() {
			c.Expect.Error = e.ErrorKind
			if c.Expect.Error == "" {
				c.Expect.Error = binding.KindOther
			}
			calls = append(calls, c)
			continue
		}

		var res map[string]any
		if err := json.Unmarshal([]byte(e.ResultJSON), &res); err != nil {
			return nil, fmt.Errorf("%s result: %w", c.ID, err)
		}
		exp, err := ExpectResult(e.Method, res)
		if err != nil {
			return nil, fmt.Errorf("%s result: %w", c.ID, err)
		}
		c.Expect = exp
		calls = append(calls, c)
	}
	return calls, nil
}

// #endregion expectations
