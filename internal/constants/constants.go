// Package constants holds the physical constants used by the radiation
// formulas. Values are CODATA 2018.
package constants

import "math"

// #region si
const (
	Qe     = 1.602176634e-19  // Elementary charge (C)
	Me     = 9.1093837015e-31 // Electron rest mass (kg)
	C      = 299792458.0      // Speed of light in vacuum (m/s)
	Hbar   = 1.054571817e-34  // Reduced Planck constant (J s)
	Alpha  = 7.2973525693e-3  // Fine-structure constant
	Pi     = math.Pi
	TwoPi  = 2 * math.Pi
	MeC2eV = 0.51099895000e6 // Electron rest energy (eV)
)

// #endregion si

// #region constants-struct

// Constants bundles the values a facade needs so they can be injected once
// at construction instead of being looked up on every call.
type Constants struct {
	Qe     float64
	Me     float64
	C      float64
	TwoPi  float64
	Hbar   float64
	Alpha  float64
	MeC2eV float64
}

// CODATA2018 is the default constant set.
var CODATA2018 = Constants{
	Qe:     Qe,
	Me:     Me,
	C:      C,
	TwoPi:  TwoPi,
	Hbar:   Hbar,
	Alpha:  Alpha,
	MeC2eV: MeC2eV,
}

// #endregion constants-struct
