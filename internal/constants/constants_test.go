package constants

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCODATA2018MatchesConsts(t *testing.T) {
	c := CODATA2018
	assert.Equal(t, Qe, c.Qe)
	assert.Equal(t, Me, c.Me)
	assert.Equal(t, C, c.C)
	assert.Equal(t, TwoPi, c.TwoPi)
	assert.Equal(t, Hbar, c.Hbar)
	assert.Equal(t, Alpha, c.Alpha)
	assert.Equal(t, MeC2eV, c.MeC2eV)
}

func TestRestEnergyConsistent(t *testing.T) {
	// Me C² expressed in eV should agree with the tabulated rest energy.
	derived := Me * C * C / Qe
	assert.InEpsilon(t, MeC2eV, derived, 1e-9)
}

func TestFineStructureConsistent(t *testing.T) {
	// α = e² / (4π ε0 ħ c), with ε0 = 1 / (μ0 c²) and μ0 ≈ 4π·1e-7.
	eps0 := 1 / (4 * math.Pi * 1e-7 * C * C)
	derived := Qe * Qe / (4 * math.Pi * eps0 * Hbar * C)
	assert.InEpsilon(t, Alpha, derived, 1e-6)
}
