// Package replay re-runs recorded binding calls against the current facade
// and reports any drift from the recorded outcome.
package replay

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/oscars-th/internal/binding"
	"github.com/danielpatrickdp/oscars-th/internal/th"
)

// #region types

// Result captures the outcome of replaying one call.
type Result struct {
	ID     string
	Method string
	Passed bool
	Reason string // why the call failed to match; empty when Passed
	Got    map[string]any
	Err    error
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Total    int
	Passed   int
	Failed   int
	Errors   int // calls that were expected to fail and did
	Failures []string
}

// #endregion types

// #region replay

// Replay invokes each call through the binding layer and compares the
// outcome against its expectation with relative tolerance tol.
func Replay(t *th.TH, calls []Call, tol float64) []Result {
	results := make([]Result, 0, len(calls))
	for _, c := range calls {
		got, err := binding.Call(t, c.Method, c.Kwargs)
		r := Result{ID: c.ID, Method: c.Method, Got: got, Err: err}
		r.Reason = check(c.Expect, got, err, tol)
		r.Passed = r.Reason == ""
		results = append(results, r)
	}
	return results
}

func check(exp Expectation, got map[string]any, err error, tol float64) string {
	if exp.Error != "" {
		if err == nil {
			return fmt.Sprintf("expected %s error, call succeeded", exp.Error)
		}
		if kind := binding.ErrorKind(err); kind != exp.Error {
			return fmt.Sprintf("expected %s error, got %s: %v", exp.Error, kind, err)
		}
		return ""
	}
	if err != nil {
		return fmt.Sprintf("unexpected error: %v", err)
	}

	if exp.K != nil {
		k, derr := binding.DecodeK(got)
		if derr != nil {
			return derr.Error()
		}
		if !near(k, *exp.K, tol) {
			return fmt.Sprintf("k = %g, want %g", k, *exp.K)
		}
	}
	if exp.CriticalEnergy == nil && exp.Points == nil {
		return ""
	}

	s, derr := binding.DecodeSpectrum(got)
	if derr != nil {
		return derr.Error()
	}
	if exp.CriticalEnergy != nil && !near(s.CriticalEnergy, *exp.CriticalEnergy, tol) {
		return fmt.Sprintf("critical_energy_eV = %g, want %g", s.CriticalEnergy, *exp.CriticalEnergy)
	}
	if exp.Points != nil {
		if len(s.Points) != len(exp.Points) {
			return fmt.Sprintf("%d points, want %d", len(s.Points), len(exp.Points))
		}
		for i, p := range s.Points {
			w := exp.Points[i]
			if !near(p.Energy, w[0], tol) || !near(p.Flux, w[1], tol) {
				return fmt.Sprintf("point %d = (%g, %g), want (%g, %g)", i, p.Energy, p.Flux, w[0], w[1])
			}
		}
	}
	return ""
}

// near compares with a relative tolerance. Exact zeros and infinities must
// match exactly. Two NaNs match.
func near(a, b, tol float64) bool {
	if a == b || (math.IsNaN(a) && math.IsNaN(b)) {
		return true
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	return math.Abs(a-b) <= tol*math.Max(math.Abs(a), math.Abs(b))
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if !r.Passed {
			s.Failed++
			s.Failures = append(s.Failures, fmt.Sprintf("%s (%s): %s", r.ID, r.Method, r.Reason))
			continue
		}
		s.Passed++
		if r.Err != nil {
			s.Errors++
		}
	}
	return s
}

// #endregion replay
