package replay

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/danielpatrickdp/oscars-th/internal/binding"
	"github.com/danielpatrickdp/oscars-th/internal/constants"
	"github.com/danielpatrickdp/oscars-th/internal/th"
)

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func ptr(v float64) *float64 { return &v }

func kCall(id string, b, p, want float64) Call {
	return Call{
		ID:     id,
		Method: binding.UndulatorK,
		Kwargs: map[string]any{"bfield": b, "period": p},
		Expect: Expectation{K: ptr(want)},
	}
}

func TestReplay_Pass(t *testing.T) {
	f := th.New()
	results := Replay(f, []Call{kCall("a", 1, 0.05, f.UndulatorK(1, 0.05))}, DefaultTolerance)
	if len(results) != 1 || !results[0].Passed {
		t.Fatalf("expected pass, got %+v", results)
	}
	if results[0].Got["k"] != f.UndulatorK(1, 0.05) {
		t.Errorf("got = %v", results[0].Got)
	}
}

func TestReplay_Drift(t *testing.T) {
	f := th.New()
	want := f.UndulatorK(1, 0.05)

	// A perturbed electron mass moves K by ~1e-6 relative.
	c := constants.CODATA2018
	c.Me *= 1 + 1e-6
	drifted := th.New(th.WithConstants(c))

	calls := []Call{kCall("a", 1, 0.05, want)}
	if r := Replay(drifted, calls, 1e-9); r[0].Passed {
		t.Fatal("expected drift to be detected at 1e-9")
	} else if !strings.HasPrefix(r[0].Reason, "k = ") {
		t.Errorf("reason = %q", r[0].Reason)
	}
	if r := Replay(drifted, calls, 1e-5); !r[0].Passed {
		t.Errorf("expected pass at 1e-5: %s", r[0].Reason)
	}
}

func TestReplay_ErrorExpectations(t *testing.T) {
	f := th.New()
	calls := []Call{
		{ID: "want-err-got-ok", Method: binding.UndulatorK, Kwargs: map[string]any{"bfield": 1.0, "period": 1.0}, Expect: Expectation{Error: binding.KindInvalidArgument}},
		{ID: "wrong-kind", Method: "nope", Expect: Expectation{Error: binding.KindLength}},
		{ID: "right-kind", Method: "nope", Expect: Expectation{Error: binding.KindUnknownMethod}},
		{ID: "unexpected", Method: binding.UndulatorK, Expect: Expectation{K: ptr(1)}},
	}
	results := Replay(f, calls, DefaultTolerance)

	passed := map[string]bool{}
	for _, r := range results {
		passed[r.ID] = r.Passed
	}
	if passed["want-err-got-ok"] || passed["wrong-kind"] || !passed["right-kind"] || passed["unexpected"] {
		t.Errorf("unexpected pass map: %v", passed)
	}
	if !strings.Contains(results[3].Reason, "unexpected error") {
		t.Errorf("reason = %q", results[3].Reason)
	}
}

func TestReplay_Spectrum(t *testing.T) {
	f := th.New()
	kw := map[string]any{
		"bfield": 1.5, "beam_energy_GeV": 3.0, "angle": 0.0,
		"energy_range_eV": []any{2.0, 100.0}, "npoints": 5.0,
	}
	res, err := binding.Call(f, binding.DipoleSpectrum, kw)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	exp, err := ExpectResult(binding.DipoleSpectrum, res)
	if err != nil {
		t.Fatalf("ExpectResult: %v", err)
	}

	good := Call{ID: "good", Method: binding.DipoleSpectrum, Kwargs: kw, Expect: exp}

	short := good
	short.ID = "short"
	short.Expect.Points = exp.Points[:3]

	bent := good
	bent.ID = "bent"
	bent.Expect.Points = append([][2]float64(nil), exp.Points...)
	bent.Expect.Points[2][1] *= 1.01

	ec := good
	ec.ID = "ec"
	ec.Expect = Expectation{CriticalEnergy: ptr(*exp.CriticalEnergy * 2)}

	results := Replay(f, []Call{good, short, bent, ec}, DefaultTolerance)
	if !results[0].Passed {
		t.Errorf("good: %s", results[0].Reason)
	}
	for _, r := range results[1:] {
		if r.Passed {
			t.Errorf("%s: expected mismatch", r.ID)
		}
	}
	if !strings.Contains(results[2].Reason, "point 2") {
		t.Errorf("bent reason = %q", results[2].Reason)
	}
}

func TestReplay_Summarize(t *testing.T) {
	results := []Result{
		{ID: "a", Method: binding.UndulatorK, Passed: true},
		{ID: "b", Method: binding.UndulatorK, Passed: true, Err: binding.ErrUnknownMethod},
		{ID: "c", Method: binding.DipoleSpectrum, Passed: false, Reason: "3 points, want 5"},
	}
	s := Summarize(results)
	if s.Total != 3 || s.Passed != 2 || s.Failed != 1 || s.Errors != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if len(s.Failures) != 1 || s.Failures[0] != "c (dipole_spectrum): 3 points, want 5" {
		t.Errorf("failures = %v", s.Failures)
	}
}

func TestReplay_Deterministic(t *testing.T) {
	f, err := LoadFixture("testdata/reference.json")
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	a := Replay(th.New(), f.Calls, 0)
	b := Replay(th.New(), f.Calls, 0)
	for i := range a {
		if a[i].Passed != b[i].Passed || mustJSON(t, a[i].Got) != mustJSON(t, b[i].Got) {
			t.Errorf("call %s not deterministic", a[i].ID)
		}
	}
}

func TestNear(t *testing.T) {
	inf := math.Inf(1)
	cases := []struct {
		a, b float64
		want bool
	}{
		{1, 1 + 1e-12, true},
		{1, 1.1, false},
		{0, 1e-300, false},
		{inf, inf, true},
		{inf, math.Inf(-1), false},
		{inf, 1e308, false},
		{math.NaN(), math.NaN(), true},
		{math.NaN(), 1, false},
	}
	for _, c := range cases {
		if got := near(c.a, c.b, 1e-9); got != c.want {
			t.Errorf("near(%g, %g) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestExpectResult_UnknownMethod(t *testing.T) {
	exp, err := ExpectResult("other", nil)
	if err != nil || exp.K != nil || exp.Points != nil {
		t.Errorf("expected empty expectation, got %+v %v", exp, err)
	}
}
