package main

import (
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/oscars-th/internal/binding"
	"github.com/danielpatrickdp/oscars-th/internal/replay"
	"github.com/danielpatrickdp/oscars-th/internal/store"
	"github.com/danielpatrickdp/oscars-th/internal/th"
)

func TestRun_ExportAndReplay(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "th.db")
	outPath := filepath.Join(dir, "fixture.json")

	s, err := store.NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	f := th.New()
	calls := []struct {
		method string
		kw     map[string]any
	}{
		{binding.UndulatorK, map[string]any{"bfield": 0.9, "period": 0.02}},
		{binding.DipoleSpectrum, map[string]any{"bfield": 0.4, "beam_energy_GeV": 3.0, "angle": 1e-4, "energy_range_eV": []any{10.0, 1e4}, "npoints": 5.0}},
		{binding.DipoleSpectrum, map[string]any{"bfield": 0.4, "beam_energy_GeV": 3.0, "angle": 0.0, "energy_range_eV": []any{10.0}}},
	}
	for _, c := range calls {
		res, callErr := binding.Call(f, c.method, c.kw)
		if _, err := s.RecordCall(c.method, c.kw, res, callErr); err != nil {
			t.Fatalf("RecordCall: %v", err)
		}
	}
	s.Close()

	n, err := run(dbPath, 0, outPath, "", 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 calls, got %d", n)
	}

	fx, err := replay.LoadFixture(outPath)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if fx.Calls[2].Expect.Error != binding.KindLength {
		t.Errorf("expected length error, got %q", fx.Calls[2].Expect.Error)
	}
	for _, r := range replay.Replay(f, fx.Calls, fx.Tol()) {
		if !r.Passed {
			t.Errorf("%s: %s", r.ID, r.Reason)
		}
	}
}

func TestRun_EmptyLog(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(filepath.Join(dir, "empty.db"), 0, filepath.Join(dir, "out.json"), "", 0); err == nil {
		t.Fatal("expected error for empty call log")
	}
}
