package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/danielpatrickdp/oscars-th/internal/logging"
	"github.com/danielpatrickdp/oscars-th/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", os.Getenv("TH_DB"), "path to the th SQLite database")
	last := flag.Int("last", 20, "show N most recent runs or calls")
	runID := flag.String("run", "", "show single run detail")
	calls := flag.Bool("calls", false, "list the call log instead of runs")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/th.db [--last N] [--run id] [--calls] [--json]")
		os.Exit(2)
	}

	s, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	switch {
	case *runID != "":
		err = runDetailMode(os.Stdout, s, *runID, *jsonOut)
	case *calls:
		err = runCallsMode(os.Stdout, s, *last, *jsonOut)
	default:
		err = runListMode(os.Stdout, s, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID          string  `json:"run_id"`
	BField         float64 `json:"bfield"`
	BeamEnergyGeV  float64 `json:"beam_energy_GeV"`
	Angle          float64 `json:"angle"`
	EnergyLow      float64 `json:"energy_low_eV"`
	EnergyHigh     float64 `json:"energy_high_eV"`
	CriticalEnergy float64 `json:"critical_energy_eV"`
	PeakFlux       float64 `json:"peak_flux"`
	PeakEnergy     float64 `json:"peak_energy_eV"`
	NPoints        int     `json:"npoints"`
	CreatedAt      string  `json:"created_at"`
}

func runListMode(w io.Writer, s *store.Store, last int, jsonOut bool) error {
	runs, err := s.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	// Store returns newest first; show chronologically.
	rows := make([]listRow, len(runs))
	for i, r := range runs {
		sp := r.Spectrum
		row := listRow{
			RunID:          r.RunID,
			BField:         sp.BField,
			BeamEnergyGeV:  sp.BeamEnergyGeV,
			Angle:          sp.Angle,
			EnergyLow:      sp.EnergyRange.Low,
			EnergyHigh:     sp.EnergyRange.High,
			CriticalEnergy: sp.CriticalEnergy,
			NPoints:        len(sp.Points),
			CreatedAt:      r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if p, ok := sp.Peak(); ok {
			row.PeakFlux, row.PeakEnergy = p.Flux, p.Energy
		}
		rows[len(runs)-1-i] = row
	}

	if jsonOut {
		return printJSON(w, rows)
	}

	fmt.Fprintf(w, "%-8s  %6s  %6s  %9s  %-21s  %10s  %10s  %5s  %s\n",
		"Run", "B [T]", "E[GeV]", "Angle", "Range", "Critical", "Peak Flux", "N", "Time")
	for _, r := range rows {
		rng := fmt.Sprintf("%s-%s", si(r.EnergyLow), si(r.EnergyHigh))
		fmt.Fprintf(w, "%-8s  %6.3f  %6.2f  %9.2e  %-21s  %10s  %10.3e  %5d  %s\n",
			shortID(r.RunID), r.BField, r.BeamEnergyGeV, r.Angle, rng,
			si(r.CriticalEnergy), r.PeakFlux, r.NPoints, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	RunID          string       `json:"run_id"`
	CreatedAt      string       `json:"created_at"`
	BField         float64      `json:"bfield"`
	BeamEnergyGeV  float64      `json:"beam_energy_GeV"`
	Angle          float64      `json:"angle"`
	EnergyRange    [2]float64   `json:"energy_range_eV"`
	Current        float64      `json:"current"`
	Gamma          float64      `json:"gamma"`
	CriticalEnergy float64      `json:"critical_energy_eV"`
	Points         [][2]float64 `json:"points"`
}

func runDetailMode(w io.Writer, s *store.Store, runID string, jsonOut bool) error {
	r, err := s.GetRun(runID)
	if err != nil {
		return err
	}
	sp := r.Spectrum

	out := detailOutput{
		RunID:          r.RunID,
		CreatedAt:      r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		BField:         sp.BField,
		BeamEnergyGeV:  sp.BeamEnergyGeV,
		Angle:          sp.Angle,
		EnergyRange:    [2]float64{sp.EnergyRange.Low, sp.EnergyRange.High},
		Current:        sp.Current,
		Gamma:          sp.Gamma,
		CriticalEnergy: sp.CriticalEnergy,
		Points:         make([][2]float64, len(sp.Points)),
	}
	for i, p := range sp.Points {
		out.Points[i] = [2]float64{p.Energy, p.Flux}
	}

	if jsonOut {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "Run:       %s\n", out.RunID)
	fmt.Fprintf(w, "Created:   %s\n", out.CreatedAt)
	fmt.Fprintf(w, "Field:     %g T\n", out.BField)
	fmt.Fprintf(w, "Beam:      %g GeV, %g A (gamma %.1f)\n", out.BeamEnergyGeV, out.Current, out.Gamma)
	fmt.Fprintf(w, "Angle:     %g rad\n", out.Angle)
	fmt.Fprintf(w, "Range:     %s - %s\n", si(out.EnergyRange[0]), si(out.EnergyRange[1]))
	fmt.Fprintf(w, "Critical:  %s\n", si(out.CriticalEnergy))
	if p, ok := sp.Peak(); ok {
		fmt.Fprintf(w, "Peak:      %.4e at %s\n", p.Flux, si(p.Energy))
	}

	fmt.Fprintf(w, "\n%12s  %s\n", "Energy", "Flux")
	for _, p := range out.Points {
		fmt.Fprintf(w, "%12s  %.4e\n", si(p[0]), p[1])
	}
	return nil
}

// #endregion detail-mode

// #region calls-mode

func runCallsMode(w io.Writer, s *store.Store, last int, jsonOut bool) error {
	calls, err := logging.ListCalls(s.DB(), last)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(w, calls)
	}
	if len(calls) == 0 {
		fmt.Fprintln(os.Stderr, "no calls found")
		return nil
	}

	fmt.Fprintf(w, "%5s  %-16s  %-8s  %-16s  %s\n", "ID", "Method", "Run", "Outcome", "When")
	for _, c := range calls {
		outcome := "ok"
		if !c.OK() {
			outcome = c.ErrorKind
		}
		fmt.Fprintf(w, "%5d  %-16s  %-8s  %-16s  %s\n",
			c.ID, c.Method, shortID(c.RunID), outcome, humanize.Time(c.CreatedAt))
	}
	return nil
}

// #endregion calls-mode

// #region output

func si(eV float64) string {
	return humanize.SIWithDigits(eV, 3, "eV")
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
