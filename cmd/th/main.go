package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielpatrickdp/oscars-th/internal/binding"
	"github.com/danielpatrickdp/oscars-th/internal/config"
	"github.com/danielpatrickdp/oscars-th/internal/rpc"
	"github.com/danielpatrickdp/oscars-th/internal/store"
	"github.com/danielpatrickdp/oscars-th/internal/th"
)

const usage = `usage:
  th                                   interactive session: "method {json kwargs}" per line
  th methods                           list callable methods
  th undulator-k --bfield T --period m [--json]
  th dipole-spectrum --bfield T --energy GeV --range lo,hi [--angle rad]
                     [--npoints N] [--current A] [--db path] [--remote addr] [--json]`

// #region main

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	facade := th.New(th.WithLogger(cfg.Logger()), th.WithDefaults(cfg.Spectrum))

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Print(binding.Banner())
		if err := runSession(facade, cfg, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	switch args[0] {
	case "methods":
		printMethods(os.Stdout)
	case "undulator-k":
		err = runUndulatorK(facade, args[1:])
	case "dipole-spectrum":
		err = runDipoleSpectrum(facade, cfg, args[1:])
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s\n", args[0], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for bad arguments and 1 for everything else.
func exitCode(err error) int {
	if errors.Is(err, th.ErrInvalidArgument) || errors.Is(err, th.ErrLength) || errors.Is(err, errUsage) {
		return 2
	}
	return 1
}

var errUsage = errors.New("usage")

// #endregion main

// #region methods

func printMethods(w io.Writer) {
	for _, m := range binding.Methods() {
		fmt.Fprintf(w, "%-16s %s\n", m.Name, m.Doc)
		fmt.Fprintf(w, "%-16s required: %s\n", "", strings.Join(m.Required, ", "))
		if len(m.Optional) > 0 {
			fmt.Fprintf(w, "%-16s optional: %s\n", "", strings.Join(m.Optional, ", "))
		}
	}
}

// #endregion methods

// #region undulator-k

func runUndulatorK(facade *th.TH, args []string) error {
	fs := flag.NewFlagSet("undulator-k", flag.ContinueOnError)
	bfield := fs.Float64("bfield", 0, "peak magnetic field [T]")
	period := fs.Float64("period", 0, "undulator period [m]")
	jsonOut := fs.Bool("json", false, "output as JSON")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := requireFlags(fs, "bfield", "period"); err != nil {
		return err
	}

	res, err := binding.Call(facade, binding.UndulatorK, map[string]any{"bfield": *bfield, "period": *period})
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(os.Stdout, res)
	}
	fmt.Printf("K = %.6g\n", res["k"])
	return nil
}

// #endregion undulator-k

// #region dipole-spectrum

func runDipoleSpectrum(facade *th.TH, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("dipole-spectrum", flag.ContinueOnError)
	bfield := fs.Float64("bfield", 0, "dipole magnetic field [T]")
	energy := fs.Float64("energy", 0, "beam energy [GeV]")
	angle := fs.Float64("angle", 0, "vertical observation angle [rad]")
	rangeArg := fs.String("range", "", "photon energy range lo,hi [eV]")
	npoints := fs.Int("npoints", cfg.Spectrum.NPoints, "number of energy samples")
	current := fs.Float64("current", cfg.Spectrum.Current, "beam current [A]")
	dbPath := fs.String("db", cfg.DBPath, "record the call and run in this SQLite file")
	remote := fs.String("remote", "", "call a th-server at this address instead of computing locally")
	jsonOut := fs.Bool("json", false, "output as JSON")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := requireFlags(fs, "bfield", "energy", "range"); err != nil {
		return err
	}
	r, err := parseRange(*rangeArg)
	if err != nil {
		return err
	}

	kw := map[string]any{
		"bfield":          *bfield,
		"beam_energy_GeV": *energy,
		"angle":           *angle,
		"energy_range_eV": r,
		"npoints":         float64(*npoints),
		"current":         *current,
	}

	var res map[string]any
	if *remote != "" {
		res, err = callRemote(*remote, binding.DipoleSpectrum, kw)
	} else {
		res, err = callLocal(facade, *dbPath, binding.DipoleSpectrum, kw)
	}
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(os.Stdout, res)
	}
	s, err := binding.DecodeSpectrum(res)
	if err != nil {
		return err
	}
	runID, _ := res["run_id"].(string)
	printSpectrum(os.Stdout, s, runID)
	return nil
}

func callLocal(facade *th.TH, dbPath, method string, kw map[string]any) (map[string]any, error) {
	res, callErr := binding.Call(facade, method, kw)
	if dbPath == "" {
		return res, callErr
	}

	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	runID, err := s.RecordCall(method, kw, res, callErr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "record: %v\n", err)
	}
	if callErr != nil {
		return nil, callErr
	}
	if runID != "" {
		res["run_id"] = runID
	}
	return res, nil
}

func callRemote(addr, method string, kw map[string]any) (map[string]any, error) {
	c, err := rpc.NewClient(addr)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return c.Call(ctx, method, kw)
}

func printSpectrum(w io.Writer, s th.Spectrum, runID string) {
	fmt.Fprintf(w, "B = %g T  E = %g GeV  angle = %g rad  I = %g A\n",
		s.BField, s.BeamEnergyGeV, s.Angle, s.Current)
	fmt.Fprintf(w, "gamma = %.1f  critical energy = %s\n", s.Gamma, humanize.SIWithDigits(s.CriticalEnergy, 3, "eV"))
	if runID != "" {
		fmt.Fprintf(w, "run = %s\n", runID)
	}
	fmt.Fprintf(w, "\n%14s  %s\n", "Energy", "Flux [photons/s/mrad^2/0.1%BW]")
	for _, p := range s.Points {
		fmt.Fprintf(w, "%14s  %.4e\n", humanize.SIWithDigits(p.Energy, 4, "eV"), p.Flux)
	}
	if peak, ok := s.Peak(); ok {
		fmt.Fprintf(w, "\npeak %.4e at %s\n", peak.Flux, humanize.SIWithDigits(peak.Energy, 4, "eV"))
	}
}

// #endregion dipole-spectrum

// #region session

func runSession(facade *th.TH, cfg config.Config, in io.Reader, out io.Writer) error {
	var rec *store.Store
	if cfg.DBPath != "" {
		s, err := store.NewStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer s.Close()
		rec = s
	}

	fmt.Fprintln(out, `Type "method {json kwargs}", "methods", or "quit":`)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "methods":
			printMethods(out)
			continue
		}

		method, kw, err := parseLine(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		res, callErr := binding.Call(facade, method, kw)
		if rec != nil {
			runID, err := rec.RecordCall(method, kw, res, callErr)
			if err != nil {
				fmt.Fprintf(out, "record: %v\n", err)
			}
			if runID != "" {
				res["run_id"] = runID
			}
		}
		if callErr != nil {
			fmt.Fprintf(out, "error: %v\n", callErr)
			continue
		}
		fmt.Fprintln(out, summarize(method, res))
	}
	return scanner.Err()
}

// parseLine splits "method {json}" into a method name and kwargs.
func parseLine(line string) (string, map[string]any, error) {
	method, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return method, nil, nil
	}
	var kw map[string]any
	if err := json.Unmarshal([]byte(rest), &kw); err != nil {
		return "", nil, fmt.Errorf("kwargs must be a JSON object: %w", err)
	}
	return method, kw, nil
}

func summarize(method string, res map[string]any) string {
	switch method {
	case binding.UndulatorK:
		return fmt.Sprintf("k = %.6g", res["k"])
	case binding.DipoleSpectrum:
		s, err := binding.DecodeSpectrum(res)
		if err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		line := fmt.Sprintf("critical energy = %s  gamma = %.1f  points = %d",
			humanize.SIWithDigits(s.CriticalEnergy, 3, "eV"), s.Gamma, len(s.Points))
		if peak, ok := s.Peak(); ok {
			line += fmt.Sprintf("  peak = %.4e @ %s", peak.Flux, humanize.SIWithDigits(peak.Energy, 4, "eV"))
		}
		if id, ok := res["run_id"].(string); ok {
			line += "  run = " + id
		}
		return line
	default:
		b, _ := json.Marshal(binding.EncodeNonFinite(res))
		return string(b)
	}
}

// #endregion session

// #region helpers

func requireFlags(fs *flag.FlagSet, names ...string) error {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, n := range names {
		if !set[n] {
			return fmt.Errorf("%w: --%s is required", errUsage, n)
		}
	}
	return nil
}

// parseRange reads a comma-separated list. The element count is checked by
// the binding layer so a wrong count reports the same error as any caller.
func parseRange(s string) ([]any, error) {
	parts := strings.Split(s, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: --range: %q is not a number", errUsage, p)
		}
		out = append(out, v)
	}
	return out, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(binding.EncodeNonFinite(v), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// #endregion helpers
