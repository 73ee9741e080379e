package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/danielpatrickdp/oscars-th/internal/config"
	"github.com/danielpatrickdp/oscars-th/internal/logging"
	"github.com/danielpatrickdp/oscars-th/internal/replay"
	"github.com/danielpatrickdp/oscars-th/internal/store"
	"github.com/danielpatrickdp/oscars-th/internal/th"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to th SQLite database (call log mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	last := flag.Int("last", 0, "replay only the N most recent logged calls (0 = all)")
	tol := flag.Float64("tol", 0, "relative tolerance override")
	verbose := flag.Bool("v", false, "print passing calls too")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/th.db [--last N] [--tol x] [-v]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json [--tol x] [-v]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	facade := th.New(th.WithLogger(cfg.Logger()), th.WithDefaults(cfg.Spectrum))

	var calls []replay.Call
	tolerance := replay.DefaultTolerance
	if *fixturePath != "" {
		f, err := replay.LoadFixture(*fixturePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
		fmt.Printf("Fixture: %s\n", f.Description)
		calls, tolerance = f.Calls, f.Tol()
	} else {
		calls, err = loadCallLog(*dbPath, *last)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
	}
	if *tol > 0 {
		tolerance = *tol
	}

	results := replay.Replay(facade, calls, tolerance)
	os.Exit(report(os.Stdout, results, *verbose))
}

// #endregion main

// #region db-extract

func loadCallLog(dbPath string, last int) ([]replay.Call, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	defer s.Close()

	entries, err := logging.ListCalls(s.DB(), last)
	if err != nil {
		return nil, err
	}
	return replay.FromCallLog(entries)
}

// #endregion db-extract

// #region report

func report(w io.Writer, results []replay.Result, verbose bool) int {
	for _, r := range results {
		switch {
		case !r.Passed:
			fmt.Fprintf(w, "FAIL  %-24s %-16s %s\n", r.ID, r.Method, r.Reason)
		case verbose:
			fmt.Fprintf(w, "ok    %-24s %s\n", r.ID, r.Method)
		}
	}

	sum := replay.Summarize(results)
	fmt.Fprintf(w, "\n%d calls: %d passed (%d expected errors), %d failed\n",
		sum.Total, sum.Passed, sum.Errors, sum.Failed)
	if sum.Failed > 0 {
		return 1
	}
	return 0
}

// #endregion report
