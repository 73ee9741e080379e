package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/oscars-th/internal/logging"
	"github.com/danielpatrickdp/oscars-th/internal/replay"
	"github.com/danielpatrickdp/oscars-th/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to th SQLite database")
	last := flag.Int("last", 0, "number of most recent calls to export (0 = all)")
	outPath := flag.String("out", "", "output fixture JSON path")
	desc := flag.String("desc", "", "fixture description")
	tol := flag.Float64("tol", 0, "relative tolerance written to the fixture")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/th.db --out path/to/fixture.json [--last N] [--desc text] [--tol x]")
		os.Exit(2)
	}

	n, err := run(*dbPath, *last, *outPath, *desc, *tol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d calls to %s\n", n, *outPath)
}

// #endregion main

// #region extract

func run(dbPath string, last int, outPath, desc string, tol float64) (int, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return 0, fmt.Errorf("open db: %w", err)
	}
	defer s.Close()

	entries, err := logging.ListCalls(s.DB(), last)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("no calls recorded in %s", dbPath)
	}
	calls, err := replay.FromCallLog(entries)
	if err != nil {
		return 0, err
	}

	if desc == "" {
		desc = fmt.Sprintf("exported from %s (%d calls)", dbPath, len(calls))
	}
	f := &replay.Fixture{Description: desc, Tolerance: tol, Calls: calls}
	if err := replay.WriteFixture(outPath, f); err != nil {
		return 0, err
	}
	return len(calls), nil
}

// #endregion extract
