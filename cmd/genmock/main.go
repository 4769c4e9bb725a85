// Command genmock writes deterministic synthetic FARS archives so the
// summarize and mapstate commands and the API can run without the real
// dataset.
//
// Usage:
//
//	go run ./cmd/genmock -dir data/mock -years 2013,2014,2015 -rows 500
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/couchcryptid/fars-accidents/internal/domain"
	"github.com/couchcryptid/fars-accidents/internal/farsmock"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dir := flag.String("dir", ".", "output directory for generated archives")
	years := flag.String("years", "2013,2014,2015", "comma-separated years to generate")
	rows := flag.Int("rows", 500, "accidents per year")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *rows < 0 {
		return fmt.Errorf("-rows must be non-negative, got %d", *rows)
	}

	tokens := domain.ParseTokens(*years)
	if len(tokens) == 0 {
		flag.Usage()
		return fmt.Errorf("missing required flag: -years")
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, tok := range tokens {
		year, err := tok.Int()
		if err != nil {
			return fmt.Errorf("year %q: %w", tok.String(), err)
		}
		recs := farsmock.Generate(year, *rows, *seed)
		path, err := farsmock.WriteFile(*dir, year, recs)
		if err != nil {
			return fmt.Errorf("writing %d: %w", year, err)
		}
		log.Printf("wrote %s: %d records", path, len(recs))
		printStats(year, recs)
	}
	return nil
}

type stateCount struct {
	state int
	count int
}

// printStats prints per-state counts and the number of rows with unknown
// coordinates, for updating test assertions.
func printStats(year int, recs []farsmock.Record) {
	counts := map[int]int{}
	var unknown int
	for _, r := range recs {
		counts[r.State]++
		if r.Latitude == farsmock.UnknownLatitude {
			unknown++
		}
	}

	sc := make([]stateCount, 0, len(counts))
	for s, c := range counts {
		sc = append(sc, stateCount{s, c})
	}
	sort.Slice(sc, func(i, j int) bool { return sc[i].count > sc[j].count })

	fmt.Printf("%d: ", year)
	for _, s := range sc {
		fmt.Printf("%s=%d ", domain.StateName(s.state), s.count)
	}
	fmt.Printf("(unknown coordinates: %d)\n", unknown)
}
