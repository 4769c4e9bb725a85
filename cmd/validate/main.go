// Command validate performs data integrity checks over a directory of FARS
// archives: file naming, required columns, field ranges, coordinate
// sentinels, and agreement between raw row counts and the monthly summary.
//
// Usage:
//
//	go run ./cmd/validate -dir data/mock
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/fars-accidents/internal/domain"
	"github.com/couchcryptid/fars-accidents/internal/fars"
	"github.com/couchcryptid/fars-accidents/internal/observability"
)

// Unknown-coordinate sentinels as written by the data provider.
const (
	sentinelLatitude  = 99.9999
	sentinelLongitude = 999.9999
)

var requiredColumns = []string{
	domain.ColState, domain.ColMonth, domain.ColLatitude, domain.ColLongitude,
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// archive is one loaded file with the year its name claims.
type archive struct {
	name  string
	year  int
	table *domain.Table
}

func main() {
	dir := flag.String("dir", ".", "directory containing accident_<year>.csv.bz2 archives")
	flag.Parse()

	if code := run(*dir, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(dir string, out io.Writer) int {
	fmt.Fprintln(out, "=== FARS Archive Integrity Validation ===")
	fmt.Fprintln(out)

	archives, err := loadArchives(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load archives: %v\n", err)
		return 1
	}
	if len(archives) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: no archives found in %s\n", dir)
		return 1
	}

	phases := []*phase{
		validateLayout(archives),
		validateFieldRanges(archives),
		validateCoordinates(archives),
		validateSummary(archives),
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	rows := 0
	for _, a := range archives {
		rows += a.table.Len()
	}
	fmt.Fprintf(out, "Archives: %d, rows: %d\n", len(archives), rows)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// loadArchives reads every accident archive in dir, ordered by year.
func loadArchives(dir string) ([]archive, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "accident_*.csv.bz2"))
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reader := fars.NewReader(dir, logger, observability.NewMetricsForTesting())

	archives := make([]archive, 0, len(matches))
	for _, path := range matches {
		name := filepath.Base(path)
		year, err := domain.YearFromFilename(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		table, err := reader.Read(name)
		if err != nil {
			return nil, err
		}
		archives = append(archives, archive{name: name, year: year, table: table})
	}
	sort.Slice(archives, func(i, j int) bool { return archives[i].year < archives[j].year })
	return archives, nil
}

// ── Phase 1: Layout ──
// Validates file naming and the presence of the analysed columns.

func validateLayout(archives []archive) *phase {
	p := &phase{name: "Phase 1: Layout (names and columns)"}
	for _, a := range archives {
		if want := domain.MakeFilename(a.year); a.name != want {
			p.errorf("%s: non-canonical name, expected %s", a.name, want)
		}
		for _, col := range requiredColumns {
			if !a.table.HasColumn(col) {
				p.errorf("%s: missing column %s", a.name, col)
			}
		}
		if a.table.Len() == 0 {
			p.errorf("%s: no data rows", a.name)
		}
	}
	return p
}

// ── Phase 2: Field Ranges ──
// Validates STATE, MONTH, and YEAR values row by row.

func validateFieldRanges(archives []archive) *phase {
	p := &phase{name: "Phase 2: Field Ranges (STATE, MONTH, YEAR)"}
	for _, a := range archives {
		t := a.table
		for i := 0; i < t.Len(); i++ {
			pf := func(format string, args ...any) {
				p.errorf("%s line %d: "+format, append([]any{a.name, i + 2}, args...)...)
			}

			if state, err := t.Int(i, domain.ColState); err != nil {
				pf("%v", err)
			} else if !domain.KnownState(state) {
				pf("unknown STATE %d", state)
			}

			if month, err := t.Int(i, domain.ColMonth); err != nil {
				pf("%v", err)
			} else if month < 1 || month > 12 {
				pf("MONTH %d out of range", month)
			}

			if !t.HasColumn("YEAR") {
				continue
			}
			if year, err := t.Int(i, "YEAR"); err != nil {
				pf("%v", err)
			} else if year != a.year {
				pf("YEAR %d does not match file year %d", year, a.year)
			}
		}
	}
	return p
}

// ── Phase 3: Coordinates ──
// Valid rows are inside the WGS84 range; unknown positions use the sentinels.

func validateCoordinates(archives []archive) *phase {
	p := &phase{name: "Phase 3: Coordinates (range and sentinels)"}
	for _, a := range archives {
		t := a.table
		var known int
		for i := 0; i < t.Len(); i++ {
			lat, err := t.Float(i, domain.ColLatitude)
			if err != nil {
				p.errorf("%s line %d: %v", a.name, i+2, err)
				continue
			}
			lon, err := t.Float(i, domain.ColLongitude)
			if err != nil {
				p.errorf("%s line %d: %v", a.name, i+2, err)
				continue
			}
			if checkCoordinate(p, a.name, i+2, lat, lon) {
				known++
			}
		}
		if t.Len() > 0 && known == 0 {
			p.errorf("%s: no row has known coordinates", a.name)
		}
	}
	return p
}

// checkCoordinate reports whether the pair is a usable position.
func checkCoordinate(p *phase, name string, line int, lat, lon float64) bool {
	pt := domain.SanitizeCoordinates(lat, lon)
	if !pt.Valid() {
		if lat > 90 && !floatEq(lat, sentinelLatitude) {
			p.errorf("%s line %d: LATITUDE %g is neither valid nor the sentinel", name, line, lat)
		}
		if lon > 900 && !floatEq(lon, sentinelLongitude) {
			p.errorf("%s line %d: LONGITUD %g is neither valid nor the sentinel", name, line, lon)
		}
		return false
	}
	if pt.Lat < -90 {
		p.errorf("%s line %d: LATITUDE %g out of range", name, line, lat)
		return false
	}
	if pt.Lon < -180 || pt.Lon > 180 {
		p.errorf("%s line %d: LONGITUD %g out of range", name, line, lon)
		return false
	}
	return true
}

// ── Phase 4: Summary Consistency ──
// Validates that the monthly summary accounts for every raw row.

func validateSummary(archives []archive) *phase {
	p := &phase{name: "Phase 4: Summary Consistency"}

	tagged := make([]*domain.Table, 0, len(archives))
	for _, a := range archives {
		if !a.table.HasColumn(domain.ColMonth) {
			continue
		}
		t, err := a.table.WithColumn(domain.ColYear, fmt.Sprint(a.year)).Select(domain.ColMonth, domain.ColYear)
		if err != nil {
			p.errorf("%s: %v", a.name, err)
			continue
		}
		tagged = append(tagged, t)
	}

	s, err := domain.Summarize(tagged...)
	if err != nil {
		p.errorf("summarize: %v", err)
		return p
	}

	rows := map[int]int{}
	for _, a := range archives {
		if a.table.HasColumn(domain.ColMonth) {
			rows[a.year] += a.table.Len()
		}
	}
	for year, n := range rows {
		if got := s.Total(year); got != n {
			p.errorf("%d: summary counts %d accidents, archive has %d rows", year, got, n)
		}
	}
	for _, row := range s.Rows {
		for j, c := range row.Counts {
			if c != nil && *c == 0 {
				p.errorf("month %d year %d: zero count should be absent", row.Month, s.Years[j])
			}
		}
	}
	return p
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
