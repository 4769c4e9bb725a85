package domain

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"
)

// SummaryRow holds the accident counts of one month, aligned with
// Summary.Years. A nil count means no accidents were recorded for that
// month-year pair.
type SummaryRow struct {
	Month  int    `json:"month"`
	Counts []*int `json:"counts"`
}

// Summary is a month-by-year table of accident counts.
type Summary struct {
	Years       []int        `json:"years"`
	Rows        []SummaryRow `json:"rows"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Summarize concatenates tables of (MONTH, year) rows, counts rows per
// (year, MONTH) group, and pivots so that every distinct year becomes a
// column. Months 1-12 are always present; any other MONTH value in the data
// gets its own row so no record goes uncounted.
func Summarize(tables ...*Table) (Summary, error) {
	type key struct{ year, month int }
	counts := make(map[key]int)
	years := make(map[int]struct{})
	months := make(map[int]struct{}, 12)
	for m := 1; m <= 12; m++ {
		months[m] = struct{}{}
	}

	for _, t := range tables {
		if t == nil {
			continue
		}
		for i := 0; i < t.Len(); i++ {
			month, err := t.Int(i, ColMonth)
			if err != nil {
				return Summary{}, fmt.Errorf("summarize: %w", err)
			}
			year, err := t.Int(i, ColYear)
			if err != nil {
				return Summary{}, fmt.Errorf("summarize: %w", err)
			}
			counts[key{year, month}]++
			years[year] = struct{}{}
			months[month] = struct{}{}
		}
	}

	s := Summary{
		Years:       sortedKeys(years),
		GeneratedAt: clock.Now(),
	}
	for _, m := range sortedKeys(months) {
		row := SummaryRow{Month: m, Counts: make([]*int, len(s.Years))}
		for j, y := range s.Years {
			if n, ok := counts[key{y, m}]; ok {
				row.Counts[j] = &n
			}
		}
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

// Empty reports whether no year contributed any data.
func (s Summary) Empty() bool {
	return len(s.Years) == 0
}

// Count returns the count for a month-year pair and whether one was recorded.
func (s Summary) Count(month, year int) (int, bool) {
	j := s.yearIndex(year)
	if j < 0 {
		return 0, false
	}
	for _, row := range s.Rows {
		if row.Month == month && row.Counts[j] != nil {
			return *row.Counts[j], true
		}
	}
	return 0, false
}

// Total returns the number of accidents counted for a year.
func (s Summary) Total(year int) int {
	j := s.yearIndex(year)
	if j < 0 {
		return 0
	}
	total := 0
	for _, row := range s.Rows {
		if row.Counts[j] != nil {
			total += *row.Counts[j]
		}
	}
	return total
}

// WriteText renders the summary as an aligned plain-text table, with "NA"
// for months that have no recorded accidents.
func (s Summary) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "MONTH\t")
	for _, y := range s.Years {
		fmt.Fprintf(tw, "%d\t", y)
	}
	fmt.Fprintln(tw)
	for _, row := range s.Rows {
		fmt.Fprintf(tw, "%d\t", row.Month)
		for _, c := range row.Counts {
			v := "NA"
			if c != nil {
				v = strconv.Itoa(*c)
			}
			fmt.Fprintf(tw, "%s\t", v)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func (s Summary) yearIndex(year int) int {
	for j, y := range s.Years {
		if y == year {
			return j
		}
	}
	return -1
}

func sortedKeys(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
