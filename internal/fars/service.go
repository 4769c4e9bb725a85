// Package fars implements the accident analysis operations: loading one
// archive, loading several years with per-year failure isolation, the
// monthly summary, and the state map.
package fars

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/couchcryptid/fars-accidents/internal/domain"
	"github.com/couchcryptid/fars-accidents/internal/observability"
)

// YearResult is the outcome of loading one year of a multi-year request.
// Exactly one of Table and Err is set.
type YearResult struct {
	Token domain.Token
	Year  int
	Table *domain.Table // (MONTH, year) rows
	Err   error
}

// OK reports whether the year loaded.
func (r YearResult) OK() bool {
	return r.Err == nil
}

// Service runs the analysis operations against one archive directory.
type Service struct {
	reader  *Reader
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService creates a Service on top of reader.
func NewService(reader *Reader, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		reader:  reader,
		logger:  logger,
		metrics: metrics,
	}
}

// Read loads a single archive by filename.
func (s *Service) Read(filename string) (*domain.Table, error) {
	return s.reader.Read(filename)
}

// ReadYears loads each year independently and returns one result per token,
// in input order. A year that fails is logged as a warning and carried as a
// failed result; it never aborts the batch. The only error returned is
// context cancellation.
func (s *Service) ReadYears(ctx context.Context, years []domain.Token) ([]YearResult, error) {
	results := make([]YearResult, 0, len(years))
	for _, tok := range years {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := s.readYear(tok)
		if res.Err != nil {
			s.logger.Warn("invalid year", "year", tok.String(), "error", res.Err)
			s.metrics.YearsSkipped.Inc()
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Service) readYear(tok domain.Token) YearResult {
	res := YearResult{Token: tok}

	year, err := tok.Int()
	if err != nil {
		res.Err = fmt.Errorf("%w: %s: %w", domain.ErrInvalidYear, tok, err)
		return res
	}
	res.Year = year

	table, err := s.reader.Read(domain.MakeFilename(year))
	if err != nil {
		res.Err = fmt.Errorf("%w: %d: %w", domain.ErrInvalidYear, year, err)
		return res
	}

	tagged, err := tagMonths(table, year)
	if err != nil {
		res.Err = fmt.Errorf("%w: %d: %w", domain.ErrInvalidYear, year, err)
		return res
	}
	res.Table = tagged
	return res
}

// tagMonths attaches the year to every row and projects to (MONTH, year).
// Every MONTH must be an integer so the summary step cannot fail later.
func tagMonths(table *domain.Table, year int) (*domain.Table, error) {
	projected, err := table.WithColumn(domain.ColYear, strconv.Itoa(year)).Select(domain.ColMonth, domain.ColYear)
	if err != nil {
		return nil, err
	}
	for i := 0; i < projected.Len(); i++ {
		if _, err := projected.Int(i, domain.ColMonth); err != nil {
			return nil, err
		}
	}
	return projected, nil
}

// SummarizeYears counts accidents per month for each year that loads. Years
// that fail are skipped with a warning; if all fail the summary is empty.
func (s *Service) SummarizeYears(ctx context.Context, years []domain.Token) (domain.Summary, error) {
	results, err := s.ReadYears(ctx, years)
	if err != nil {
		return domain.Summary{}, err
	}

	tables := make([]*domain.Table, 0, len(results))
	for _, r := range results {
		if r.OK() {
			tables = append(tables, r.Table)
		}
	}
	return domain.Summarize(tables...)
}

// CheckReadiness returns nil when the archive directory exists and can be
// listed.
func (s *Service) CheckReadiness(_ context.Context) error {
	dir := s.reader.Dir()
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", dir)
	}
	if _, err := os.ReadDir(dir); err != nil {
		return fmt.Errorf("data directory: %w", err)
	}
	return nil
}
