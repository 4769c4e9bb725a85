package fars

import (
	"context"
	"fmt"
	"strconv"

	"github.com/couchcryptid/fars-accidents/internal/domain"
)

// Renderer draws a state map. It is handed the bounding range first and then
// the points to overlay, one per accident with known coordinates.
type Renderer interface {
	BaseMap(title string, bounds domain.Bounds) error
	Points(points []domain.Point) error
}

// StateAccidents is the filtered, sanitized view of one state's accidents in
// one year.
type StateAccidents struct {
	State int
	Year  int
	// Rows holds every matching accident; unknown coordinates are NaN.
	Rows *domain.Table
	// Coords is aligned with Rows.
	Coords []domain.Point
}

// Valid returns the points with known coordinates.
func (a StateAccidents) Valid() []domain.Point {
	out := make([]domain.Point, 0, len(a.Coords))
	for _, p := range a.Coords {
		if p.Valid() {
			out = append(out, p)
		}
	}
	return out
}

// Title is the caption used for the rendered map.
func (a StateAccidents) Title() string {
	return fmt.Sprintf("Fatal accidents in %s, %d", domain.StateName(a.State), a.Year)
}

// FilterState validates state against the STATE values present in table,
// keeps the matching rows, and sanitizes their coordinates.
func FilterState(table *domain.Table, state, year int) (StateAccidents, error) {
	codes, err := table.Distinct(domain.ColState)
	if err != nil {
		return StateAccidents{}, err
	}
	if !containsCode(codes, state) {
		return StateAccidents{}, fmt.Errorf("%w: %d", domain.ErrInvalidStateCode, state)
	}

	rows := table.Filter(func(i int) bool {
		s, err := table.Int(i, domain.ColState)
		return err == nil && s == state
	})

	coords := make([]domain.Point, rows.Len())
	for i := range coords {
		lat, err := rows.Float(i, domain.ColLatitude)
		if err != nil {
			return StateAccidents{}, err
		}
		lon, err := rows.Float(i, domain.ColLongitude)
		if err != nil {
			return StateAccidents{}, err
		}
		coords[i] = domain.SanitizeCoordinates(lat, lon)
	}

	return StateAccidents{State: state, Year: year, Rows: rows, Coords: coords}, nil
}

func containsCode(codes []string, state int) bool {
	for _, c := range codes {
		if n, err := strconv.Atoi(c); err == nil && n == state {
			return true
		}
	}
	return false
}

// MapState plots one year's accidents for a state. An unknown state code is
// an error; a state with nothing to plot is logged and returns nil without
// touching the renderer. Only a single year is supported.
func (s *Service) MapState(ctx context.Context, state, year domain.Token, r Renderer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	y, err := year.Int()
	if err != nil {
		return err
	}
	code, err := state.Int()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidStateCode, err)
	}

	table, err := s.reader.Read(domain.MakeFilename(y))
	if err != nil {
		return err
	}

	accidents, err := FilterState(table, code, y)
	if err != nil {
		s.metrics.MapsRendered.WithLabelValues("error").Inc()
		return err
	}

	points := accidents.Valid()
	bounds, ok := domain.BoundsOf(points)
	if !ok {
		s.logger.Info("no accidents to plot", "state", code, "year", y, "rows", accidents.Rows.Len())
		s.metrics.MapsRendered.WithLabelValues("empty").Inc()
		return nil
	}

	if err := r.BaseMap(accidents.Title(), bounds); err != nil {
		s.metrics.MapsRendered.WithLabelValues("error").Inc()
		return fmt.Errorf("draw base map: %w", err)
	}
	if err := r.Points(points); err != nil {
		s.metrics.MapsRendered.WithLabelValues("error").Inc()
		return fmt.Errorf("draw points: %w", err)
	}

	s.metrics.MapsRendered.WithLabelValues("rendered").Inc()
	s.logger.Debug("state map rendered", "state", code, "year", y, "points", len(points))
	return nil
}
